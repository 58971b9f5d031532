package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/audit"
	"github.com/ziadkadry99/boulevard/internal/db"
	"github.com/ziadkadry99/boulevard/internal/delivery/filesource"
	"github.com/ziadkadry99/boulevard/internal/livepreview"
	"github.com/ziadkadry99/boulevard/internal/loader"
	"github.com/ziadkadry99/boulevard/internal/pages"
	"github.com/ziadkadry99/boulevard/internal/render"
	"github.com/ziadkadry99/boulevard/internal/server"
	"github.com/ziadkadry99/boulevard/internal/session"
	"github.com/ziadkadry99/boulevard/internal/webhook"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the site server",
	Long: `Starts the site server. Pages are rendered from the configured content
source on every request. Pages opened in preview mode keep a websocket
session that applies live edits and refreshes from the CMS web app.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, src, err := createQuerierFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	renderer, err := render.New(logger.Named("render"))
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	// Open the preview journal.
	dbPath := filepath.Join(cfg.DataDir, db.FileName)
	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	journal := audit.NewStore(database)
	if cfg.JournalRetention > 0 {
		n, err := journal.DeleteBefore(context.Background(), time.Now().Add(-cfg.JournalRetention))
		if err != nil {
			return fmt.Errorf("pruning preview journal: %w", err)
		}
		logger.Info("pruned preview journal", zap.Int64("events", n))
	}

	ld := loader.New(client, logger.Named("loader"))
	defaults := defaultsFromConfig(cfg)
	site := &pages.Site{
		Renderer:      renderer,
		EnvironmentID: cfg.EnvironmentID,
		Interval:      cfg.CarouselInterval,
		Logger:        logger.Named("pages"),
	}

	srv := server.New(server.Config{
		Port:           cfg.Port,
		AllowAll:       cfg.AllowAllOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)

	// Pages and the journal API are bounded by the request timeout.
	handler := pages.NewHandler(site, ld, defaults, logger.Named("pages"))
	srv.Timed(func(r chi.Router) {
		handler.RegisterRoutes(r)
		audit.RegisterRoutes(r, journal)
	})

	// Sessions live as long as the page is open.
	hub := session.NewHub(session.HubConfig{
		Site:     site,
		Loader:   ld,
		Defaults: defaults,
		Journal:  journal,
		Logger:   logger.Named("session"),
		Interval: cfg.CarouselInterval,
	})
	hub.RegisterRoutes(srv.Router())

	// CMS webhooks refresh open sessions when published or preview content changes.
	hooks := webhook.NewHandler(hub, cfg.WebhookSecret, cfg.EnvironmentID, logger.Named("webhook"))
	srv.Timed(hooks.RegisterRoutes)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if src != nil && cfg.Watch {
		go watchContent(ctx, src, hub, logger)
	}

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down", zap.Error(err))
		}
	}()

	fmt.Fprintf(os.Stderr, "boulevard v%s starting on port %d\n", Version, cfg.Port)
	if src != nil {
		fmt.Fprintf(os.Stderr, "  Content: %s (%d items)\n", src.Dir(), src.Len())
	} else {
		fmt.Fprintf(os.Stderr, "  Environment: %s\n", cfg.EnvironmentID)
	}
	fmt.Fprintf(os.Stderr, "  Journal: %s\n", dbPath)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// watchContent refreshes every open session when a content file changes.
func watchContent(ctx context.Context, src *filesource.Source, hub *session.Hub, logger *zap.Logger) {
	err := src.Watch(ctx, filesource.DefaultDebounce, func() {
		n := hub.Broadcast(livepreview.RefreshNotification{})
		logger.Info("content changed", zap.Int("items", src.Len()), zap.Int("sessions", n))
	})
	if err != nil {
		logger.Error("watching content", zap.Error(err))
	}
}
