package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/boulevard/internal/export"
	"github.com/ziadkadry99/boulevard/internal/loader"
	"github.com/ziadkadry99/boulevard/internal/pages"
	"github.com/ziadkadry99/boulevard/internal/progress"
	"github.com/ziadkadry99/boulevard/internal/render"
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Render the published site into static HTML files",
	Long: `Renders the home page, the blog and every blog post, event and research
page from published content into dir (default "public"), together with the
site's CSS and JavaScript.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Bool("json", false, "print the export summary as JSON")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	dir := "public"
	if len(args) == 1 {
		dir = args[0]
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, _, err := createQuerierFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	renderer, err := render.New(logger.Named("render"))
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	defaults := defaultsFromConfig(cfg)
	site := &pages.Site{
		Renderer:      renderer,
		EnvironmentID: cfg.EnvironmentID,
		Interval:      cfg.CarouselInterval,
		Logger:        logger.Named("pages"),
	}
	r := chi.NewRouter()
	pages.NewHandler(site, loader.New(client, logger.Named("loader")), defaults, logger.Named("pages")).RegisterRoutes(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exp := &export.Exporter{
		Client:   client,
		Handler:  r,
		Defaults: defaults,
		Reporter: progress.NewReporter(os.Stderr),
		Logger:   logger,
	}
	summary, err := exp.Run(ctx, dir)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	} else {
		fmt.Printf("Exported %d pages to %s\n", len(summary.Pages), dir)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d pages rendered with errors", summary.Failed)
	}
	return nil
}
