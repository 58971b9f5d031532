package session

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/livepreview"
	"github.com/ziadkadry99/boulevard/internal/loader"
	"github.com/ziadkadry99/boulevard/internal/pages"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HubConfig configures a Hub.
type HubConfig struct {
	Site     *pages.Site
	Loader   *loader.Loader
	Defaults pages.Defaults
	Journal  Journal // optional
	Logger   *zap.Logger
	Interval time.Duration
}

// Hub upgrades session connections and tracks the open sessions.
type Hub struct {
	cfg    HubConfig
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewHub creates a Hub.
func NewHub(cfg HubConfig) *Hub {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:      cfg,
		logger:   cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// RegisterRoutes mounts the session endpoint on the given router.
func (h *Hub) RegisterRoutes(r chi.Router) {
	r.Get(pages.SessionPath, h.ServeWS)
}

// ServeWS upgrades the request and serves a session for the page named by
// the "page" query parameter.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	u, err := url.Parse(r.URL.Query().Get("page"))
	if err != nil || u.Path == "" {
		http.Error(w, "page is required", http.StatusBadRequest)
		return
	}
	route, ok := pages.ParseRoute(u, h.cfg.Defaults)
	if !ok {
		http.Error(w, "unknown page", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade", zap.Error(err))
		return
	}

	s := New(conn, Config{
		ID:       uuid.New().String(),
		Page:     pages.New(route, h.cfg.Loader),
		Site:     h.cfg.Site,
		Client:   h.cfg.Loader.Client(),
		Journal:  h.cfg.Journal,
		Logger:   h.logger,
		Interval: h.cfg.Interval,
	})
	if !h.add(s) {
		conn.Close()
		return
	}
	defer h.remove(s)

	if err := s.Run(h.ctx); err != nil {
		h.logger.Debug("session ended", zap.String("session", s.ID()), zap.Error(err))
	}
}

func (h *Hub) add(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx.Err() != nil {
		return false
	}
	h.sessions[s.ID()] = s
	h.wg.Add(1)
	return true
}

func (h *Hub) remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID())
	h.mu.Unlock()
	h.wg.Done()
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Broadcast sends an automatic refresh to every open session and returns
// how many accepted it.
func (h *Hub) Broadcast(n livepreview.RefreshNotification) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for _, s := range h.sessions {
		if s.Refresh(n) {
			sent++
		}
	}
	h.logger.Debug("broadcast refresh", zap.Int("sessions", sent))
	return sent
}

// Close ends every session and waits for them to finish.
func (h *Hub) Close() {
	h.mu.Lock()
	h.cancel()
	h.mu.Unlock()
	h.wg.Wait()
}
