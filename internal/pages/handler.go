package pages

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/loader"
)

// Handler serves the site pages.
type Handler struct {
	site     *Site
	loader   *loader.Loader
	defaults Defaults
	logger   *zap.Logger
}

// NewHandler creates a page handler.
func NewHandler(site *Site, l *loader.Loader, d Defaults, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{site: site, loader: l, defaults: d, logger: logger}
}

// RegisterRoutes mounts the page routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ServePage)
	r.Get("/blog", h.ServePage)
	r.Get("/blog/{slug}", h.ServePage)
	r.Get("/events/{slug}", h.ServePage)
	r.Get("/research/{slug}", h.ServePage)
}

// ServePage loads and renders the page at the request URL.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	route, ok := ParseRoute(r.URL, h.defaults)
	if !ok {
		http.NotFound(w, r)
		return
	}

	p := New(route, h.loader)
	// Failures are reported per slot by Render.
	_ = p.Load(r.Context())

	out, err := h.site.Render(p, 0)
	if err != nil {
		h.logger.Error("rendering page", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.site.Write(&buf, p, out); err != nil {
		h.logger.Error("rendering document", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if route.Preview {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(out.Status)
	w.Write(buf.Bytes())
}
