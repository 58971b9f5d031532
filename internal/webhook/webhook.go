// Package webhook receives Kontent.ai webhook notifications and turns
// content changes into automatic refreshes of open preview sessions.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/livepreview"
)

const (
	// Path is where the CMS posts webhook notifications.
	Path = "/api/webhooks/kontent"

	// SignatureHeader carries the base64 HMAC-SHA256 of the request body.
	SignatureHeader = "X-Kontent-ai-Signature"

	maxBody = 1 << 20
)

// Refresher refreshes every open session.
type Refresher interface {
	Broadcast(n livepreview.RefreshNotification) int
}

// Handler handles incoming webhook notifications.
type Handler struct {
	refresher     Refresher
	secret        string
	environmentID string
	logger        *zap.Logger
}

// NewHandler creates a webhook handler. An empty secret accepts unsigned
// requests. A non-empty environmentID ignores notifications for other
// environments.
func NewHandler(refresher Refresher, secret, environmentID string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		refresher:     refresher,
		secret:        secret,
		environmentID: environmentID,
		logger:        logger,
	}
}

// RegisterRoutes mounts the webhook endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post(Path, h.HandleEvent)
}

// payload is the body of a webhook request.
type payload struct {
	Notifications []notification `json:"notifications"`
}

type notification struct {
	Data struct {
		System struct {
			Codename   string `json:"codename"`
			Language   string `json:"language"`
			Type       string `json:"type"`
			Collection string `json:"collection"`
		} `json:"system"`
	} `json:"data"`
	Message struct {
		EnvironmentID string `json:"environment_id"`
		ObjectType    string `json:"object_type"`
		Action        string `json:"action"`
		DeliverySlot  string `json:"delivery_slot"`
	} `json:"message"`
}

// Result reports what a webhook request did.
type Result struct {
	Changed  int `json:"changed"`
	Sessions int `json:"sessions"`
}

// HandleEvent handles a webhook POST. Content item changes refresh every
// open session once per request.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if h.secret != "" && !Verify(h.secret, body, r.Header.Get(SignatureHeader)) {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var res Result
	for _, n := range p.Notifications {
		if n.Message.ObjectType != "content_item" {
			continue
		}
		if h.environmentID != "" && n.Message.EnvironmentID != "" && n.Message.EnvironmentID != h.environmentID {
			continue
		}
		h.logger.Debug("content item changed",
			zap.String("item", n.Data.System.Codename),
			zap.String("language", n.Data.System.Language),
			zap.String("action", n.Message.Action),
			zap.String("slot", n.Message.DeliverySlot))
		res.Changed++
	}

	if res.Changed > 0 {
		res.Sessions = h.refresher.Broadcast(livepreview.RefreshNotification{})
		h.logger.Info("webhook refresh", zap.Int("changed", res.Changed), zap.Int("sessions", res.Sessions))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// Sign returns the signature of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body under secret.
func Verify(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
