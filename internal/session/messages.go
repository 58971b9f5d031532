package session

import (
	"encoding/json"

	"github.com/ziadkadry99/boulevard/internal/livepreview"
)

// inbound is a message from the browser.
type inbound struct {
	Type    string                           `json:"type"` // "update", "refresh", "hover" or "select"
	Update  json.RawMessage                  `json:"update,omitempty"`
	Refresh *livepreview.RefreshNotification `json:"refresh,omitempty"`
	Hover   bool                             `json:"hover,omitempty"`
	Index   int                              `json:"index,omitempty"`
}

// outbound is a message to the browser.
type outbound struct {
	Type    string `json:"type"` // "html", "carousel", "reload" or "error"
	Target  string `json:"target,omitempty"`
	HTML    string `json:"html,omitempty"`
	Index   int    `json:"index"`
	Message string `json:"message,omitempty"`
}

func htmlMessage(target, html string) outbound {
	return outbound{Type: "html", Target: target, HTML: html}
}

func carouselMessage(index int) outbound {
	return outbound{Type: "carousel", Index: index}
}

func errorMessage(msg string) outbound {
	return outbound{Type: "error", Message: msg}
}

var reloadMessage = outbound{Type: "reload"}
