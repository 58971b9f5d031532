// Package audit journals live preview notifications and what each session
// did with them.
package audit

import "time"

// Kind is the notification type.
type Kind string

const (
	KindUpdate  Kind = "update"
	KindRefresh Kind = "refresh"
)

// Outcome describes what happened to a notification.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDropped   Outcome = "dropped"
	OutcomeReloaded  Outcome = "reloaded"
	OutcomeRefetched Outcome = "refetched"
	OutcomeFailed    Outcome = "failed"
)

// Event is a single journaled notification.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	SessionID    string    `json:"session_id"`
	Page         string    `json:"page"`
	Kind         Kind      `json:"kind"`
	Outcome      Outcome   `json:"outcome"`
	ItemCodename string    `json:"item_codename,omitempty"`
	Language     string    `json:"language,omitempty"`
	Elements     []string  `json:"elements,omitempty"`
	Detail       string    `json:"detail,omitempty"`
}
