package livepreview

import (
	"context"
	"errors"
)

// Action is what a Coordinator did with a refresh.
type Action string

const (
	ActionReload  Action = "reload"
	ActionRefetch Action = "refetch"
)

// Coordinator dispatches RefreshNotifications. Reload is the environment's
// default full reload; Refetch re-runs only the page's primary query.
type Coordinator struct {
	Reload  func()
	Refetch func(ctx context.Context) error
}

// Handle runs exactly one of Reload or Refetch for n.
func (c Coordinator) Handle(ctx context.Context, n RefreshNotification) (Action, error) {
	if n.Manual {
		if c.Reload == nil {
			return ActionReload, errors.New("livepreview: no reload handler")
		}
		c.Reload()
		return ActionReload, nil
	}
	if c.Refetch == nil {
		return ActionRefetch, errors.New("livepreview: no refetch handler")
	}
	return ActionRefetch, c.Refetch(ctx)
}
