package livepreview

import (
	"context"
	"errors"
	"testing"
)

func TestCoordinatorDispatch(t *testing.T) {
	tests := []struct {
		name         string
		n            RefreshNotification
		wantAction   Action
		wantReloads  int
		wantRefetchs int
	}{
		{"manual reloads", RefreshNotification{Manual: true}, ActionReload, 1, 0},
		{"automatic refetches", RefreshNotification{Manual: false}, ActionRefetch, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reloads, refetches := 0, 0
			c := Coordinator{
				Reload:  func() { reloads++ },
				Refetch: func(context.Context) error { refetches++; return nil },
			}
			action, err := c.Handle(context.Background(), tt.n)
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if action != tt.wantAction {
				t.Errorf("action = %q, want %q", action, tt.wantAction)
			}
			if reloads != tt.wantReloads || refetches != tt.wantRefetchs {
				t.Errorf("reloads=%d refetches=%d, want %d/%d", reloads, refetches, tt.wantReloads, tt.wantRefetchs)
			}
		})
	}
}

func TestCoordinatorRefetchError(t *testing.T) {
	boom := errors.New("boom")
	c := Coordinator{
		Reload:  func() { t.Error("reload must not run for automatic refresh") },
		Refetch: func(context.Context) error { return boom },
	}
	if _, err := c.Handle(context.Background(), RefreshNotification{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestCoordinatorMissingHandlers(t *testing.T) {
	var c Coordinator
	if _, err := c.Handle(context.Background(), RefreshNotification{Manual: true}); err == nil {
		t.Error("expected error without reload handler")
	}
	if _, err := c.Handle(context.Background(), RefreshNotification{}); err == nil {
		t.Error("expected error without refetch handler")
	}
}
