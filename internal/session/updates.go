package session

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/ziadkadry99/boulevard/internal/audit"
	"github.com/ziadkadry99/boulevard/internal/delivery"
	"github.com/ziadkadry99/boulevard/internal/livepreview"
)

type event interface{}

type loadedEvent struct{ err error }

type messageEvent struct{ msg inbound }

type tickEvent struct{}

type refreshEvent struct {
	n livepreview.RefreshNotification
}

type refreshedEvent struct {
	action livepreview.Action
	err    error
}

// appliedEvent carries the result of applying one update to a snapshot of
// the page's slots.
type appliedEvent struct {
	n        livepreview.UpdateNotification
	snapshot map[string][]*delivery.Item
	next     map[string][]*delivery.Item
	err      error
}

func (ev appliedEvent) changed() bool {
	for slot, items := range ev.next {
		if !sameItems(items, ev.snapshot[slot]) {
			return true
		}
	}
	return false
}

// nextUpdate starts applying the oldest queued update unless one is
// already in flight. Updates wait for the initial load.
func (s *Session) nextUpdate() {
	if !s.loaded || s.applying || len(s.pending) == 0 {
		return
	}
	n := s.pending[0]
	s.pending = s.pending[1:]
	snapshot := s.snapshot()
	s.applying = true
	s.async(func() {
		s.post(s.apply(s.ctx, snapshot, n))
	})
}

func (s *Session) snapshot() map[string][]*delivery.Item {
	out := make(map[string][]*delivery.Item)
	for _, slot := range s.page.SlotNames() {
		out[slot] = s.page.Items(slot)
	}
	return out
}

// apply runs off the loop. Every root item that contains the updated item
// is patched in one pass; the update is all or nothing across slots.
func (s *Session) apply(ctx context.Context, snapshot map[string][]*delivery.Item, n livepreview.UpdateNotification) appliedEvent {
	ev := appliedEvent{n: n, snapshot: snapshot, next: make(map[string][]*delivery.Item, len(snapshot))}

	type position struct {
		slot  string
		index int
	}
	var (
		roots []*delivery.Item
		at    []position
	)
	slots := make([]string, 0, len(snapshot))
	for slot := range snapshot {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		for i, it := range snapshot[slot] {
			roots = append(roots, it)
			at = append(at, position{slot: slot, index: i})
		}
	}

	next, err := s.applier.ApplyAll(ctx, roots, n)
	if err != nil {
		ev.err = err
		return ev
	}
	for slot, items := range snapshot {
		ev.next[slot] = items
	}
	copied := make(map[string]bool)
	for i, it := range next {
		pos := at[i]
		if it == roots[i] {
			continue
		}
		if !copied[pos.slot] {
			ev.next[pos.slot] = append([]*delivery.Item(nil), snapshot[pos.slot]...)
			copied[pos.slot] = true
		}
		ev.next[pos.slot][pos.index] = it
	}
	return ev
}

func (s *Session) onApplied(ev appliedEvent) {
	s.applying = false
	defer s.nextUpdate()

	e := audit.Event{
		Kind:         audit.KindUpdate,
		ItemCodename: ev.n.Item.Codename,
		Language:     ev.n.Variant.Codename,
		Elements:     elementNames(ev.n),
	}
	var resolution *livepreview.PatchResolutionError
	switch {
	case ev.err != nil && livepreview.Ignorable(ev.err):
		s.logger.Debug("ignoring update", zap.String("item", ev.n.Item.Codename), zap.Error(ev.err))
		e.Outcome, e.Detail = audit.OutcomeIgnored, ev.err.Error()
	case errors.As(ev.err, &resolution):
		s.logger.Warn("dropping update", zap.String("item", ev.n.Item.Codename), zap.Error(ev.err))
		e.Outcome, e.Detail = audit.OutcomeDropped, ev.err.Error()
	case ev.err != nil:
		s.logger.Warn("dropping update", zap.String("item", ev.n.Item.Codename), zap.Error(ev.err))
		e.Outcome, e.Detail = audit.OutcomeFailed, ev.err.Error()
	case !ev.changed():
		e.Outcome = audit.OutcomeUnchanged
	case !s.current(ev.snapshot):
		// The page was refetched while the update was applied. Apply it
		// again to the new content.
		s.pending = append([]livepreview.UpdateNotification{ev.n}, s.pending...)
		return
	default:
		for slot, items := range ev.next {
			if !sameItems(items, ev.snapshot[slot]) {
				s.page.SetItems(slot, items)
			}
		}
		s.rerender()
		e.Outcome = audit.OutcomeApplied
	}
	s.record(e)
}

// current reports whether the page still holds exactly the snapshot.
func (s *Session) current(snapshot map[string][]*delivery.Item) bool {
	for slot, items := range snapshot {
		if !sameItems(s.page.Items(slot), items) {
			return false
		}
	}
	return true
}

// refresh runs the coordinator off the loop.
func (s *Session) refresh(n livepreview.RefreshNotification) {
	coord := livepreview.Coordinator{
		Reload:  func() { s.send(reloadMessage) },
		Refetch: s.page.Refetch,
	}
	s.async(func() {
		action, err := coord.Handle(s.ctx, n)
		s.post(refreshedEvent{action: action, err: err})
	})
}

func (s *Session) onRefreshed(ev refreshedEvent) {
	e := audit.Event{Kind: audit.KindRefresh}
	switch {
	case ev.err != nil:
		s.logger.Warn("refreshing page", zap.String("action", string(ev.action)), zap.Error(ev.err))
		e.Outcome, e.Detail = audit.OutcomeFailed, ev.err.Error()
		if ev.action == livepreview.ActionRefetch {
			s.rerender()
		}
	case ev.action == livepreview.ActionReload:
		e.Outcome = audit.OutcomeReloaded
	default:
		s.rerender()
		e.Outcome = audit.OutcomeRefetched
	}
	s.record(e)
}

func sameItems(a, b []*delivery.Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func elementNames(n livepreview.UpdateNotification) []string {
	var out []string
	for _, u := range n.Elements {
		out = append(out, u.Element.Codename)
	}
	return out
}
