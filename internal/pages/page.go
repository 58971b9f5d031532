package pages

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/boulevard/internal/delivery"
	"github.com/ziadkadry99/boulevard/internal/loader"
)

// Page is one page view: a route and the results of its queries.
type Page struct {
	Route Route
	View  *loader.View
}

// New creates a page view for route backed by l.
func New(route Route, l *loader.Loader) *Page {
	return &Page{Route: route, View: loader.NewView(l)}
}

// Load runs every slot query in parallel. It returns the first transport
// failure; empty results are not errors.
func (p *Page) Load(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range p.Route.Slots() {
		q := s.Query
		fetch := p.View.Begin(q)
		g.Go(func() error {
			res, _ := fetch(ctx)
			if res.Status == loader.StatusFailure {
				return res.Err
			}
			return nil
		})
	}
	return g.Wait()
}

// Refetch re-runs the primary query only.
func (p *Page) Refetch(ctx context.Context) error {
	res := p.View.Fetch(ctx, p.Route.Primary().Query)
	if res.Status == loader.StatusFailure {
		return res.Err
	}
	return nil
}

// Result returns the current result of the named slot.
func (p *Page) Result(slot string) loader.Result {
	s, ok := p.Route.Slot(slot)
	if !ok {
		return loader.Result{Status: loader.StatusEmpty}
	}
	res, ok := p.View.Get(s.Query)
	if !ok {
		return loader.Result{Status: loader.StatusEmpty}
	}
	return res
}

// Items returns the items currently held for the named slot.
func (p *Page) Items(slot string) []*delivery.Item {
	return p.Result(slot).Items
}

// SetItems publishes patched items for the named slot.
func (p *Page) SetItems(slot string, items []*delivery.Item) {
	if s, ok := p.Route.Slot(slot); ok {
		p.View.Set(s.Query, items)
	}
}

// SlotNames returns the page's distinct slots in order. Slots sharing a
// query are reported once, under the first name.
func (p *Page) SlotNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range p.Route.Slots() {
		key := s.Query.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s.Name)
	}
	return out
}
