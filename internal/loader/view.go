package loader

import (
	"context"
	"sync"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

// View caches query results for a single page view.
//
// Every fetch started through the view takes a sequence number. A resolved
// result replaces the cached entry for its key only when no fetch issued
// later for the same key has already resolved, so a slow earlier response
// can never overwrite a faster later one. Different keys never share an
// entry.
type View struct {
	loader *Loader

	mu      sync.Mutex
	seq     uint64
	entries map[string]entry
}

type entry struct {
	seq    uint64
	result Result
}

// NewView creates an empty view backed by l.
func NewView(l *Loader) *View {
	return &View{loader: l, entries: make(map[string]entry)}
}

// Begin reserves a sequence number for a fetch of q. The returned function
// runs the fetch and stores its result subject to the staleness rule; it
// reports the result now current for q's key and whether this fetch's
// result was the one kept. A fetch abandoned by its caller stores nothing
// and reports the cached result, if any.
func (v *View) Begin(q delivery.Query) func(ctx context.Context) (Result, bool) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	return func(ctx context.Context) (Result, bool) {
		res := v.loader.Load(ctx, q)
		if res.Canceled() {
			if cur, ok := v.Get(q); ok {
				return cur, false
			}
			return res, false
		}
		return v.store(q.Key(), seq, res)
	}
}

// Fetch runs q and returns the current result for its key.
func (v *View) Fetch(ctx context.Context, q delivery.Query) Result {
	res, _ := v.Begin(q)(ctx)
	return res
}

// Get returns the cached result for q.
func (v *View) Get(q delivery.Query) (Result, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[q.Key()]
	return e.result, ok
}

// Set publishes locally patched items for q without refetching. It counts
// as the newest result for the key.
func (v *View) Set(q delivery.Query, items []*delivery.Item) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	res := Result{Status: StatusSuccess, Items: items}
	if len(items) == 0 {
		res = Result{Status: StatusEmpty}
	}
	v.entries[q.Key()] = entry{seq: v.seq, result: res}
}

func (v *View) store(key string, seq uint64, res Result) (Result, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if cur, ok := v.entries[key]; ok && cur.seq > seq {
		return cur.result, false
	}
	v.entries[key] = entry{seq: seq, result: res}
	return res, true
}
