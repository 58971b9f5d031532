package loader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

// fakeQuerier answers queries from a map keyed by slug filter value and
// counts calls.
type fakeQuerier struct {
	mu      sync.Mutex
	calls   int
	answers []func(q delivery.Query) ([]*delivery.Item, error)
}

func (f *fakeQuerier) Query(ctx context.Context, q delivery.Query) ([]*delivery.Item, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()
	if i < len(f.answers) {
		return f.answers[i](q)
	}
	return nil, nil
}

func (f *fakeQuerier) FetchByCodenames(ctx context.Context, base delivery.Query, codenames []string) ([]*delivery.Item, error) {
	return f.Query(ctx, base.ByCodenames(codenames))
}

// ctxQuerier records the context each query runs under.
type ctxQuerier struct {
	*fakeQuerier
	last *context.Context
}

func (c ctxQuerier) Query(ctx context.Context, q delivery.Query) ([]*delivery.Item, error) {
	c.fakeQuerier.mu.Lock()
	*c.last = ctx
	c.fakeQuerier.mu.Unlock()
	return c.fakeQuerier.Query(ctx, q)
}

func item(codename string) *delivery.Item {
	return &delivery.Item{System: delivery.System{Codename: codename}}
}

func returns(items ...*delivery.Item) func(delivery.Query) ([]*delivery.Item, error) {
	return func(delivery.Query) ([]*delivery.Item, error) { return items, nil }
}

func fails(err error) func(delivery.Query) ([]*delivery.Item, error) {
	return func(delivery.Query) ([]*delivery.Item, error) { return nil, err }
}

func slugQuery(slug string) delivery.Query {
	return delivery.Query{Type: "blog_post", Filters: []delivery.Filter{delivery.Eq("elements.url_slug", slug)}, Depth: 3}
}

func TestLoadClassifiesResults(t *testing.T) {
	tests := []struct {
		name   string
		answer func(delivery.Query) ([]*delivery.Item, error)
		want   Status
	}{
		{"success", returns(item("a")), StatusSuccess},
		{"zero items", returns(), StatusEmpty},
		{"not found", fails(delivery.ErrNotFound), StatusEmpty},
		{"wrapped not found", fails(errors.Join(errors.New("x"), delivery.ErrNotFound)), StatusEmpty},
		{"transport", fails(&delivery.TransportError{StatusCode: 401}), StatusFailure},
		{"plain error", fails(errors.New("boom")), StatusFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(&fakeQuerier{answers: []func(delivery.Query) ([]*delivery.Item, error){tt.answer}}, nil)
			res := l.Load(context.Background(), slugQuery("x"))
			if res.Status != tt.want {
				t.Fatalf("Status = %v, want %v", res.Status, tt.want)
			}
			if tt.want == StatusFailure && !delivery.IsTransport(res.Err) {
				t.Errorf("failure should carry a TransportError, got %v", res.Err)
			}
			if tt.want != StatusFailure && res.Err != nil {
				t.Errorf("unexpected error %v", res.Err)
			}
		})
	}
}

func TestLoadDoesNotExistSlugIsNotFound(t *testing.T) {
	l := New(&fakeQuerier{answers: []func(delivery.Query) ([]*delivery.Item, error){returns()}}, nil)
	res := l.Load(context.Background(), slugQuery("does-not-exist"))
	if res.Status != StatusEmpty {
		t.Fatalf("Status = %v, want empty", res.Status)
	}
	if res.First() != nil {
		t.Error("empty result should have no first item")
	}
}

func TestLoadCallerCancelDoesNotFailSharedQuery(t *testing.T) {
	want := item("post")
	started := make(chan struct{})
	release := make(chan struct{})
	var inflight context.Context
	fq := &fakeQuerier{}
	fq.answers = []func(delivery.Query) ([]*delivery.Item, error){
		func(delivery.Query) ([]*delivery.Item, error) {
			close(started)
			<-release
			if err := inflight.Err(); err != nil {
				return nil, err
			}
			return []*delivery.Item{want}, nil
		},
		returns(want),
	}
	l := New(ctxQuerier{fq, &inflight}, nil)
	q := slugQuery("post")

	ctxA, cancelA := context.WithCancel(context.Background())
	resA := make(chan Result, 1)
	go func() { resA <- l.Load(ctxA, q) }()
	<-started

	resB := make(chan Result, 1)
	go func() { resB <- l.Load(context.Background(), q) }()
	time.Sleep(20 * time.Millisecond) // let the second caller join

	cancelA()
	a := <-resA
	if a.Status != StatusFailure || !errors.Is(a.Err, context.Canceled) {
		t.Fatalf("canceled caller = %v %v, want failure with context.Canceled", a.Status, a.Err)
	}
	if delivery.IsTransport(a.Err) || !a.Canceled() {
		t.Errorf("caller cancellation classified as transport failure: %v", a.Err)
	}
	if err := inflight.Err(); err != nil {
		t.Errorf("shared request context done after one caller canceled: %v", err)
	}

	close(release)
	b := <-resB
	if b.Status != StatusSuccess || b.First() != want {
		t.Errorf("remaining caller = %v %v, want success", b.Status, b.Err)
	}
}

func TestViewIgnoresCanceledFetch(t *testing.T) {
	cached := item("cached")
	fq := &fakeQuerier{answers: []func(delivery.Query) ([]*delivery.Item, error){returns(cached)}}
	v := NewView(New(fq, nil))
	q := slugQuery("post")
	v.Fetch(context.Background(), q)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, kept := v.Begin(q)(ctx)
	if kept {
		t.Error("canceled fetch must not replace the cached result")
	}
	if res.First() != cached {
		t.Errorf("result = %v, want cached item", res.First())
	}
	if got, _ := v.Get(q); got.Status != StatusSuccess || got.First() != cached {
		t.Errorf("cached = %v %v, want success", got.Status, got.First())
	}
}

func TestViewStaleResponseDoesNotOverwrite(t *testing.T) {
	older, newer := item("older"), item("newer")
	fq := &fakeQuerier{answers: []func(delivery.Query) ([]*delivery.Item, error){
		returns(newer), // the later-issued fetch resolves first
		returns(older),
	}}
	v := NewView(New(fq, nil))
	q := slugQuery("post")

	first := v.Begin(q)
	second := v.Begin(q)

	res, kept := second(context.Background())
	if !kept || res.First() != newer {
		t.Fatalf("later fetch should be kept, got kept=%v item=%v", kept, res.First())
	}
	res, kept = first(context.Background())
	if kept {
		t.Error("earlier fetch resolving late must be discarded")
	}
	if res.First() != newer {
		t.Errorf("current result = %v, want newer", res.First())
	}
	if got, _ := v.Get(q); got.First() != newer {
		t.Errorf("cached result = %v, want newer", got.First())
	}
}

func TestViewKeysDoNotCollide(t *testing.T) {
	a, b := item("a"), item("b")
	fq := &fakeQuerier{answers: []func(delivery.Query) ([]*delivery.Item, error){returns(a), returns(b)}}
	v := NewView(New(fq, nil))

	v.Fetch(context.Background(), slugQuery("a"))
	v.Fetch(context.Background(), slugQuery("b"))

	if got, _ := v.Get(slugQuery("a")); got.First() != a {
		t.Errorf("slug a = %v", got.First())
	}
	if got, _ := v.Get(slugQuery("b")); got.First() != b {
		t.Errorf("slug b = %v", got.First())
	}
	if _, ok := v.Get(slugQuery("c")); ok {
		t.Error("unfetched key should be absent")
	}
}

func TestViewSetWinsOverInFlightFetch(t *testing.T) {
	fetched, patched := item("fetched"), item("patched")
	fq := &fakeQuerier{answers: []func(delivery.Query) ([]*delivery.Item, error){returns(fetched)}}
	v := NewView(New(fq, nil))
	q := slugQuery("post")

	run := v.Begin(q)
	v.Set(q, []*delivery.Item{patched})
	if _, kept := run(context.Background()); kept {
		t.Error("fetch begun before Set must not replace the patched result")
	}
	if got, _ := v.Get(q); got.First() != patched {
		t.Errorf("current = %v, want patched", got.First())
	}
}
