// Package loader runs page content queries and tracks their results.
//
// A Loader is shared by the whole server and collapses identical in-flight
// queries. A View belongs to one page view and caches the latest resolved
// result of every query that page issued, keyed by the query's full
// parameter tuple.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ziadkadry99/boulevard/internal/delivery"
)

// Status classifies a query result.
type Status int

const (
	StatusSuccess Status = iota
	StatusEmpty
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusEmpty:
		return "empty"
	case StatusFailure:
		return "failure"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result is the outcome of one query.
type Result struct {
	Status Status
	Items  []*delivery.Item
	Err    error
}

// First returns the first item of a successful result, or nil.
func (r Result) First() *delivery.Item {
	if r.Status != StatusSuccess || len(r.Items) == 0 {
		return nil
	}
	return r.Items[0]
}

// DefaultTimeout bounds a shared query when the Loader has no timeout.
const DefaultTimeout = 30 * time.Second

// Loader executes queries against a delivery.Querier.
type Loader struct {
	client  delivery.Querier
	group   singleflight.Group
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Loader.
func New(client delivery.Querier, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{client: client, timeout: DefaultTimeout, logger: logger}
}

// Client returns the underlying delivery collaborator.
func (l *Loader) Client() delivery.Querier { return l.client }

// Load runs q and classifies the outcome. Zero items or a not-found answer
// is StatusEmpty; every other error is StatusFailure.
//
// Identical in-flight queries share one request. The shared request is
// detached from every caller's cancellation and bounded by the Loader's
// timeout instead. A caller whose own ctx is done gets a StatusFailure
// carrying ctx.Err(), which is never a TransportError.
func (l *Loader) Load(ctx context.Context, q delivery.Query) Result {
	key := q.Key()
	if err := ctx.Err(); err != nil {
		return Result{Status: StatusFailure, Err: err}
	}
	ch := l.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.client.Query(shared, q)
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		l.logger.Debug("query abandoned by caller", zap.String("key", key), zap.Error(ctx.Err()))
		return Result{Status: StatusFailure, Err: ctx.Err()}
	case r = <-ch:
	}
	if r.Shared {
		l.logger.Debug("query shared with in-flight request", zap.String("key", key))
	}

	switch err := r.Err; {
	case err != nil && delivery.IsNotFound(err):
		l.logger.Debug("query returned not found", zap.String("key", key))
		return Result{Status: StatusEmpty}
	case err != nil:
		l.logger.Warn("query failed", zap.String("key", key), zap.Error(err))
		return Result{Status: StatusFailure, Err: failure(err)}
	}

	items, _ := r.Val.([]*delivery.Item)
	if len(items) == 0 {
		return Result{Status: StatusEmpty}
	}
	return Result{Status: StatusSuccess, Items: items}
}

// Canceled reports whether r failed because its caller gave up rather than
// because the content source failed.
func (r Result) Canceled() bool {
	return r.Status == StatusFailure &&
		(errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded)) &&
		!delivery.IsTransport(r.Err)
}

// failure makes sure a failed result always carries a TransportError so the
// error boundary can recognise it.
func failure(err error) error {
	var te *delivery.TransportError
	if errors.As(err, &te) {
		return err
	}
	return &delivery.TransportError{Err: err}
}
