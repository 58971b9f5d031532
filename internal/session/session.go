// Package session runs the live side of a page view: a websocket through
// which the browser forwards CMS editing events and receives re-rendered
// markup and carousel moves.
//
// Each session has one event loop goroutine. Websocket reads, carousel
// ticks and fetch completions are posted to it, so page state is only
// mutated there. Fetches run off the loop.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/boulevard/internal/audit"
	"github.com/ziadkadry99/boulevard/internal/carousel"
	"github.com/ziadkadry99/boulevard/internal/delivery"
	"github.com/ziadkadry99/boulevard/internal/livepreview"
	"github.com/ziadkadry99/boulevard/internal/pages"
	"github.com/ziadkadry99/boulevard/internal/render"
)

const (
	writeWait  = 10 * time.Second
	queueDepth = 64
)

// Journal records what a session did with each notification.
type Journal interface {
	Log(ctx context.Context, e audit.Event) error
}

// Config holds what a session needs besides its connection.
type Config struct {
	ID       string
	Page     *pages.Page
	Site     *pages.Site
	Client   delivery.Querier
	Journal  Journal // optional
	Logger   *zap.Logger
	Interval time.Duration
}

// Session is the live connection of one page view.
type Session struct {
	id       string
	page     *pages.Page
	site     *pages.Site
	applier  *livepreview.Applier
	conn     *websocket.Conn
	journal  Journal
	logger   *zap.Logger
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	events chan event
	out    chan outbound
	wg     sync.WaitGroup

	// Owned by the event loop.
	loaded   bool
	carousel *carousel.Carousel
	pending  []livepreview.UpdateNotification
	applying bool
}

// New creates a session on an upgraded connection. Call Run to start it.
func New(conn *websocket.Conn, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = carousel.DefaultInterval
	}
	route := cfg.Page.Route
	base := delivery.Query{Language: route.Language, Preview: route.Preview, Depth: 3}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:       cfg.ID,
		page:     cfg.Page,
		site:     cfg.Site,
		applier:  livepreview.NewApplier(cfg.Client, base, logger),
		conn:     conn,
		journal:  cfg.Journal,
		logger:   logger.With(zap.String("session", cfg.ID), zap.String("page", route.URL.RequestURI())),
		interval: cfg.Interval,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan event, queueDepth),
		out:      make(chan outbound, queueDepth),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

var errClosed = errors.New("session: connection closed")

// Run serves the session until the connection closes or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer s.cancel()
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()

	g, gctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		<-gctx.Done()
		s.cancel()
		s.conn.Close()
		return nil
	})
	g.Go(s.readLoop)
	g.Go(s.writeLoop)
	g.Go(s.eventLoop)

	err := g.Wait()
	s.wg.Wait()
	if errors.Is(err, errClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Refresh asks the session to refresh automatically. It never blocks; a
// session whose queue is full drops the request.
func (s *Session) Refresh(n livepreview.RefreshNotification) bool {
	select {
	case s.events <- refreshEvent{n: n}:
		return true
	default:
		s.logger.Warn("session queue full, dropping refresh")
		return false
	}
}

func (s *Session) readLoop() error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read", zap.Error(err))
			}
			return errClosed
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			s.send(errorMessage("invalid message format"))
			continue
		}
		s.post(messageEvent{msg: msg})
	}
}

func (s *Session) writeLoop() error {
	for {
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case msg := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				return fmt.Errorf("writing message: %w", err)
			}
		}
	}
}

// post hands ev to the event loop.
func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

// send queues msg for the browser.
func (s *Session) send(msg outbound) {
	select {
	case s.out <- msg:
	case <-s.ctx.Done():
	}
}

// async runs fn off the loop. Only the event loop calls it.
func (s *Session) async(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Session) eventLoop() error {
	s.async(func() {
		s.post(loadedEvent{err: s.page.Load(s.ctx)})
	})
	for {
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Session) handle(ev event) {
	switch ev := ev.(type) {
	case loadedEvent:
		s.onLoaded(ev)
	case messageEvent:
		s.onMessage(ev.msg)
	case tickEvent:
		if s.carousel != nil && s.carousel.Tick() {
			s.send(carouselMessage(s.carousel.Index()))
		}
	case appliedEvent:
		s.onApplied(ev)
	case refreshEvent:
		s.refresh(ev.n)
	case refreshedEvent:
		s.onRefreshed(ev)
	}
}

func (s *Session) onLoaded(ev loadedEvent) {
	s.loaded = true
	if ev.err != nil {
		s.logger.Warn("loading page content", zap.Error(ev.err))
	}
	if s.page.Route.Kind == pages.KindBlog {
		s.carousel = carousel.New(s.carouselLen())
		s.async(func() {
			carousel.Drive(s.ctx, s.interval, func() { s.post(tickEvent{}) })
		})
	}
	s.send(outbound{Type: "ready"})
	s.nextUpdate()
}

func (s *Session) onMessage(msg inbound) {
	switch msg.Type {
	case "update":
		var n livepreview.UpdateNotification
		if err := json.Unmarshal(msg.Update, &n); err != nil {
			s.logger.Debug("malformed update", zap.Error(err))
			s.record(audit.Event{Kind: audit.KindUpdate, Outcome: audit.OutcomeIgnored, Detail: "malformed update: " + err.Error()})
			return
		}
		s.pending = append(s.pending, n)
		s.nextUpdate()
	case "refresh":
		var n livepreview.RefreshNotification
		if msg.Refresh != nil {
			n = *msg.Refresh
		}
		s.refresh(n)
	case "hover":
		if s.carousel != nil {
			s.carousel.SetHover(msg.Hover)
		}
	case "select":
		if s.carousel != nil && s.carousel.Select(msg.Index) {
			s.send(carouselMessage(s.carousel.Index()))
		}
	default:
		s.send(errorMessage("unknown message type: " + msg.Type))
	}
}

func (s *Session) carouselLen() int {
	return len(render.CarouselPosts(s.page.Items(pages.SlotPosts)))
}

// rerender sends fresh header and main markup for the current state.
func (s *Session) rerender() {
	index := 0
	if s.carousel != nil {
		s.carousel.Resize(s.carouselLen())
		index = s.carousel.Index()
	}
	out, err := s.site.Render(s.page, index)
	if err != nil {
		s.logger.Error("rendering page", zap.Error(err))
		s.send(errorMessage("rendering failed"))
		return
	}
	s.send(htmlMessage("header", string(out.Header)))
	s.send(htmlMessage("main", string(out.Main)))
}

func (s *Session) record(e audit.Event) {
	if s.journal == nil {
		return
	}
	e.SessionID = s.id
	e.Page = s.page.Route.URL.RequestURI()
	if err := s.journal.Log(s.ctx, e); err != nil && s.ctx.Err() == nil {
		s.logger.Warn("journaling preview event", zap.Error(err))
	}
}
