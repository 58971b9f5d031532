// Package carousel holds the auto-advancing index behind the blog carousel.
// A Carousel is not safe for concurrent use; sessions mutate it from their
// event loop only.
package carousel

import (
	"context"
	"time"
)

// DefaultInterval is how often the carousel advances.
const DefaultInterval = 5 * time.Second

// Size is how many posts the blog carousel shows.
const Size = 3

// Carousel is an index over a fixed-length sequence of slides.
type Carousel struct {
	n        int
	index    int
	hovering bool
}

// New returns a carousel over n slides, showing the first.
func New(n int) *Carousel {
	if n < 0 {
		n = 0
	}
	return &Carousel{n: n}
}

// Len returns the number of slides.
func (c *Carousel) Len() int { return c.n }

// Index returns the slide currently shown.
func (c *Carousel) Index() int { return c.index }

// Hovering reports whether advancement is suspended.
func (c *Carousel) Hovering() bool { return c.hovering }

// Tick advances to the next slide and reports whether the index changed.
// Nothing happens while hovering or with fewer than two slides.
func (c *Carousel) Tick() bool {
	if c.hovering || c.n < 2 {
		return false
	}
	c.index = (c.index + 1) % c.n
	return true
}

// SetHover suspends or resumes advancement.
func (c *Carousel) SetHover(on bool) { c.hovering = on }

// Select shows slide i. Out-of-range indexes are rejected. The timer is not
// restarted.
func (c *Carousel) Select(i int) bool {
	if i < 0 || i >= c.n {
		return false
	}
	changed := c.index != i
	c.index = i
	return changed
}

// Resize changes the slide count, keeping the index when it is still valid.
func (c *Carousel) Resize(n int) {
	if n < 0 {
		n = 0
	}
	c.n = n
	if c.index >= n {
		c.index = 0
	}
}

// Drive calls tick every interval until ctx is done. A non-positive
// interval uses DefaultInterval.
func Drive(ctx context.Context, interval time.Duration, tick func()) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick()
		}
	}
}
