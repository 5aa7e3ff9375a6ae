// Package testutil provides testing utilities for opsdeck tests.
package testutil

import (
	"sync"
	"time"

	"github.com/tempest-ops/opsdeck/internal/poller"
)

// FakeClock is a poller.Clock driven manually by tests. Tickers never fire
// on their own; each Tick call delivers exactly one tick to the most
// recently created ticker.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*FakeTicker
}

// NewFakeClock returns a FakeClock starting at a fixed reference time.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)}
}

// Now returns the clock's current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward without firing any tickers.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewTicker registers a manually driven ticker.
func (c *FakeClock) NewTicker(d time.Duration) poller.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &FakeTicker{ch: make(chan time.Time), interval: d}
	c.tickers = append(c.tickers, t)
	return t
}

// Tick advances the clock by the ticker's interval and delivers one tick to
// the most recently created ticker. It blocks until the tick is consumed,
// so after Tick returns the poll loop has at least observed the tick.
// Panics if no ticker appears within two seconds, which indicates the code
// under test never started its ticker.
func (c *FakeClock) Tick() {
	t := c.waitTicker()

	c.mu.Lock()
	c.now = c.now.Add(t.interval)
	now := c.now
	c.mu.Unlock()

	t.ch <- now
}

func (c *FakeClock) waitTicker() *FakeTicker {
	deadline := time.Now().Add(2 * time.Second)
	for {
		c.mu.Lock()
		if n := len(c.tickers); n > 0 {
			t := c.tickers[n-1]
			c.mu.Unlock()
			return t
		}
		c.mu.Unlock()

		if time.Now().After(deadline) {
			panic("testutil: no ticker registered; is the poller running?")
		}
		time.Sleep(time.Millisecond)
	}
}

// FakeTicker is a ticker fired by FakeClock.Tick.
type FakeTicker struct {
	ch       chan time.Time
	interval time.Duration

	mu      sync.Mutex
	stopped bool
}

// C returns the tick channel.
func (t *FakeTicker) C() <-chan time.Time { return t.ch }

// Stop marks the ticker stopped.
func (t *FakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

// Stopped reports whether Stop has been called.
func (t *FakeTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
