package poller

import "time"

// Clock abstracts time for the poller so tests can drive ticks manually.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of time.Ticker the poller needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// SystemClock is the real Clock backed by the time package.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// NewTicker returns a ticker firing every d.
func (SystemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{ticker: time.NewTicker(d)}
}

type systemTicker struct {
	ticker *time.Ticker
}

func (t *systemTicker) C() <-chan time.Time { return t.ticker.C }
func (t *systemTicker) Stop()               { t.ticker.Stop() }

// Visibility reports whether the UI observing the poller is currently
// visible. Hidden ticks are skipped without drifting the schedule. A nil
// Visibility means always visible.
type Visibility func() bool
