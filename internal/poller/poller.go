// Package poller implements a fixed-interval status poller with visibility
// pausing, an out-of-schedule refresh hook, and a stop predicate for
// workflows that reach a terminal state. The poller owns one goroutine; the
// latest result is published as an atomically swapped snapshot so any number
// of readers can inspect it without coordinating with the poll loop.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tempest-ops/opsdeck/internal/errors"
)

// Snapshot holds the result of the most recent fetch. Err is set when the
// fetch failed; Data then still carries the last good value, if any.
type Snapshot[T any] struct {
	Data    T
	Err     error
	Seq     uint64
	Updated time.Time
}

// Options configures a Poller.
type Options[T any] struct {
	// Fetch retrieves the current value. Required.
	Fetch func(ctx context.Context) (T, error)
	// Interval is the polling period. Required, must be positive.
	Interval time.Duration
	// ShouldStop halts polling when it returns true for a freshly fetched
	// value. Optional.
	ShouldStop func(T) bool
	// OnUpdate is invoked from the poll goroutine after every applied
	// snapshot, including error snapshots. Optional.
	OnUpdate func(Snapshot[T])
	// Clock supplies tickers. Defaults to SystemClock.
	Clock Clock
	// Visible gates fetching. Ticks that land while hidden are skipped;
	// the schedule does not drift. Defaults to always visible.
	Visible Visibility
}

// Poller repeatedly fetches a value on a fixed interval.
type Poller[T any] struct {
	opts Options[T]

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	refresh chan struct{}

	seq      atomic.Uint64
	snapshot atomic.Pointer[Snapshot[T]]
}

// New builds a Poller from opts. Fetch and a positive Interval are required.
func New[T any](opts Options[T]) (*Poller[T], error) {
	if opts.Fetch == nil {
		return nil, errors.New("poller: Fetch is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("poller: Interval must be positive")
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	return &Poller[T]{opts: opts}, nil
}

// Start begins polling. The first fetch happens immediately, then every
// Interval. Starting an already running poller is a no-op.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.refresh = make(chan struct{}, 1)
	p.running = true

	go p.loop(ctx, p.done, p.refresh)
}

// Stop halts polling and cancels any in-flight fetch. It blocks until the
// poll goroutine has exited. Stopping a stopped poller is a no-op.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
}

// Refresh requests one out-of-schedule fetch. Callers use this after a
// mutation, or when the terminal regains focus, so the view catches up
// without waiting for the next tick. A no-op when the poller is stopped or
// a refresh is already pending.
func (p *Poller[T]) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Running reports whether the poll goroutine is active.
func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Snapshot returns the latest applied snapshot. The zero Snapshot is
// returned before the first fetch completes.
func (p *Poller[T]) Snapshot() Snapshot[T] {
	if s := p.snapshot.Load(); s != nil {
		return *s
	}
	return Snapshot[T]{}
}

func (p *Poller[T]) loop(ctx context.Context, done chan struct{}, refresh chan struct{}) {
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
		close(done)
	}()

	// Tick zero: fetch right away so the view is never blank for a full
	// interval after opening.
	if p.visible() {
		if stop := p.fetch(ctx); stop {
			return
		}
	}

	ticker := p.opts.Clock.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !p.visible() {
				continue
			}
			if stop := p.fetch(ctx); stop {
				return
			}
		case <-refresh:
			if stop := p.fetch(ctx); stop {
				return
			}
		}
	}
}

func (p *Poller[T]) visible() bool {
	return p.opts.Visible == nil || p.opts.Visible()
}

// fetch runs one fetch and applies the result. Returns true when polling
// should halt, either because the context was cancelled or ShouldStop fired.
func (p *Poller[T]) fetch(ctx context.Context) bool {
	seq := p.seq.Add(1)

	data, err := p.opts.Fetch(ctx)
	if ctx.Err() != nil {
		// Cancelled mid-fetch; discard whatever came back.
		return true
	}

	snap := Snapshot[T]{Seq: seq, Updated: p.opts.Clock.Now()}
	if err != nil {
		// Soft fail: keep the last good data visible alongside the error.
		if prev := p.snapshot.Load(); prev != nil {
			snap.Data = prev.Data
		}
		snap.Err = errors.NewPollError(seq, err)
	} else {
		snap.Data = data
	}

	if !p.apply(snap) {
		return false
	}

	if err == nil && p.opts.ShouldStop != nil && p.opts.ShouldStop(data) {
		return true
	}
	return false
}

// apply publishes snap unless a newer snapshot has already landed. Returns
// whether the snapshot was applied.
func (p *Poller[T]) apply(snap Snapshot[T]) bool {
	prev := p.snapshot.Load()
	if prev != nil && prev.Seq >= snap.Seq {
		return false
	}
	p.snapshot.Store(&snap)

	if p.opts.OnUpdate != nil {
		p.opts.OnUpdate(snap)
	}
	return true
}
