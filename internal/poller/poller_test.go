package poller_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tempest-ops/opsdeck/internal/errors"
	"github.com/tempest-ops/opsdeck/internal/poller"
	"github.com/tempest-ops/opsdeck/internal/testutil"
)

// harness wires a poller to a scripted fetch and collects snapshots.
type harness struct {
	clock   *testutil.FakeClock
	updates chan poller.Snapshot[int]
	fetches atomic.Int64

	mu      sync.Mutex
	results []fetchResult
	visible bool
}

type fetchResult struct {
	value int
	err   error
}

func newHarness(results ...fetchResult) *harness {
	return &harness{
		clock:   testutil.NewFakeClock(),
		updates: make(chan poller.Snapshot[int], 32),
		results: results,
		visible: true,
	}
}

func (h *harness) fetch(ctx context.Context) (int, error) {
	n := int(h.fetches.Add(1))

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.results) == 0 {
		return n, nil
	}
	r := h.results[0]
	if len(h.results) > 1 {
		h.results = h.results[1:]
	}
	return r.value, r.err
}

func (h *harness) setVisible(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visible = v
}

func (h *harness) isVisible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}

func (h *harness) options() poller.Options[int] {
	return poller.Options[int]{
		Fetch:    h.fetch,
		Interval: time.Second,
		OnUpdate: func(s poller.Snapshot[int]) { h.updates <- s },
		Clock:    h.clock,
		Visible:  h.isVisible,
	}
}

func (h *harness) next(t *testing.T) poller.Snapshot[int] {
	t.Helper()
	select {
	case s := <-h.updates:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a snapshot")
		return poller.Snapshot[int]{}
	}
}

func (h *harness) expectNoUpdate(t *testing.T) {
	t.Helper()
	select {
	case s := <-h.updates:
		t.Fatalf("unexpected snapshot: %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := poller.New(poller.Options[int]{Interval: time.Second}); err == nil {
		t.Error("New() without Fetch should fail")
	}
	if _, err := poller.New(poller.Options[int]{Fetch: func(context.Context) (int, error) { return 0, nil }}); err == nil {
		t.Error("New() without Interval should fail")
	}
}

func TestTickZeroFetch(t *testing.T) {
	h := newHarness()
	p, err := poller.New(h.options())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	p.Start(context.Background())
	defer p.Stop()

	s := h.next(t)
	if s.Data != 1 {
		t.Errorf("first snapshot = %d, want 1 (immediate fetch on start)", s.Data)
	}
	if s.Seq != 1 {
		t.Errorf("Seq = %d, want 1", s.Seq)
	}
}

func TestFetchOnEachTick(t *testing.T) {
	h := newHarness()
	p, _ := poller.New(h.options())
	p.Start(context.Background())
	defer p.Stop()

	h.next(t) // tick zero

	h.clock.Tick()
	if s := h.next(t); s.Data != 2 {
		t.Errorf("second snapshot = %d, want 2", s.Data)
	}

	h.clock.Tick()
	if s := h.next(t); s.Data != 3 {
		t.Errorf("third snapshot = %d, want 3", s.Data)
	}
}

func TestHiddenTicksSkipped(t *testing.T) {
	h := newHarness()
	p, _ := poller.New(h.options())
	p.Start(context.Background())
	defer p.Stop()

	h.next(t) // tick zero

	h.setVisible(false)
	h.clock.Tick()
	h.clock.Tick()
	h.expectNoUpdate(t)

	if got := h.fetches.Load(); got != 1 {
		t.Errorf("fetches while hidden = %d, want 1 (only tick zero)", got)
	}

	// Regaining visibility: the next tick fetches again.
	h.setVisible(true)
	h.clock.Tick()
	if s := h.next(t); s.Data != 2 {
		t.Errorf("snapshot after refocus = %d, want 2", s.Data)
	}
}

func TestRefreshFetchesImmediately(t *testing.T) {
	h := newHarness()
	p, _ := poller.New(h.options())
	p.Start(context.Background())
	defer p.Stop()

	h.next(t) // tick zero

	p.Refresh()
	if s := h.next(t); s.Data != 2 {
		t.Errorf("snapshot after Refresh = %d, want 2", s.Data)
	}
}

func TestShouldStopHaltsPolling(t *testing.T) {
	h := newHarness(
		fetchResult{value: 1},
		fetchResult{value: 2},
		fetchResult{value: 99},
	)
	opts := h.options()
	opts.ShouldStop = func(v int) bool { return v == 99 }

	p, _ := poller.New(opts)
	p.Start(context.Background())

	h.next(t) // 1
	h.clock.Tick()
	h.next(t) // 2
	h.clock.Tick()
	s := h.next(t) // 99, terminal
	if s.Data != 99 {
		t.Fatalf("terminal snapshot = %d, want 99", s.Data)
	}

	testutil.Eventually(t, time.Second, func() bool { return !p.Running() },
		"poller should stop after ShouldStop fires")

	if got := h.fetches.Load(); got != 3 {
		t.Errorf("fetches = %d, want 3 (no fetch after terminal)", got)
	}
}

func TestFetchErrorIsSoftFail(t *testing.T) {
	h := newHarness(
		fetchResult{value: 7},
		fetchResult{err: errors.New("connection refused")},
		fetchResult{value: 8},
	)
	p, _ := poller.New(h.options())
	p.Start(context.Background())
	defer p.Stop()

	h.next(t) // 7

	h.clock.Tick()
	s := h.next(t)
	if s.Err == nil {
		t.Fatal("error snapshot should carry the fetch error")
	}
	if !errors.IsRetryable(s.Err) {
		t.Error("poll errors should classify as retryable")
	}
	if s.Data != 7 {
		t.Errorf("error snapshot Data = %d, want last good value 7", s.Data)
	}

	// Polling continues after the error.
	h.clock.Tick()
	s = h.next(t)
	if s.Err != nil || s.Data != 8 {
		t.Errorf("recovery snapshot = %+v, want Data=8 with nil Err", s)
	}
}

func TestStopIsSynchronous(t *testing.T) {
	h := newHarness()
	p, _ := poller.New(h.options())
	p.Start(context.Background())
	h.next(t)

	p.Stop()
	if p.Running() {
		t.Error("Running() = true after Stop returned")
	}

	// Stop again is a no-op.
	p.Stop()

	// Refresh after stop is a no-op.
	p.Refresh()
	if got := h.fetches.Load(); got != 1 {
		t.Errorf("fetches after stop = %d, want 1", got)
	}
}

func TestSnapshotBeforeFirstFetch(t *testing.T) {
	h := newHarness()
	p, _ := poller.New(h.options())

	s := p.Snapshot()
	if s.Seq != 0 || s.Err != nil {
		t.Errorf("zero-value snapshot expected, got %+v", s)
	}
}

func TestStartWhileRunningIsNoOp(t *testing.T) {
	h := newHarness()
	p, _ := poller.New(h.options())
	p.Start(context.Background())
	defer p.Stop()

	h.next(t)
	p.Start(context.Background())
	h.expectNoUpdate(t)

	if got := h.fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1 (second Start must not refetch)", got)
	}
}
