// Package internal holds cross-package tests that drive a wave through its
// whole lifecycle: polling workflow status, gating operator actions on each
// snapshot, and dispatching signals that advance the backend.
package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tempest-ops/opsdeck/internal/client"
	"github.com/tempest-ops/opsdeck/internal/poller"
	"github.com/tempest-ops/opsdeck/internal/signal"
	"github.com/tempest-ops/opsdeck/internal/testutil"
	"github.com/tempest-ops/opsdeck/internal/workflow"
)

// waveEngine is a minimal in-memory stand-in for the WMS wave workflow. Each
// signal advances the wave to its next phase the way the real engine does.
type waveEngine struct {
	mu     sync.Mutex
	status workflow.WorkflowStatus
}

func newWaveEngine() *waveEngine {
	return &waveEngine{status: workflow.WorkflowStatus{Status: workflow.WaveCreated}}
}

func (e *waveEngine) snapshot() workflow.WorkflowStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *waveEngine) set(status workflow.Status, step string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = workflow.WorkflowStatus{Status: status, CurrentStep: step}
}

func (e *waveEngine) ReleaseWave(ctx context.Context, waveID int64, req client.ReleaseWaveRequest) (client.Wave, error) {
	e.set(workflow.WaveInProgress, "WAITING_FOR_PICKS")
	return client.Wave{ID: waveID, Status: workflow.WaveInProgress}, nil
}

func (e *waveEngine) CancelWave(ctx context.Context, waveID int64, reason string) (client.Wave, error) {
	e.set(workflow.WaveCancelled, "CANCELLED")
	return client.Wave{ID: waveID, Status: workflow.WaveCancelled}, nil
}

func (e *waveEngine) SignalPicksCompleted(ctx context.Context, waveID int64) error {
	e.set(workflow.WaveInProgress, "WAITING_FOR_PACKS")
	return nil
}

func (e *waveEngine) SignalPacksCompleted(ctx context.Context, waveID int64) error {
	e.set(workflow.WaveCompleted, "COMPLETED")
	return nil
}

func (e *waveEngine) SignalFetchRates(ctx context.Context, waveID, shipmentID int64) error {
	return nil
}

func (e *waveEngine) SignalRateSelected(ctx context.Context, waveID, shipmentID int64, req client.SelectRateRequest) error {
	return nil
}

func (e *waveEngine) SignalPrintLabel(ctx context.Context, waveID, shipmentID int64) error {
	return nil
}

func (e *waveEngine) SignalShipmentConfirmed(ctx context.Context, waveID, shipmentID int64) error {
	return nil
}

type noOrders struct{}

func (noOrders) CancelOrder(ctx context.Context, orderID int64, reason string) (client.Order, error) {
	return client.Order{}, nil
}

// TestWaveLifecycle walks a wave from CREATED to COMPLETED, asserting that
// the gate only offers the action the phase calls for and that the poller
// stops once the status is terminal.
func TestWaveLifecycle(t *testing.T) {
	engine := newWaveEngine()
	gate := workflow.DefaultGate()
	dispatcher := signal.New(engine, noOrders{}, nil)

	clock := testutil.NewFakeClock()
	updates := make(chan poller.Snapshot[workflow.WorkflowStatus], 32)

	p, err := poller.NewWorkflow(poller.WorkflowOptions{
		WorkflowID: "wave-exec-1",
		Fetch: func(ctx context.Context, _ string) (workflow.WorkflowStatus, error) {
			return engine.snapshot(), nil
		},
		Terminal: workflow.WaveTerminal,
		Interval: 2 * time.Second,
		OnUpdate: func(s poller.Snapshot[workflow.WorkflowStatus]) { updates <- s },
		Clock:    clock,
	})
	if err != nil {
		t.Fatalf("NewWorkflow() error = %v", err)
	}
	p.Start(context.Background())
	defer p.Stop()

	next := func() workflow.WorkflowStatus {
		t.Helper()
		select {
		case s := <-updates:
			if s.Err != nil {
				t.Fatalf("poll error: %v", s.Err)
			}
			return s.Data
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for a poll")
			return workflow.WorkflowStatus{}
		}
	}

	// Phase 1: CREATED. Only release applies.
	ws := next()
	actions := gate.WaveActions(ws)
	if !actions.Release || actions.SignalPicks || actions.SignalPacks {
		t.Fatalf("actions for CREATED = %+v", actions)
	}
	if err := dispatcher.Send(context.Background(), signal.Signal{
		Name: signal.ReleaseWave, WaveID: 1,
	}); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	// Phase 2: picking. The next poll sees the released wave.
	clock.Tick()
	ws = next()
	actions = gate.WaveActions(ws)
	if actions.Release || !actions.SignalPicks {
		t.Fatalf("actions for %s/%s = %+v", ws.Status, ws.CurrentStep, actions)
	}
	if err := dispatcher.Send(context.Background(), signal.Signal{
		Name: signal.PicksComplete, WaveID: 1,
	}); err != nil {
		t.Fatalf("picks-complete failed: %v", err)
	}

	// Phase 3: packing.
	clock.Tick()
	ws = next()
	actions = gate.WaveActions(ws)
	if actions.SignalPicks || !actions.SignalPacks {
		t.Fatalf("actions for %s/%s = %+v", ws.Status, ws.CurrentStep, actions)
	}
	if err := dispatcher.Send(context.Background(), signal.Signal{
		Name: signal.PacksComplete, WaveID: 1,
	}); err != nil {
		t.Fatalf("packs-complete failed: %v", err)
	}

	// Phase 4: terminal. Polling stops and every action is hidden.
	clock.Tick()
	ws = next()
	if ws.Status != workflow.WaveCompleted {
		t.Fatalf("status = %s, want COMPLETED", ws.Status)
	}
	actions = gate.WaveActions(ws)
	if actions.Release || actions.SignalPicks || actions.SignalPacks || actions.Cancel {
		t.Fatalf("terminal wave still offers actions: %+v", actions)
	}
	testutil.Eventually(t, time.Second, func() bool { return !p.Running() },
		"polling should stop once the wave is terminal")
}

// TestSubscriberSeesSignals verifies the dispatcher's notification path used
// by the console to refresh pollers after a successful signal.
func TestSubscriberSeesSignals(t *testing.T) {
	engine := newWaveEngine()
	dispatcher := signal.New(engine, noOrders{}, nil)

	var mu sync.Mutex
	var seen []string
	dispatcher.Subscribe(func(sig signal.Signal) {
		mu.Lock()
		seen = append(seen, sig.Name)
		mu.Unlock()
	})

	ctx := context.Background()
	_ = dispatcher.Send(ctx, signal.Signal{Name: signal.ReleaseWave, WaveID: 1})
	_ = dispatcher.Send(ctx, signal.Signal{Name: signal.PicksComplete, WaveID: 1})

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != signal.ReleaseWave || seen[1] != signal.PicksComplete {
		t.Errorf("subscriber saw %v", seen)
	}
}
