package signal

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/tempest-ops/opsdeck/internal/client"
	"github.com/tempest-ops/opsdeck/internal/errors"
)

// fakeWaveAPI records calls and returns scripted errors.
type fakeWaveAPI struct {
	mu    sync.Mutex
	calls []string
	err   error
	block chan struct{} // when set, calls wait until closed
}

func (f *fakeWaveAPI) record(name string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	block, err := f.block, f.err
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return err
}

func (f *fakeWaveAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeWaveAPI) ReleaseWave(ctx context.Context, waveID int64, req client.ReleaseWaveRequest) (client.Wave, error) {
	return client.Wave{ID: waveID}, f.record("release")
}

func (f *fakeWaveAPI) CancelWave(ctx context.Context, waveID int64, reason string) (client.Wave, error) {
	return client.Wave{ID: waveID}, f.record("cancel:" + reason)
}

func (f *fakeWaveAPI) SignalPicksCompleted(ctx context.Context, waveID int64) error {
	return f.record("picks")
}

func (f *fakeWaveAPI) SignalPacksCompleted(ctx context.Context, waveID int64) error {
	return f.record("packs")
}

func (f *fakeWaveAPI) SignalFetchRates(ctx context.Context, waveID, shipmentID int64) error {
	return f.record("fetch-rates")
}

func (f *fakeWaveAPI) SignalRateSelected(ctx context.Context, waveID, shipmentID int64, req client.SelectRateRequest) error {
	return f.record("select-rate:" + req.Carrier)
}

func (f *fakeWaveAPI) SignalPrintLabel(ctx context.Context, waveID, shipmentID int64) error {
	return f.record("print-label")
}

func (f *fakeWaveAPI) SignalShipmentConfirmed(ctx context.Context, waveID, shipmentID int64) error {
	return f.record("confirm-shipped")
}

type fakeOrderAPI struct {
	mu     sync.Mutex
	reason string
	err    error
}

func (f *fakeOrderAPI) CancelOrder(ctx context.Context, orderID int64, reason string) (client.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reason = reason
	return client.Order{ID: orderID}, f.err
}

func TestSendMakesOneCall(t *testing.T) {
	waves := &fakeWaveAPI{}
	d := New(waves, &fakeOrderAPI{}, nil)

	if err := d.Send(context.Background(), Signal{Name: PicksComplete, WaveID: 7}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if waves.callCount() != 1 {
		t.Errorf("calls = %d, want exactly 1", waves.callCount())
	}
}

func TestSendRejectsConcurrent(t *testing.T) {
	waves := &fakeWaveAPI{block: make(chan struct{})}
	d := New(waves, &fakeOrderAPI{}, nil)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- d.Send(context.Background(), Signal{Name: PicksComplete, WaveID: 7})
	}()

	// Wait for the first Send to latch.
	deadline := time.Now().Add(time.Second)
	for !d.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("dispatcher never became busy")
		}
		time.Sleep(time.Millisecond)
	}

	err := d.Send(context.Background(), Signal{Name: PacksComplete, WaveID: 7})
	if !errors.Is(err, errors.ErrSignalInFlight) {
		t.Errorf("second Send error = %v, want ErrSignalInFlight", err)
	}

	close(waves.block)
	if err := <-firstDone; err != nil {
		t.Errorf("first Send error = %v", err)
	}
	if waves.callCount() != 1 {
		t.Errorf("calls = %d, want 1 (rejected Send must not reach the backend)", waves.callCount())
	}
	if d.Busy() {
		t.Error("dispatcher still busy after Send returned")
	}
}

func TestSendNotifiesSubscribersOnSuccess(t *testing.T) {
	waves := &fakeWaveAPI{}
	d := New(waves, &fakeOrderAPI{}, nil)

	var got []Signal
	d.Subscribe(func(sig Signal) { got = append(got, sig) })

	sig := Signal{Name: FetchRates, WaveID: 7, ShipmentID: 3}
	if err := d.Send(context.Background(), sig); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != FetchRates || got[0].ShipmentID != 3 {
		t.Errorf("subscriber got %+v", got)
	}
}

func TestSendFailureSkipsSubscribers(t *testing.T) {
	backendErr := errors.NewServiceError("wms", http.StatusConflict, "CONFLICT", "not in a packable step")
	waves := &fakeWaveAPI{err: backendErr}
	d := New(waves, &fakeOrderAPI{}, nil)

	notified := false
	d.Subscribe(func(Signal) { notified = true })

	err := d.Send(context.Background(), Signal{Name: PacksComplete, WaveID: 7})
	if err == nil {
		t.Fatal("expected the backend error")
	}
	if notified {
		t.Error("subscribers must not fire on failure")
	}

	// The backend error stays reachable through the signal context.
	if !errors.IsConflict(err) {
		t.Errorf("IsConflict() = false for %v", err)
	}
	var sigErr *errors.SignalError
	if !errors.As(err, &sigErr) {
		t.Fatalf("As(*SignalError) failed for %v", err)
	}
	if sigErr.Signal != PacksComplete || sigErr.EntityID != 7 {
		t.Errorf("signal context = %+v", sigErr)
	}
}

func TestSendValidation(t *testing.T) {
	tests := []struct {
		name string
		sig  Signal
	}{
		{"release without wave", Signal{Name: ReleaseWave}},
		{"picks without wave", Signal{Name: PicksComplete}},
		{"cancel order without id", Signal{Name: CancelOrder}},
		{"fetch rates without shipment", Signal{Name: FetchRates, WaveID: 7}},
		{"select rate without carrier", Signal{Name: SelectRate, WaveID: 7, ShipmentID: 3}},
		{"unknown signal", Signal{Name: "reboot-warehouse", WaveID: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			waves := &fakeWaveAPI{}
			d := New(waves, &fakeOrderAPI{}, nil)
			if err := d.Send(context.Background(), tt.sig); err == nil {
				t.Error("Send() should fail validation")
			}
			if waves.callCount() != 0 {
				t.Errorf("invalid signal reached the backend: %v", waves.calls)
			}
		})
	}
}

func TestCancelReasonDefaults(t *testing.T) {
	t.Run("wave cancel uses default reason", func(t *testing.T) {
		waves := &fakeWaveAPI{}
		d := New(waves, &fakeOrderAPI{}, nil)
		if err := d.Send(context.Background(), Signal{Name: CancelWave, WaveID: 7}); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		waves.mu.Lock()
		defer waves.mu.Unlock()
		if waves.calls[0] != "cancel:"+DefaultCancelReason {
			t.Errorf("call = %q", waves.calls[0])
		}
	})

	t.Run("order cancel keeps explicit reason", func(t *testing.T) {
		orders := &fakeOrderAPI{}
		d := New(&fakeWaveAPI{}, orders, nil)
		sig := Signal{Name: CancelOrder, OrderID: 12, Reason: "customer request"}
		if err := d.Send(context.Background(), sig); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		orders.mu.Lock()
		defer orders.mu.Unlock()
		if orders.reason != "customer request" {
			t.Errorf("reason = %q", orders.reason)
		}
	})
}

func TestSelectRateCarriesSelection(t *testing.T) {
	waves := &fakeWaveAPI{}
	d := New(waves, &fakeOrderAPI{}, nil)

	sig := Signal{Name: SelectRate, WaveID: 7, ShipmentID: 3, Carrier: "FEDEX", ServiceLevel: "OVERNIGHT"}
	if err := d.Send(context.Background(), sig); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	waves.mu.Lock()
	defer waves.mu.Unlock()
	if waves.calls[0] != "select-rate:FEDEX" {
		t.Errorf("call = %q", waves.calls[0])
	}
}
