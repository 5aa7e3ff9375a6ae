// Package signal dispatches operator intents to the wave and order
// workflows. Every Send makes exactly one network call; the backend decides
// what the signal means for workflow state, and the console only reconciles
// by refreshing its pollers afterwards. A per-dispatcher latch rejects a
// second Send while one is in flight so the UI can disable controls instead
// of queueing duplicate intents.
package signal

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tempest-ops/opsdeck/internal/client"
	"github.com/tempest-ops/opsdeck/internal/errors"
	"github.com/tempest-ops/opsdeck/internal/logging"
)

// Signal names. These are the complete set of operator intents.
const (
	ReleaseWave    = "release-wave"
	PicksComplete  = "picks-complete"
	PacksComplete  = "packs-complete"
	CancelWave     = "cancel-wave"
	CancelOrder    = "cancel-order"
	FetchRates     = "fetch-rates"
	SelectRate     = "select-rate"
	PrintLabel     = "print-label"
	ConfirmShipped = "confirm-shipped"
)

// DefaultCancelReason is used when the operator does not supply one.
const DefaultCancelReason = "Cancelled by user"

// Signal is one operator intent. Which fields matter depends on Name.
type Signal struct {
	Name       string
	WaveID     int64
	OrderID    int64
	ShipmentID int64
	// Reason accompanies cancellations.
	Reason string
	// Carrier and ServiceLevel accompany SelectRate.
	Carrier      string
	ServiceLevel string
	// Orders accompanies ReleaseWave.
	Orders []client.WaveOrderDetail
}

// WaveAPI is the slice of the WMS client the dispatcher needs.
type WaveAPI interface {
	ReleaseWave(ctx context.Context, waveID int64, req client.ReleaseWaveRequest) (client.Wave, error)
	CancelWave(ctx context.Context, waveID int64, reason string) (client.Wave, error)
	SignalPicksCompleted(ctx context.Context, waveID int64) error
	SignalPacksCompleted(ctx context.Context, waveID int64) error
	SignalFetchRates(ctx context.Context, waveID, shipmentID int64) error
	SignalRateSelected(ctx context.Context, waveID, shipmentID int64, req client.SelectRateRequest) error
	SignalPrintLabel(ctx context.Context, waveID, shipmentID int64) error
	SignalShipmentConfirmed(ctx context.Context, waveID, shipmentID int64) error
}

// OrderAPI is the slice of the OMS client the dispatcher needs.
type OrderAPI interface {
	CancelOrder(ctx context.Context, orderID int64, reason string) (client.Order, error)
}

// Dispatcher sends operator signals to the backends.
type Dispatcher struct {
	waves  WaveAPI
	orders OrderAPI
	logger *logging.Logger

	inFlight atomic.Bool

	mu        sync.Mutex
	listeners []func(Signal)
}

// New builds a Dispatcher. Logger may be nil.
func New(waves WaveAPI, orders OrderAPI, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Dispatcher{waves: waves, orders: orders, logger: logger}
}

// Subscribe registers a callback invoked after every successful Send. The
// TUI uses this to refresh pollers and invalidate cached lists.
func (d *Dispatcher) Subscribe(fn func(Signal)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Busy reports whether a signal is currently in flight.
func (d *Dispatcher) Busy() bool {
	return d.inFlight.Load()
}

// Send dispatches one signal. Returns ErrSignalInFlight when another Send
// has not finished yet. On failure the backend error is returned wrapped in
// signal context with no local state change; on success subscribers are
// notified so views can reconcile.
func (d *Dispatcher) Send(ctx context.Context, sig Signal) error {
	if !d.inFlight.CompareAndSwap(false, true) {
		return errors.ErrSignalInFlight
	}
	defer d.inFlight.Store(false)

	logger := d.logger.WithSignal(sig.Name)

	if err := d.dispatch(ctx, sig); err != nil {
		logger.Warn("signal failed", "wave_id", sig.WaveID, "order_id", sig.OrderID,
			"shipment_id", sig.ShipmentID, "error", err.Error())
		return errors.NewSignalError(sig.Name, err).WithEntityID(entityID(sig))
	}

	logger.Info("signal sent", "wave_id", sig.WaveID, "order_id", sig.OrderID,
		"shipment_id", sig.ShipmentID)

	d.notify(sig)
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, sig Signal) error {
	switch sig.Name {
	case ReleaseWave:
		if err := requireWave(sig); err != nil {
			return err
		}
		_, err := d.waves.ReleaseWave(ctx, sig.WaveID, client.ReleaseWaveRequest{Orders: sig.Orders})
		return err

	case PicksComplete:
		if err := requireWave(sig); err != nil {
			return err
		}
		return d.waves.SignalPicksCompleted(ctx, sig.WaveID)

	case PacksComplete:
		if err := requireWave(sig); err != nil {
			return err
		}
		return d.waves.SignalPacksCompleted(ctx, sig.WaveID)

	case CancelWave:
		if err := requireWave(sig); err != nil {
			return err
		}
		_, err := d.waves.CancelWave(ctx, sig.WaveID, reasonOrDefault(sig.Reason))
		return err

	case CancelOrder:
		if sig.OrderID <= 0 {
			return errors.New("signal requires an order id")
		}
		_, err := d.orders.CancelOrder(ctx, sig.OrderID, reasonOrDefault(sig.Reason))
		return err

	case FetchRates:
		if err := requireShipment(sig); err != nil {
			return err
		}
		return d.waves.SignalFetchRates(ctx, sig.WaveID, sig.ShipmentID)

	case SelectRate:
		if err := requireShipment(sig); err != nil {
			return err
		}
		if sig.Carrier == "" || sig.ServiceLevel == "" {
			return errors.New("select-rate requires a carrier and service level")
		}
		return d.waves.SignalRateSelected(ctx, sig.WaveID, sig.ShipmentID,
			client.SelectRateRequest{Carrier: sig.Carrier, ServiceLevel: sig.ServiceLevel})

	case PrintLabel:
		if err := requireShipment(sig); err != nil {
			return err
		}
		return d.waves.SignalPrintLabel(ctx, sig.WaveID, sig.ShipmentID)

	case ConfirmShipped:
		if err := requireShipment(sig); err != nil {
			return err
		}
		return d.waves.SignalShipmentConfirmed(ctx, sig.WaveID, sig.ShipmentID)

	default:
		return errors.Newf("unknown signal %q", sig.Name)
	}
}

func (d *Dispatcher) notify(sig Signal) {
	d.mu.Lock()
	listeners := make([]func(Signal), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(sig)
	}
}

func requireWave(sig Signal) error {
	if sig.WaveID <= 0 {
		return errors.New("signal requires a wave id")
	}
	return nil
}

func requireShipment(sig Signal) error {
	if err := requireWave(sig); err != nil {
		return err
	}
	if sig.ShipmentID <= 0 {
		return errors.New("signal requires a shipment id")
	}
	return nil
}

func reasonOrDefault(reason string) string {
	if reason == "" {
		return DefaultCancelReason
	}
	return reason
}

func entityID(sig Signal) int64 {
	switch {
	case sig.ShipmentID > 0:
		return sig.ShipmentID
	case sig.OrderID > 0:
		return sig.OrderID
	default:
		return sig.WaveID
	}
}
