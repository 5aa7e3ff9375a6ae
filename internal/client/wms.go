package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tempest-ops/opsdeck/internal/workflow"
)

// queryEscape is a shorthand for url.QueryEscape.
func queryEscape(s string) string { return url.QueryEscape(s) }

// WMS is the warehouse management service client. Besides the wave and
// facility records it carries the wave workflow surface: release, the
// operator signals, workflow status, shipment states and rate shopping.
type WMS struct {
	c *Client
}

// NewWMS builds a WMS client.
func NewWMS(opts Options) (*WMS, error) {
	opts.Service = "wms"
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	return &WMS{c: c}, nil
}

// ListFacilities returns all facilities for the tenant.
func (w *WMS) ListFacilities(ctx context.Context) ([]Facility, error) {
	var facilities []Facility
	if err := w.c.get(ctx, "/api/facilities", &facilities); err != nil {
		return nil, err
	}
	return facilities, nil
}

// GetFacility returns one facility by ID.
func (w *WMS) GetFacility(ctx context.Context, id int64) (Facility, error) {
	var f Facility
	err := w.c.get(ctx, fmt.Sprintf("/api/facilities/%d", id), &f)
	return f, err
}

// ListWaves returns all waves for the tenant.
func (w *WMS) ListWaves(ctx context.Context) ([]Wave, error) {
	var waves []Wave
	if err := w.c.get(ctx, "/api/waves", &waves); err != nil {
		return nil, err
	}
	return waves, nil
}

// ListWavesByStatus returns waves filtered by status.
func (w *WMS) ListWavesByStatus(ctx context.Context, status workflow.Status) ([]Wave, error) {
	var waves []Wave
	path := "/api/waves?status=" + queryEscape(string(status))
	if err := w.c.get(ctx, path, &waves); err != nil {
		return nil, err
	}
	return waves, nil
}

// GetWave returns one wave by ID.
func (w *WMS) GetWave(ctx context.Context, id int64) (Wave, error) {
	var wave Wave
	err := w.c.get(ctx, fmt.Sprintf("/api/waves/%d", id), &wave)
	return wave, err
}

// CreateWave creates a new wave.
func (w *WMS) CreateWave(ctx context.Context, req CreateWaveRequest) (Wave, error) {
	var wave Wave
	err := w.c.post(ctx, "/api/waves", req, &wave)
	return wave, err
}

// GetPickTasks returns the pick tasks for a wave.
func (w *WMS) GetPickTasks(ctx context.Context, waveID int64) ([]PickTask, error) {
	var tasks []PickTask
	if err := w.c.get(ctx, fmt.Sprintf("/api/waves/%d/pick-tasks", waveID), &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ReleaseWave releases a wave for execution, starting its workflow.
func (w *WMS) ReleaseWave(ctx context.Context, waveID int64, req ReleaseWaveRequest) (Wave, error) {
	var wave Wave
	err := w.c.post(ctx, fmt.Sprintf("/api/waves/%d/release", waveID), req, &wave)
	return wave, err
}

// CancelWave cancels a wave with a reason.
func (w *WMS) CancelWave(ctx context.Context, waveID int64, reason string) (Wave, error) {
	var wave Wave
	path := fmt.Sprintf("/api/waves/%d?reason=%s", waveID, queryEscape(reason))
	err := w.c.del(ctx, path, &wave)
	return wave, err
}

// SignalPicksCompleted tells the wave workflow all picks are done.
func (w *WMS) SignalPicksCompleted(ctx context.Context, waveID int64) error {
	return w.c.post(ctx, fmt.Sprintf("/api/waves/%d/picks-completed", waveID), nil, nil)
}

// SignalPacksCompleted tells the wave workflow all packs are done.
func (w *WMS) SignalPacksCompleted(ctx context.Context, waveID int64) error {
	return w.c.post(ctx, fmt.Sprintf("/api/waves/%d/packs-completed", waveID), nil, nil)
}

// GetWorkflowStatus returns the wave workflow's status, current step and
// blocking reason.
func (w *WMS) GetWorkflowStatus(ctx context.Context, waveID int64) (workflow.WorkflowStatus, error) {
	var ws workflow.WorkflowStatus
	err := w.c.get(ctx, fmt.Sprintf("/api/waves/%d/status", waveID), &ws)
	return ws, err
}

// GetShipmentStates returns the per-shipment workflow states for a wave.
func (w *WMS) GetShipmentStates(ctx context.Context, waveID int64) (ShipmentStatesResponse, error) {
	var resp ShipmentStatesResponse
	err := w.c.get(ctx, fmt.Sprintf("/api/waves/%d/shipments", waveID), &resp)
	return resp, err
}

// SignalFetchRates starts rate shopping for a shipment in a wave.
func (w *WMS) SignalFetchRates(ctx context.Context, waveID, shipmentID int64) error {
	path := fmt.Sprintf("/api/waves/%d/shipments/%d/fetch-rates", waveID, shipmentID)
	return w.c.post(ctx, path, nil, nil)
}

// GetFetchedRates returns the current rate-shopping state for a shipment.
func (w *WMS) GetFetchedRates(ctx context.Context, waveID, shipmentID int64) (FetchedRates, error) {
	var rates FetchedRates
	path := fmt.Sprintf("/api/waves/%d/shipments/%d/rates", waveID, shipmentID)
	err := w.c.get(ctx, path, &rates)
	return rates, err
}

// SignalRateSelected picks one carrier rate for a shipment.
func (w *WMS) SignalRateSelected(ctx context.Context, waveID, shipmentID int64, req SelectRateRequest) error {
	path := fmt.Sprintf("/api/waves/%d/shipments/%d/select-rate", waveID, shipmentID)
	return w.c.post(ctx, path, req, nil)
}

// SignalPrintLabel asks the workflow to generate a label for a shipment.
func (w *WMS) SignalPrintLabel(ctx context.Context, waveID, shipmentID int64) error {
	path := fmt.Sprintf("/api/waves/%d/shipments/%d/print-label", waveID, shipmentID)
	return w.c.post(ctx, path, nil, nil)
}

// SignalShipmentConfirmed marks a shipment as physically shipped.
func (w *WMS) SignalShipmentConfirmed(ctx context.Context, waveID, shipmentID int64) error {
	path := fmt.Sprintf("/api/waves/%d/shipments/%d/confirm-shipped", waveID, shipmentID)
	return w.c.post(ctx, path, nil, nil)
}
