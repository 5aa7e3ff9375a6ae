// Package tui implements the operator console: a wave list, a wave detail
// screen with live workflow status and gated actions, and the rate-shopping
// dialog. All backend reads flow through pollers that pause while the
// terminal is unfocused; all writes flow through the signal dispatcher.
package tui

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tempest-ops/opsdeck/internal/client"
	"github.com/tempest-ops/opsdeck/internal/config"
	"github.com/tempest-ops/opsdeck/internal/logging"
	"github.com/tempest-ops/opsdeck/internal/poller"
	"github.com/tempest-ops/opsdeck/internal/rateshop"
	"github.com/tempest-ops/opsdeck/internal/signal"
	"github.com/tempest-ops/opsdeck/internal/workflow"
)

// Backend is the read surface of the WMS client the console polls.
type Backend interface {
	ListWaves(ctx context.Context) ([]client.Wave, error)
	GetWorkflowStatus(ctx context.Context, waveID int64) (workflow.WorkflowStatus, error)
	GetShipmentStates(ctx context.Context, waveID int64) (client.ShipmentStatesResponse, error)
	GetFetchedRates(ctx context.Context, waveID, shipmentID int64) (client.FetchedRates, error)
}

// OrderReader is the read surface of the OMS client the console needs: the
// order list and per-order workflow status for the order screens, and order
// lines for wave releases.
type OrderReader interface {
	ListOrders(ctx context.Context) ([]client.Order, error)
	GetWorkflowStatus(ctx context.Context, orderID int64) (workflow.WorkflowStatus, error)
	GetOrderLines(ctx context.Context, orderID int64) ([]client.OrderLine, error)
}

// screen identifies which view is active.
type screen int

const (
	screenWaveList screen = iota
	screenWaveDetail
	screenOrderList
	screenOrderDetail
)

// Model holds the console state.
type Model struct {
	cfg        *config.Config
	logger     *logging.Logger
	backend    Backend
	orders     OrderReader
	dispatcher *signal.Dispatcher
	gate       *workflow.Gate
	clock      poller.Clock

	// updates carries poller and rate-shop messages onto the UI goroutine.
	updates chan tea.Msg
	// focused mirrors terminal focus; pollers read it as their
	// visibility capability.
	focused *atomic.Bool

	screen   screen
	width    int
	height   int
	quitting bool

	// Wave list state
	waves      []client.Wave
	wavesErr   error
	listPoller *poller.Poller[[]client.Wave]
	cursor     int

	// Order list state
	ordersList  []client.Order
	ordersErr   error
	orderPoller *poller.Poller[[]client.Order]
	orderCursor int

	// Order detail state
	openOrder     *client.Order
	orderStatus   workflow.WorkflowStatus
	orderSeq      uint64
	orderStatErr  error
	orderWfPoller *poller.Poller[workflow.WorkflowStatus]

	// Deep links: open this entity as soon as its list arrives.
	pendingWaveID  int64
	pendingOrderID int64

	// Wave detail state
	openWave   *client.Wave
	status     workflow.WorkflowStatus
	statusSeq  uint64
	statusErr  error
	wfPoller   *poller.Poller[workflow.WorkflowStatus]
	shipments  map[int64]client.ShipmentState
	shipCursor int
	shipPoller *poller.Poller[client.ShipmentStatesResponse]

	// Cancel dialog state. cancelOrderID set means the target is an order,
	// otherwise cancelTarget names a wave. cancelConfirmed tracks the typed
	// id confirmation when tui.confirm_cancellations is on.
	cancelling      bool
	cancelConfirmed bool
	cancelTarget    int64
	cancelOrderID   int64
	reasonInput     textinput.Model

	// Rate-shopping dialog state
	rateMachine  *rateshop.Machine
	rateView     *rateshop.View
	rateShipment int64
	rateCursor   int

	spinner    spinner.Model
	signalBusy bool
	statusLine string
	lastErr    error
}

// Options wires a Model.
type Options struct {
	Config  *config.Config
	Logger  *logging.Logger
	Backend Backend
	// Orders feeds the order screens and wave releases. Optional; without
	// it the order screens are hidden and releases carry no order detail.
	Orders     OrderReader
	Dispatcher *signal.Dispatcher
	Gate       *workflow.Gate
	// Clock is injected for tests; defaults to the system clock.
	Clock poller.Clock
	// InitialWaveID / InitialOrderID open that entity's detail screen once
	// its list poller delivers it.
	InitialWaveID  int64
	InitialOrderID int64
}

// NewModel creates the console model.
func NewModel(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Clock == nil {
		opts.Clock = poller.SystemClock{}
	}
	if opts.Gate == nil {
		opts.Gate = workflow.DefaultGate()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	reason := textinput.New()
	reason.Placeholder = "reason"
	reason.CharLimit = 120

	focused := &atomic.Bool{}
	focused.Store(true)

	return &Model{
		cfg:            opts.Config,
		logger:         opts.Logger,
		backend:        opts.Backend,
		orders:         opts.Orders,
		dispatcher:     opts.Dispatcher,
		gate:           opts.Gate,
		clock:          opts.Clock,
		updates:        make(chan tea.Msg, 64),
		focused:        focused,
		reasonInput:    reason,
		spinner:        sp,
		pendingWaveID:  opts.InitialWaveID,
		pendingOrderID: opts.InitialOrderID,
	}
}

// visible is the Visibility capability handed to every poller.
func (m *Model) visible() bool {
	if m.cfg != nil && !m.cfg.Polling.PauseWhenHidden {
		return true
	}
	return m.focused.Load()
}

// Init starts the list pollers and the update pump.
func (m *Model) Init() tea.Cmd {
	m.startListPoller()
	if m.pendingOrderID != 0 {
		m.screen = screenOrderList
		m.startOrderListPoller()
	}
	return tea.Batch(waitForUpdate(m.updates), m.spinner.Tick)
}

func (m *Model) startListPoller() {
	p, err := poller.New(poller.Options[[]client.Wave]{
		Fetch:    m.backend.ListWaves,
		Interval: m.cfg.Polling.WaveInterval(),
		OnUpdate: func(s poller.Snapshot[[]client.Wave]) { m.updates <- wavesMsg(s) },
		Clock:    m.clock,
		Visible:  m.visible,
	})
	if err != nil {
		m.lastErr = err
		return
	}
	m.listPoller = p
	p.Start(context.Background())
}

// startOrderListPoller lazily starts the order list poller the first time
// the order screen is shown.
func (m *Model) startOrderListPoller() {
	if m.orderPoller != nil || m.orders == nil {
		return
	}
	p, err := poller.New(poller.Options[[]client.Order]{
		Fetch:    m.orders.ListOrders,
		Interval: m.cfg.Polling.WaveInterval(),
		OnUpdate: func(s poller.Snapshot[[]client.Order]) { m.updates <- ordersMsg(s) },
		Clock:    m.clock,
		Visible:  m.visible,
	})
	if err != nil {
		m.lastErr = err
		return
	}
	m.orderPoller = p
	p.Start(context.Background())
}

// openOrderDetail mirrors openWaveDetail for the order vocabulary. Orders
// have no operator actions besides cancel; the card is the point.
func (m *Model) openOrderDetail(o client.Order) {
	m.screen = screenOrderDetail
	order := o
	m.openOrder = &order
	m.orderStatus = workflow.WorkflowStatus{Status: o.Status}
	m.orderSeq = 0
	m.orderStatErr = nil

	if o.WorkflowID == "" || workflow.OrderTerminal.Contains(o.Status) {
		return
	}

	wf, err := poller.NewWorkflow(poller.WorkflowOptions{
		WorkflowID: o.WorkflowID,
		Fetch: func(ctx context.Context, _ string) (workflow.WorkflowStatus, error) {
			return m.orders.GetWorkflowStatus(ctx, order.ID)
		},
		Terminal: workflow.OrderTerminal,
		Interval: m.cfg.Polling.WorkflowInterval(),
		OnUpdate: func(s poller.Snapshot[workflow.WorkflowStatus]) { m.updates <- orderStatusMsg(s) },
		Clock:    m.clock,
		Visible:  m.visible,
	})
	if err != nil {
		m.lastErr = err
		return
	}
	m.orderWfPoller = wf
	wf.Start(context.Background())
}

func (m *Model) closeOrderDetail() {
	if m.orderWfPoller != nil {
		m.orderWfPoller.Stop()
		m.orderWfPoller = nil
	}
	m.openOrder = nil
	m.cancelling = false
	m.cancelConfirmed = false
	m.cancelOrderID = 0
	m.screen = screenOrderList
}

// selectedOrder returns the order under the cursor on the order list.
func (m *Model) selectedOrder() *client.Order {
	if m.orderCursor < 0 || m.orderCursor >= len(m.ordersList) {
		return nil
	}
	return &m.ordersList[m.orderCursor]
}

// openWaveDetail switches to the detail screen and starts the workflow and
// shipment pollers for the wave. Waves that never entered a workflow get no
// status poller; their record state is all there is to show.
func (m *Model) openWaveDetail(w client.Wave) {
	m.screen = screenWaveDetail
	wave := w
	m.openWave = &wave
	m.status = workflow.WorkflowStatus{Status: w.Status}
	m.statusSeq = 0
	m.statusErr = nil
	m.shipments = nil
	m.shipCursor = 0

	if w.WorkflowID == "" || workflow.WaveTerminal.Contains(w.Status) {
		return
	}

	wf, err := poller.NewWorkflow(poller.WorkflowOptions{
		WorkflowID: w.WorkflowID,
		Fetch: func(ctx context.Context, _ string) (workflow.WorkflowStatus, error) {
			return m.backend.GetWorkflowStatus(ctx, wave.ID)
		},
		Terminal: workflow.WaveTerminal,
		Interval: m.cfg.Polling.WorkflowInterval(),
		OnUpdate: func(s poller.Snapshot[workflow.WorkflowStatus]) { m.updates <- workflowMsg(s) },
		Clock:    m.clock,
		Visible:  m.visible,
	})
	if err != nil {
		m.lastErr = err
		return
	}
	m.wfPoller = wf
	wf.Start(context.Background())

	ship, err := poller.New(poller.Options[client.ShipmentStatesResponse]{
		Fetch: func(ctx context.Context) (client.ShipmentStatesResponse, error) {
			return m.backend.GetShipmentStates(ctx, wave.ID)
		},
		Interval: m.cfg.Polling.WorkflowInterval(),
		OnUpdate: func(s poller.Snapshot[client.ShipmentStatesResponse]) { m.updates <- shipmentsMsg(s) },
		Clock:    m.clock,
		Visible:  m.visible,
	})
	if err != nil {
		m.lastErr = err
		return
	}
	m.shipPoller = ship
	ship.Start(context.Background())
}

// closeWaveDetail returns to the list, tearing down the detail pollers and
// any open rate dialog.
func (m *Model) closeWaveDetail() {
	if m.wfPoller != nil {
		m.wfPoller.Stop()
		m.wfPoller = nil
	}
	if m.shipPoller != nil {
		m.shipPoller.Stop()
		m.shipPoller = nil
	}
	m.closeRateDialog()
	m.openWave = nil
	m.cancelling = false
	m.cancelConfirmed = false
	m.screen = screenWaveList
}

// closeRateDialog discards the rate machine; nothing survives across opens.
func (m *Model) closeRateDialog() {
	if m.rateMachine != nil {
		m.rateMachine.Stop()
		m.rateMachine = nil
	}
	m.rateView = nil
	m.rateShipment = 0
	m.rateCursor = 0
}

// refreshAll nudges every running poller, used when focus returns or after
// a successful signal.
func (m *Model) refreshAll() {
	if m.listPoller != nil {
		m.listPoller.Refresh()
	}
	if m.wfPoller != nil {
		m.wfPoller.Refresh()
	}
	if m.shipPoller != nil {
		m.shipPoller.Refresh()
	}
	if m.orderPoller != nil {
		m.orderPoller.Refresh()
	}
	if m.orderWfPoller != nil {
		m.orderWfPoller.Refresh()
	}
}

// selectedWave returns the wave under the cursor on the list screen.
func (m *Model) selectedWave() *client.Wave {
	if m.cursor < 0 || m.cursor >= len(m.waves) {
		return nil
	}
	return &m.waves[m.cursor]
}

// selectedShipment returns the shipment under the cursor on the detail
// screen, in ascending shipment-id order.
func (m *Model) selectedShipment() *client.ShipmentState {
	ids := m.shipmentIDs()
	if m.shipCursor < 0 || m.shipCursor >= len(ids) {
		return nil
	}
	s := m.shipments[ids[m.shipCursor]]
	return &s
}

func (m *Model) shipmentIDs() []int64 {
	ids := make([]int64, 0, len(m.shipments))
	for id := range m.shipments {
		ids = append(ids, id)
	}
	// Small n; insertion sort keeps the render order stable.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

// actions returns the gated action set for the open wave.
func (m *Model) actions() workflow.WaveActions {
	return m.gate.WaveActions(m.status)
}

func contextForSignal() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
