package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tempest-ops/opsdeck/internal/client"
	"github.com/tempest-ops/opsdeck/internal/poller"
	"github.com/tempest-ops/opsdeck/internal/rateshop"
	"github.com/tempest-ops/opsdeck/internal/signal"
	"github.com/tempest-ops/opsdeck/internal/workflow"
)

// Update routes messages to the active screen.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.FocusMsg:
		m.focused.Store(true)
		// Catch up immediately instead of waiting out the interval.
		m.refreshAll()
		if m.rateMachine != nil {
			m.rateMachine.Refresh()
		}
		return m, nil

	case tea.BlurMsg:
		m.focused.Store(false)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case wavesMsg:
		return m.onWaves(msg)

	case workflowMsg:
		return m.onWorkflow(msg)

	case shipmentsMsg:
		return m.onShipments(msg)

	case ordersMsg:
		return m.onOrders(msg)

	case orderStatusMsg:
		return m.onOrderStatus(msg)

	case ratesMsg:
		v := rateshop.View(msg)
		m.rateView = &v
		return m, waitForUpdate(m.updates)

	case signalSentMsg:
		return m.onSignalSent(msg)

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	return m, nil
}

func (m *Model) onWaves(msg wavesMsg) (tea.Model, tea.Cmd) {
	snap := poller.Snapshot[[]client.Wave](msg)
	if snap.Err != nil {
		m.wavesErr = snap.Err
	} else {
		m.wavesErr = nil
		m.waves = snap.Data
		if m.cursor >= len(m.waves) {
			m.cursor = len(m.waves) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		if m.pendingWaveID != 0 {
			for _, w := range m.waves {
				if w.ID == m.pendingWaveID {
					m.openWaveDetail(w)
					break
				}
			}
			m.pendingWaveID = 0
		}
	}
	return m, waitForUpdate(m.updates)
}

func (m *Model) onOrders(msg ordersMsg) (tea.Model, tea.Cmd) {
	snap := poller.Snapshot[[]client.Order](msg)
	if snap.Err != nil {
		m.ordersErr = snap.Err
	} else {
		m.ordersErr = nil
		m.ordersList = snap.Data
		if m.orderCursor >= len(m.ordersList) {
			m.orderCursor = len(m.ordersList) - 1
		}
		if m.orderCursor < 0 {
			m.orderCursor = 0
		}
		if m.pendingOrderID != 0 {
			for _, o := range m.ordersList {
				if o.ID == m.pendingOrderID {
					m.openOrderDetail(o)
					break
				}
			}
			m.pendingOrderID = 0
		}
	}
	return m, waitForUpdate(m.updates)
}

func (m *Model) onOrderStatus(msg orderStatusMsg) (tea.Model, tea.Cmd) {
	snap := poller.Snapshot[workflow.WorkflowStatus](msg)
	if snap.Seq <= m.orderSeq {
		return m, waitForUpdate(m.updates)
	}
	m.orderSeq = snap.Seq
	m.orderStatErr = snap.Err
	if snap.Err == nil {
		m.orderStatus = snap.Data
	}
	return m, waitForUpdate(m.updates)
}

func (m *Model) onWorkflow(msg workflowMsg) (tea.Model, tea.Cmd) {
	snap := poller.Snapshot[workflow.WorkflowStatus](msg)
	// Stale snapshots can arrive when a refresh races a tick; drop them.
	if snap.Seq <= m.statusSeq {
		return m, waitForUpdate(m.updates)
	}
	m.statusSeq = snap.Seq
	m.statusErr = snap.Err
	if snap.Err == nil {
		m.status = snap.Data
	}
	return m, waitForUpdate(m.updates)
}

func (m *Model) onShipments(msg shipmentsMsg) (tea.Model, tea.Cmd) {
	snap := poller.Snapshot[client.ShipmentStatesResponse](msg)
	if snap.Err == nil {
		m.shipments = snap.Data.Shipments
		if n := len(m.shipments); m.shipCursor >= n && n > 0 {
			m.shipCursor = n - 1
		}
	}
	return m, waitForUpdate(m.updates)
}

func (m *Model) onSignalSent(msg signalSentMsg) (tea.Model, tea.Cmd) {
	m.signalBusy = false
	if msg.err != nil {
		m.lastErr = msg.err
		if msg.sig.Name == signal.FetchRates {
			// Without a backend fetch under way the dialog has nothing
			// to poll for.
			m.closeRateDialog()
		}
		return m, nil
	}
	m.lastErr = nil
	m.statusLine = fmt.Sprintf("%s sent", msg.sig.Name)
	m.refreshAll()
	return m, nil
}

func (m *Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal dialogs capture all keys.
	if m.cancelling {
		return m.onCancelKey(msg)
	}
	if m.rateMachine != nil {
		return m.onRateKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.shutdown()
		return m, tea.Quit
	}

	switch m.screen {
	case screenWaveList:
		return m.onListKey(msg)
	case screenWaveDetail:
		return m.onDetailKey(msg)
	case screenOrderList:
		return m.onOrderListKey(msg)
	case screenOrderDetail:
		return m.onOrderDetailKey(msg)
	}
	return m, nil
}

func (m *Model) onListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.waves)-1 {
			m.cursor++
		}
	case "enter":
		if w := m.selectedWave(); w != nil {
			m.openWaveDetail(*w)
		}
	case "tab":
		if m.orders != nil {
			m.screen = screenOrderList
			m.startOrderListPoller()
		}
	case "R":
		m.refreshAll()
	}
	return m, nil
}

func (m *Model) onOrderListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.orderCursor > 0 {
			m.orderCursor--
		}
	case "down", "j":
		if m.orderCursor < len(m.ordersList)-1 {
			m.orderCursor++
		}
	case "enter":
		if o := m.selectedOrder(); o != nil {
			m.openOrderDetail(*o)
		}
	case "tab", "esc":
		m.screen = screenWaveList
	case "R":
		m.refreshAll()
	}
	return m, nil
}

func (m *Model) onOrderDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.openOrder == nil {
		m.closeOrderDetail()
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.closeOrderDetail()
	case "R":
		m.refreshAll()
	case "c":
		if m.gate.CanCancelOrder(m.orderStatus.Status) {
			m.cancelling = true
			m.cancelConfirmed = !m.confirmCancellations()
			m.cancelOrderID = m.openOrder.ID
			m.reasonInput.SetValue("")
			m.reasonInput.Focus()
			return m, textinput.Blink
		}
	}
	return m, nil
}

// confirmCancellations reports whether cancels need the typed-id step.
func (m *Model) confirmCancellations() bool {
	return m.cfg != nil && m.cfg.TUI.ConfirmCancellations
}

func (m *Model) onDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.openWave == nil {
		m.closeWaveDetail()
		return m, nil
	}
	actions := m.actions()

	switch msg.String() {
	case "esc":
		m.closeWaveDetail()

	case "up", "k":
		if m.shipCursor > 0 {
			m.shipCursor--
		}
	case "down", "j":
		if m.shipCursor < len(m.shipments)-1 {
			m.shipCursor++
		}

	case "R":
		m.refreshAll()

	case "r":
		if actions.Release {
			return m, m.releaseWave()
		}
	case "p":
		if actions.SignalPicks {
			return m, m.dispatch(signal.Signal{Name: signal.PicksComplete, WaveID: m.openWave.ID})
		}
	case "P":
		if actions.SignalPacks {
			return m, m.dispatch(signal.Signal{Name: signal.PacksComplete, WaveID: m.openWave.ID})
		}
	case "c":
		if actions.Cancel {
			m.openCancelDialog()
			return m, textinput.Blink
		}

	case "s":
		if actions.ShipmentsPanel {
			if ship := m.selectedShipment(); ship != nil && ship.Status == "CREATED" {
				return m, m.openRateDialog(ship.ShipmentID)
			}
		}
	case "l":
		if actions.ShipmentsPanel {
			if ship := m.selectedShipment(); ship != nil && ship.Status == "RATE_SELECTED" {
				return m, m.dispatch(signal.Signal{
					Name: signal.PrintLabel, WaveID: m.openWave.ID, ShipmentID: ship.ShipmentID,
				})
			}
		}
	case "x":
		if actions.ShipmentsPanel {
			if ship := m.selectedShipment(); ship != nil && ship.Status == "LABEL_GENERATED" {
				return m, m.dispatch(signal.Signal{
					Name: signal.ConfirmShipped, WaveID: m.openWave.ID, ShipmentID: ship.ShipmentID,
				})
			}
		}
	}
	return m, nil
}

func (m *Model) openCancelDialog() {
	m.cancelling = true
	m.cancelConfirmed = !m.confirmCancellations()
	m.cancelTarget = m.openWave.ID
	m.reasonInput.SetValue("")
	m.reasonInput.Focus()
}

// cancelID is the id of whichever entity the open cancel dialog targets.
func (m *Model) cancelID() int64 {
	if m.cancelOrderID > 0 {
		return m.cancelOrderID
	}
	return m.cancelTarget
}

func (m *Model) onCancelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.cancelling = false
		m.cancelConfirmed = false
		m.cancelOrderID = 0
		m.reasonInput.Blur()
		return m, nil
	case "enter":
		if !m.cancelConfirmed {
			// The operator has to type the id back before the reason prompt.
			if m.reasonInput.Value() != strconv.FormatInt(m.cancelID(), 10) {
				return m, nil
			}
			m.cancelConfirmed = true
			m.reasonInput.SetValue("")
			return m, nil
		}
		sig := signal.Signal{
			Name:   signal.CancelWave,
			WaveID: m.cancelTarget,
			Reason: m.reasonInput.Value(),
		}
		if m.cancelOrderID > 0 {
			sig = signal.Signal{
				Name:    signal.CancelOrder,
				OrderID: m.cancelOrderID,
				Reason:  m.reasonInput.Value(),
			}
		}
		m.cancelling = false
		m.cancelConfirmed = false
		m.cancelOrderID = 0
		m.reasonInput.Blur()
		return m, m.dispatch(sig)
	}

	var cmd tea.Cmd
	m.reasonInput, cmd = m.reasonInput.Update(msg)
	return m, cmd
}

// openRateDialog starts a rate-shopping round for the shipment: one
// fetch-rates signal to kick the backend off, and a machine polling the
// fetched rates until the round resolves.
func (m *Model) openRateDialog(shipmentID int64) tea.Cmd {
	// The fetch-rates signal must go out with the dialog; without it the
	// machine would poll a stale or absent round.
	if m.dispatcher.Busy() {
		m.statusLine = "a signal is already in flight"
		return nil
	}
	waveID := m.openWave.ID
	machine, err := rateshop.New(rateshop.Options{
		WaveID:             waveID,
		ShipmentID:         shipmentID,
		Fetch:              m.backend.GetFetchedRates,
		RequireAllCarriers: m.cfg.RateShopping.RequireAllCarriers,
		Interval:           m.cfg.Polling.RateShoppingInterval(),
		Timeout:            m.cfg.RateShopping.Timeout(),
		OnUpdate:           func(v rateshop.View) { m.updates <- ratesMsg(v) },
		Clock:              m.clock,
		Visible:            m.visible,
	})
	if err != nil {
		m.lastErr = err
		return nil
	}
	m.rateMachine = machine
	m.rateShipment = shipmentID
	m.rateCursor = 0

	if err := machine.Start(context.Background()); err != nil {
		m.lastErr = err
		m.closeRateDialog()
		return nil
	}
	return m.dispatch(signal.Signal{
		Name: signal.FetchRates, WaveID: waveID, ShipmentID: shipmentID,
	})
}

func (m *Model) onRateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeRateDialog()
		return m, nil

	case "up", "k":
		if m.rateCursor > 0 {
			m.rateCursor--
		}
	case "down", "j":
		if m.rateView != nil && m.rateCursor < len(m.rateView.Rates)-1 {
			m.rateCursor++
		}

	case "r":
		if m.rateView != nil && m.rateView.State == rateshop.StateFailed {
			if err := m.rateMachine.Retry(); err != nil {
				m.lastErr = err
				return m, nil
			}
			if err := m.rateMachine.Start(context.Background()); err != nil {
				m.lastErr = err
				return m, nil
			}
			return m, m.dispatch(signal.Signal{
				Name: signal.FetchRates, WaveID: m.openWave.ID, ShipmentID: m.rateShipment,
			})
		}

	case "enter":
		if m.rateView == nil || m.rateView.State != rateshop.StateCompleted {
			return m, nil
		}
		if m.rateCursor < 0 || m.rateCursor >= len(m.rateView.Rates) {
			return m, nil
		}
		rate := m.rateView.Rates[m.rateCursor]
		if err := m.rateMachine.Select(rate); err != nil {
			m.lastErr = err
			return m, nil
		}
		sig := signal.Signal{
			Name:         signal.SelectRate,
			WaveID:       m.openWave.ID,
			ShipmentID:   m.rateShipment,
			Carrier:      rate.Carrier,
			ServiceLevel: rate.ServiceLevel,
		}
		m.closeRateDialog()
		return m, m.dispatch(sig)
	}
	return m, nil
}

// releaseWave gathers each order's lines and sends the release signal. The
// workflow needs the lines up front to build pick tasks.
func (m *Model) releaseWave() tea.Cmd {
	if m.dispatcher.Busy() {
		m.statusLine = "a signal is already in flight"
		return nil
	}
	m.signalBusy = true
	m.statusLine = ""

	wave := *m.openWave
	orders := m.orders
	d := m.dispatcher
	return func() tea.Msg {
		ctx, cancel := contextForSignal()
		defer cancel()
		sig := signal.Signal{Name: signal.ReleaseWave, WaveID: wave.ID}
		if orders != nil {
			for _, orderID := range wave.OrderIDs {
				lines, err := orders.GetOrderLines(ctx, orderID)
				if err != nil {
					return signalSentMsg{sig: sig, err: err}
				}
				sig.Orders = append(sig.Orders, client.WaveOrderDetail{OrderID: orderID, Lines: lines})
			}
		}
		return signalSentMsg{sig: sig, err: d.Send(ctx, sig)}
	}
}

// dispatch sends one signal unless another is in flight.
func (m *Model) dispatch(sig signal.Signal) tea.Cmd {
	if m.dispatcher.Busy() {
		m.statusLine = "a signal is already in flight"
		return nil
	}
	m.signalBusy = true
	m.statusLine = ""
	return sendSignal(m.dispatcher, sig)
}

// shutdown stops every poller before the program exits.
func (m *Model) shutdown() {
	if m.listPoller != nil {
		m.listPoller.Stop()
	}
	if m.wfPoller != nil {
		m.wfPoller.Stop()
	}
	if m.shipPoller != nil {
		m.shipPoller.Stop()
	}
	if m.orderPoller != nil {
		m.orderPoller.Stop()
	}
	if m.orderWfPoller != nil {
		m.orderWfPoller.Stop()
	}
	if m.rateMachine != nil {
		m.rateMachine.Stop()
	}
}
