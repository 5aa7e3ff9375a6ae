package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tempest-ops/opsdeck/internal/client"
	"github.com/tempest-ops/opsdeck/internal/poller"
	"github.com/tempest-ops/opsdeck/internal/rateshop"
	"github.com/tempest-ops/opsdeck/internal/signal"
	"github.com/tempest-ops/opsdeck/internal/workflow"
)

// wavesMsg carries a refreshed wave list from the list poller.
type wavesMsg poller.Snapshot[[]client.Wave]

// workflowMsg carries a refreshed workflow status for the open wave.
type workflowMsg poller.Snapshot[workflow.WorkflowStatus]

// shipmentsMsg carries refreshed shipment states for the open wave.
type shipmentsMsg poller.Snapshot[client.ShipmentStatesResponse]

// ordersMsg carries a refreshed order list from the order list poller.
type ordersMsg poller.Snapshot[[]client.Order]

// orderStatusMsg carries a refreshed workflow status for the open order.
type orderStatusMsg poller.Snapshot[workflow.WorkflowStatus]

// ratesMsg carries a rate-shopping view update.
type ratesMsg rateshop.View

// signalSentMsg reports the outcome of a dispatched signal.
type signalSentMsg struct {
	sig signal.Signal
	err error
}

// waitForUpdate blocks on the model's update channel and surfaces the next
// poller or rate-shop message. Update re-issues it after every receive so
// the channel is always being drained.
func waitForUpdate(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// sendSignal dispatches one operator signal off the UI goroutine.
func sendSignal(d *signal.Dispatcher, sig signal.Signal) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := contextForSignal()
		defer cancel()
		return signalSentMsg{sig: sig, err: d.Send(ctx, sig)}
	}
}
