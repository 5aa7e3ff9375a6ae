package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tempest-ops/opsdeck/internal/rateshop"
	"github.com/tempest-ops/opsdeck/internal/tui/styles"
	"github.com/tempest-ops/opsdeck/internal/util"
	"github.com/tempest-ops/opsdeck/internal/workflow"
)

// fit truncates a rendered line to the terminal width.
func (m *Model) fit(s string) string {
	if m.width > 0 {
		return util.TruncateANSI(s, m.width)
	}
	return s
}

// View renders the active screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch {
	case m.rateMachine != nil:
		body = m.viewRateDialog()
	case m.cancelling:
		body = m.viewCancelDialog()
	case m.screen == screenWaveDetail:
		body = m.viewWaveDetail()
	case m.screen == screenOrderList:
		body = m.viewOrderList()
	case m.screen == screenOrderDetail:
		body = m.viewOrderDetail()
	default:
		body = m.viewWaveList()
	}

	var b strings.Builder
	b.WriteString(body)
	if bar := m.viewStatusBar(); bar != "" {
		b.WriteString("\n")
		b.WriteString(bar)
	}
	return b.String()
}

func (m *Model) viewStatusBar() string {
	switch {
	case m.lastErr != nil:
		return m.fit(styles.ErrorBar.Render("✗ " + m.lastErr.Error()))
	case m.signalBusy:
		return m.spinner.View() + " sending..."
	case m.statusLine != "":
		return styles.Secondary.Render("✓ " + m.statusLine)
	case !m.visible():
		return styles.PausedBadge.Render("polling paused (unfocused)")
	}
	return ""
}

func (m *Model) viewWaveList() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Waves"))
	b.WriteString("\n")

	if m.wavesErr != nil {
		b.WriteString(styles.Warning.Render("⚠ showing stale data: " + m.wavesErr.Error()))
		b.WriteString("\n")
	}

	if len(m.waves) == 0 {
		b.WriteString(styles.Muted.Render("no waves yet"))
		b.WriteString("\n")
	}

	maxRows := len(m.waves)
	if m.cfg != nil && m.cfg.TUI.MaxTableRows < maxRows {
		maxRows = m.cfg.TUI.MaxTableRows
	}
	for i := 0; i < maxRows; i++ {
		w := m.waves[i]
		badge := statusBadge(string(w.Status))
		line := fmt.Sprintf("wave %-6d %s  %d orders", w.ID, badge, len(w.OrderIDs))
		if i == m.cursor {
			b.WriteString(m.fit(styles.RowSelected.Render("> " + line)))
		} else {
			b.WriteString(m.fit(styles.Row.Render("  " + line)))
		}
		b.WriteString("\n")
	}

	b.WriteString(help("↑/↓", "move", "enter", "open", "tab", "orders", "R", "refresh", "q", "quit"))
	return b.String()
}

func (m *Model) viewOrderList() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Orders"))
	b.WriteString("\n")

	if m.ordersErr != nil {
		b.WriteString(styles.Warning.Render("⚠ showing stale data: " + m.ordersErr.Error()))
		b.WriteString("\n")
	}
	if len(m.ordersList) == 0 {
		b.WriteString(styles.Muted.Render("no orders yet"))
		b.WriteString("\n")
	}

	maxRows := len(m.ordersList)
	if m.cfg != nil && m.cfg.TUI.MaxTableRows < maxRows {
		maxRows = m.cfg.TUI.MaxTableRows
	}
	for i := 0; i < maxRows; i++ {
		o := m.ordersList[i]
		line := fmt.Sprintf("%-10s %s", o.OrderNumber, statusBadge(string(o.Status)))
		if i == m.orderCursor {
			b.WriteString(m.fit(styles.RowSelected.Render("> " + line)))
		} else {
			b.WriteString(m.fit(styles.Row.Render("  " + line)))
		}
		b.WriteString("\n")
	}

	b.WriteString(help("↑/↓", "move", "enter", "open", "tab", "waves", "q", "quit"))
	return b.String()
}

func (m *Model) viewOrderDetail() string {
	if m.openOrder == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Order %s", m.openOrder.OrderNumber)))
	b.WriteString("\n")

	var lines []string
	lines = append(lines, styles.CardLabel.Render("status  ")+statusBadge(string(m.orderStatus.Status)))
	if m.orderStatus.CurrentStep != "" {
		lines = append(lines, styles.CardLabel.Render("step    ")+m.orderStatus.CurrentStep)
	}
	if m.orderStatus.BlockingReason != "" && (m.cfg == nil || m.cfg.TUI.ShowBlockingReasons) {
		reason := util.TruncateString(m.orderStatus.BlockingReason, 80)
		lines = append(lines, styles.CardLabel.Render("blocked ")+styles.Warning.Render(reason))
	}
	switch {
	case workflow.OrderTerminal.Contains(m.orderStatus.Status):
		lines = append(lines, styles.Muted.Render("workflow finished, polling stopped"))
	case m.orderStatErr != nil:
		lines = append(lines, styles.Warning.Render("⚠ showing stale data: "+m.orderStatErr.Error()))
	case m.orderWfPoller != nil:
		lines = append(lines, styles.Muted.Render(m.spinner.View()+" live"))
	}
	b.WriteString(styles.Card.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	if m.gate.CanCancelOrder(m.orderStatus.Status) && !m.signalBusy {
		b.WriteString(styles.ActionEnabled.Render("[c] cancel order"))
	} else {
		b.WriteString(styles.ActionDisabled.Render("[c] cancel order"))
	}
	b.WriteString("\n")
	b.WriteString(help("esc", "back", "R", "refresh", "q", "quit"))
	return b.String()
}

func (m *Model) viewWaveDetail() string {
	if m.openWave == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Wave %d", m.openWave.ID)))
	b.WriteString("\n")
	b.WriteString(m.viewStatusCard())
	b.WriteString("\n")
	b.WriteString(m.viewActions())

	if m.actions().ShipmentsPanel {
		b.WriteString("\n")
		b.WriteString(m.viewShipments())
	}

	b.WriteString("\n")
	b.WriteString(help("esc", "back", "R", "refresh", "q", "quit"))
	return b.String()
}

func (m *Model) viewStatusCard() string {
	var lines []string
	lines = append(lines, styles.CardLabel.Render("status  ")+statusBadge(string(m.status.Status)))

	if m.status.CurrentStep != "" {
		lines = append(lines, styles.CardLabel.Render("step    ")+m.status.CurrentStep)
	}
	if m.status.BlockingReason != "" && (m.cfg == nil || m.cfg.TUI.ShowBlockingReasons) {
		reason := util.TruncateString(m.status.BlockingReason, 80)
		lines = append(lines, styles.CardLabel.Render("blocked ")+styles.Warning.Render(reason))
	}

	switch {
	case workflow.WaveTerminal.Contains(m.status.Status):
		lines = append(lines, styles.Muted.Render("workflow finished, polling stopped"))
	case m.statusErr != nil:
		lines = append(lines, styles.Warning.Render("⚠ showing stale data: "+m.statusErr.Error()))
	case m.wfPoller != nil:
		lines = append(lines, styles.Muted.Render(m.spinner.View()+" live"))
	}

	return styles.Card.Render(strings.Join(lines, "\n"))
}

func (m *Model) viewActions() string {
	actions := m.actions()
	if workflow.WaveTerminal.Contains(m.status.Status) {
		return ""
	}
	entries := []struct {
		key     string
		label   string
		enabled bool
	}{
		{"r", "release wave", actions.Release},
		{"p", "picks complete", actions.SignalPicks},
		{"P", "packs complete", actions.SignalPacks},
		{"c", "cancel wave", actions.Cancel},
	}

	var b strings.Builder
	for _, e := range entries {
		line := fmt.Sprintf("[%s] %s", e.key, e.label)
		if e.enabled && !m.signalBusy {
			b.WriteString(styles.ActionEnabled.Render(line))
		} else {
			b.WriteString(styles.ActionDisabled.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) viewShipments() string {
	var b strings.Builder
	b.WriteString(styles.Subtitle.Render("Shipments"))
	b.WriteString("\n")

	ids := m.shipmentIDs()
	if len(ids) == 0 {
		b.WriteString(styles.Muted.Render("no shipments yet"))
		b.WriteString("\n")
		return b.String()
	}

	for i, id := range ids {
		s := m.shipments[id]
		line := fmt.Sprintf("shipment %-6d order %-6d %s", s.ShipmentID, s.OrderID, statusBadge(s.Status))
		if s.Carrier != "" {
			line += "  " + s.Carrier + " " + s.ServiceLevel
		}
		if s.TrackingNumber != "" {
			line += "  " + styles.Muted.Render(s.TrackingNumber)
		}
		if i == m.shipCursor {
			b.WriteString(styles.RowSelected.Render("> " + line))
		} else {
			b.WriteString(styles.Row.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString(help("s", "shop rates", "l", "print label", "x", "confirm shipped"))
	return b.String()
}

func (m *Model) viewCancelDialog() string {
	noun := "wave"
	if m.cancelOrderID > 0 {
		noun = "order"
	}
	id := m.cancelID()

	var b strings.Builder
	b.WriteString(styles.Warning.Render(fmt.Sprintf("Cancel %s %d?", noun, id)))
	b.WriteString("\n\n")
	if !m.cancelConfirmed {
		b.WriteString(fmt.Sprintf("type %d to confirm: ", id))
		b.WriteString(m.reasonInput.View())
		b.WriteString("\n\n")
		b.WriteString(help("enter", "confirm", "esc", "keep "+noun))
		return styles.Dialog.Render(b.String())
	}
	b.WriteString("reason: ")
	b.WriteString(m.reasonInput.View())
	b.WriteString("\n\n")
	b.WriteString(help("enter", "send", "esc", "keep "+noun))
	return styles.Dialog.Render(b.String())
}

func (m *Model) viewRateDialog() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(fmt.Sprintf("Rates for shipment %d", m.rateShipment)))
	b.WriteString("\n")

	v := m.rateView
	if v == nil {
		fresh := m.rateMachine.View()
		v = &fresh
	}

	for _, c := range v.Carriers {
		line := fmt.Sprintf("%-6s %s", c.Carrier, carrierGlyph(c.Status))
		if c.Retrying {
			line += "  " + styles.PausedBadge.Render("still trying...")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch v.State {
	case rateshop.StateFetching:
		b.WriteString(m.spinner.View() + " fetching rates...")
		b.WriteString("\n")
	case rateshop.StateFailed:
		msg := v.ErrorMessage
		if msg == "" {
			msg = "rate fetch failed"
		}
		b.WriteString(styles.ErrorBar.Render("✗ " + msg))
		b.WriteString("\n")
		b.WriteString(help("r", "retry", "esc", "close"))
		return styles.Dialog.Render(b.String())
	case rateshop.StateCompleted:
		for i, r := range v.Rates {
			line := fmt.Sprintf("%-6s %-12s $%.2f", r.Carrier, r.ServiceLevel, r.Price)
			if r.EstimatedDelivery != "" {
				line += "  " + styles.Muted.Render(r.EstimatedDelivery)
			}
			if i == m.rateCursor {
				b.WriteString(styles.RowSelected.Render("> " + line))
			} else {
				b.WriteString(styles.Row.Render("  " + line))
			}
			b.WriteString("\n")
		}
		b.WriteString(help("↑/↓", "move", "enter", "select", "esc", "close"))
		return styles.Dialog.Render(b.String())
	}

	if v.PollErr != nil {
		b.WriteString(styles.Warning.Render("⚠ " + v.PollErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(help("esc", "close"))
	return styles.Dialog.Render(b.String())
}

func statusBadge(status string) string {
	return styles.StatusBadge.Foreground(styles.StatusColor(status)).Render(status)
}

func carrierGlyph(status string) string {
	switch status {
	case rateshop.CarrierCompleted:
		return styles.Secondary.Render("done")
	case rateshop.CarrierFailed:
		return styles.Error.Render("failed")
	case rateshop.CarrierFetching:
		return styles.Warning.Render("fetching")
	default:
		return styles.Muted.Render("pending")
	}
}

// help renders a key/description pair list for the bottom bar.
func help(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, styles.HelpKey.Render(pairs[i])+" "+pairs[i+1])
	}
	return styles.HelpBar.Render(strings.Join(parts, lipgloss.NewStyle().Render("  ")))
}
