package cmd

import (
	"testing"
)

func hasSubcommand(t *testing.T, name string) bool {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"console", "waves", "orders", "items", "shipments", "status"} {
		if !hasSubcommand(t, name) {
			t.Errorf("root command is missing %q", name)
		}
	}
}

func TestWavesStatusRejectsBadID(t *testing.T) {
	if err := runWavesStatus(wavesStatusCmd, []string{"not-a-number"}); err == nil {
		t.Error("a non-numeric wave id should be rejected")
	}
}

func TestOrdersShowRejectsBadID(t *testing.T) {
	if err := runOrdersShow(ordersShowCmd, []string{"seven"}); err == nil {
		t.Error("a non-numeric order id should be rejected")
	}
}

func TestShipmentsShowRejectsBadID(t *testing.T) {
	if err := runShipmentsShow(shipmentsShowCmd, []string{"x"}); err == nil {
		t.Error("a non-numeric shipment id should be rejected")
	}
}
