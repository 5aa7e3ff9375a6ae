package util

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "wave 7", 20, "wave 7"},
		{"exact length unchanged", "PICKING", 7, "PICKING"},
		{"long string truncated", "inventory shortage on line 3", 15, "inventory sh..."},
		{"tiny budget is all ellipsis", "PICKING", 3, "..."},
		{"zero budget is all ellipsis", "PICKING", 0, "..."},
		{"empty string unchanged", "", 10, ""},
		{"wide runes counted as runes", "日本語テスト", 5, "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateANSI(t *testing.T) {
	styled := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	tests := []struct {
		name     string
		input    string
		maxWidth int
	}{
		{"plain string truncated", "waiting on the pick floor", 10},
		{"styled string truncated", styled.Render("waiting on the pick floor"), 10},
		{"bold string truncated", lipgloss.NewStyle().Bold(true).Render("RATE_SELECTED"), 8},
		{"wide characters by display width", "日本語テスト", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateANSI(tt.input, tt.maxWidth)
			if w := lipgloss.Width(got); w > tt.maxWidth {
				t.Errorf("width = %d, exceeds %d: %q", w, tt.maxWidth, got)
			}
		})
	}
}

func TestTruncateANSIPreservesShortStyled(t *testing.T) {
	in := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("ok")
	if got := TruncateANSI(in, 10); got != in {
		t.Errorf("short styled string was modified: %q", got)
	}
}

func TestTruncateANSITinyBudget(t *testing.T) {
	if got := TruncateANSI("PICKING", 3); got != "..." {
		t.Errorf("TruncateANSI with a tiny budget = %q, want ellipsis only", got)
	}
}
