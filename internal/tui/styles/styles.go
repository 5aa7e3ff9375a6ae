// Package styles holds the lipgloss styles shared by the console views.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all meet WCAG AA contrast (4.5:1) on dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)

	// Workflow status colors
	StatusActive   = lipgloss.Color("#10B981") // Green - wave is moving
	StatusWaiting  = lipgloss.Color("#F59E0B") // Amber - waiting on the floor
	StatusTerminal = lipgloss.Color("#A78BFA") // Purple - done
	StatusFailed   = lipgloss.Color("#F87171") // Red
	StatusIdle     = lipgloss.Color("#9CA3AF") // Gray - not released yet

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Status card
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)

	CardLabel = lipgloss.NewStyle().
			Foreground(MutedColor)

	StatusBadge = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	// Table rows
	RowSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(lipgloss.Color("#1F2937"))

	Row = lipgloss.NewStyle().
		Foreground(TextColor)

	// Action list
	ActionEnabled = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	ActionDisabled = lipgloss.NewStyle().
			Foreground(MutedColor).
			Faint(true)

	// Help bar
	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	// Dialogs
	Dialog = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Padding(1, 2)

	ErrorBar = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	PausedBadge = lipgloss.NewStyle().
			Foreground(WarningColor).
			Italic(true)
)

// StatusColor maps a workflow status string to its display color.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "CREATED":
		return StatusIdle
	case "RELEASED", "IN_PROGRESS", "PICKING", "PACKING", "SHIPPING":
		return StatusActive
	case "COMPLETED", "SHIPPED", "DELIVERED":
		return StatusTerminal
	case "CANCELLED", "FAILED":
		return StatusFailed
	default:
		return StatusWaiting
	}
}
