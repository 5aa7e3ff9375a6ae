// Package util holds small string helpers shared by the render layer.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// TruncateString cuts a string down to maxLen runes, appending "..." when it
// had to cut. It ignores ANSI escapes and character width; use TruncateANSI
// for styled terminal output.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// TruncateANSI cuts a styled string down to maxWidth visual columns,
// appending "..." when it had to cut. Escape sequences survive intact and
// wide characters count by their display width.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail toward the final width.
	return ansi.Truncate(s, maxWidth, "...")
}
