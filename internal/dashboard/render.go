package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// cell truncates s to w columns and pads it to exactly w.
func cell(s string, w int) string {
	if w <= 0 {
		return ""
	}
	s = ansi.Truncate(s, w, "…")
	if pad := w - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// listRow renders one selectable row with a cursor gutter.
func listRow(content string, selected bool, width int) string {
	inner := width - 6
	if selected {
		return SelectedRowStyle.Render(GlyphCursor + " " + cell(content, inner))
	}
	return "  " + cell(content, inner)
}

// listSection wraps rows in a titled section, windowed around sel.
func listSection(title, value string, rows []string, sel, maxRows, width int, empty string) string {
	if len(rows) == 0 {
		return Section(title, value, []string{Placeholder(empty)}, width)
	}
	start := windowStart(sel, len(rows), maxRows)
	end := len(rows)
	if maxRows > 0 && start+maxRows < end {
		end = start + maxRows
	}
	return Section(title, value, rows[start:end], width)
}

// busyMarker is shown on rows with an action in flight.
func busyMarker(busy bool) string {
	if busy {
		return " " + lipgloss.NewStyle().Foreground(ColorWarning).Render(GlyphPending+" working")
	}
	return ""
}

// orDash renders empty values as a muted dash.
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return MutedStyle.Render("-")
	}
	return s
}
