package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// maxColumnWidth caps auto-sized columns so long descriptions don't wrap
// the table.
const maxColumnWidth = 48

// RenderTable renders a static table for CLI listings. Column widths fit
// the widest cell, capped at maxColumnWidth.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		w := lipgloss.Width(h)
		for _, r := range rows {
			if i < len(r) && lipgloss.Width(r[i]) > w {
				w = lipgloss.Width(r[i])
			}
		}
		if w > maxColumnWidth {
			w = maxColumnWidth
		}
		cols[i] = table.Column{Title: h, Width: w}
	}

	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row(r)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(tableRows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true)
	// Static output has no cursor.
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	return t.View()
}
