package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pidash/internal/api"
)

// RenderGPIO renders the exported pins in BCM order.
func RenderGPIO(pins map[int]api.GPIOPin, sel int, busy map[string]bool, maxRows, width int) string {
	order := api.SortedPins(pins)
	rows := make([]string, 0, len(order))
	for i, n := range order {
		p := pins[n]
		level := lipgloss.NewStyle().Foreground(ColorTextMuted).Render(GlyphLow + " LOW ")
		if p.IsHigh() {
			level = lipgloss.NewStyle().Foreground(ColorHealthy).Bold(true).Render(GlyphHigh + " HIGH")
		}
		content := cell(fmt.Sprintf("GPIO %d", n), 10) + " " + cell(strings.ToLower(orDash(p.Mode)), 8) + " " + level
		content += busyMarker(busy[fmt.Sprint(n)])
		rows = append(rows, listRow(content, i == sel, width))
	}
	return listSection("GPIO", fmt.Sprintf("%d pins", len(order)), rows, sel, maxRows, width, "GPIO not available on this system")
}
