package dashboard

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/format"
)

// RenderSummary renders the container counters and host usage shown above
// the container list.
func RenderSummary(g *api.GlobalStats, width int) string {
	if g == nil {
		return Section("Overview", "", []string{Placeholder("Waiting for stats…")}, width)
	}
	c := g.Containers
	counts := fmt.Sprintf("%s running   %s stopped   %s total",
		lipgloss.NewStyle().Foreground(ColorHealthy).Bold(true).Render(strconv.Itoa(c.Running)),
		lipgloss.NewStyle().Foreground(ColorCritical).Bold(true).Render(strconv.Itoa(c.Stopped)),
		ValueStyle.Bold(true).Render(strconv.Itoa(c.Total)))

	s := g.System
	mem := format.Ratio(s.MemoryUsed, s.MemoryTotal)
	usage := fmt.Sprintf("CPU %s   Memory %s (%s / %s)",
		MetricStyle(s.CPUPercent).Render(format.Percent(s.CPUPercent)),
		MetricStyle(mem).Render(format.Percent(mem)),
		format.BytesDefault(s.MemoryUsed), format.BytesDefault(s.MemoryTotal))

	return Section("Overview", "", []string{counts, usage}, width)
}

// RenderContainers renders the container list.
func RenderContainers(list []api.ContainerSummary, sel int, busy map[string]bool, maxRows, width int) string {
	rows := make([]string, 0, len(list))
	inner := width - 6
	nameW, statusW, imageW := 22, 12, 28
	if inner < 80 {
		nameW, statusW, imageW = 16, 10, 18
	}
	for i, c := range list {
		status := StatusStyle(c.Status).Render(StatusGlyph(c.Status) + " " + cell(c.Status, statusW-2))
		port := ""
		if c.HostPort != "" {
			port = ":" + c.HostPort
		}
		if c.URL != "" {
			port = c.URL
		}
		content := cell(c.Name, nameW) + " " + status + " " + cell(MutedStyle.Render(c.Image), imageW) + " " + orDash(port)
		content += busyMarker(busy[c.ID])
		rows = append(rows, listRow(content, i == sel, width))
	}
	return listSection("Containers", fmt.Sprintf("%d", len(list)), rows, sel, maxRows, width, "No containers found")
}
