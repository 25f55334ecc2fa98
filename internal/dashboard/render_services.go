package dashboard

import (
	"fmt"

	"github.com/rileyhilliard/pidash/internal/api"
)

// RenderServices renders systemd units with their active state.
func RenderServices(services []api.Service, sel int, busy map[string]bool, maxRows, width int) string {
	rows := make([]string, 0, len(services))
	for i, s := range services {
		state := StatusStyle(s.Active).Render(StatusGlyph(s.Active) + " " + cell(orDash(s.Active), 10))
		content := cell(serviceLabel(s), 24) + " " + state + " " + MutedStyle.Render(s.Description)
		content += busyMarker(busy[s.Name])
		rows = append(rows, listRow(content, i == sel, width))
	}
	return listSection("Services", fmt.Sprintf("%d", len(services)), rows, sel, maxRows, width, "No services found")
}
