package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/format"
)

// RenderNetwork renders interfaces, WiFi signal and traffic counters.
func RenderNetwork(status *api.NetworkStatus, scanTarget string, width int) string {
	if status == nil {
		return Section("Interfaces", "", []string{Placeholder("No network interfaces")}, width)
	}

	names := make([]string, 0, len(status.Interfaces))
	for name := range status.Interfaces {
		names = append(names, name)
	}
	sort.Strings(names)

	var ifaces []string
	for _, name := range names {
		iface := status.Interfaces[name]
		state := lipgloss.NewStyle().Foreground(ColorCritical).Render(GlyphStopped + " down")
		if iface.IsUp {
			state = lipgloss.NewStyle().Foreground(ColorHealthy).Render(GlyphRunning + " up  ")
		}
		addrs := strings.Join(iface.Addresses, ", ")
		ifaces = append(ifaces, cell(name, 12)+" "+state+"  "+orDash(addrs))
	}
	if len(ifaces) == 0 {
		ifaces = []string{Placeholder("No network interfaces")}
	}

	sections := []string{Section("Interfaces", fmt.Sprintf("%d", len(names)), ifaces, width)}

	wifi := MutedStyle.Render("n/a")
	if status.WifiSignal != "" {
		wifi = status.WifiSignal
	}
	traffic := []string{KV("WiFi signal", wifi, 14)}
	if st := status.Stats; st != nil {
		traffic = append(traffic,
			KV("Sent", fmt.Sprintf("%s (%s packets)", format.BytesDefault(st.BytesSent), format.Count(st.PacketsSent)), 14),
			KV("Received", fmt.Sprintf("%s (%s packets)", format.BytesDefault(st.BytesRecv), format.Count(st.PacketsRecv)), 14),
		)
	}
	sections = append(sections, Section("Traffic", "", traffic, width))

	if scanTarget != "" {
		sections = append(sections, MutedStyle.Render("  Press S to scan "+scanTarget))
	}
	return joinSections(sections)
}

// RenderScanResults lists hosts that answered a network scan.
func RenderScanResults(hosts []string, width int) string {
	if len(hosts) == 0 {
		return Placeholder("No active hosts found")
	}
	lines := make([]string, 0, len(hosts))
	for _, h := range hosts {
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorHealthy).Render(GlyphRunning)+" "+cell(h, width-2))
	}
	return strings.Join(lines, "\n")
}
