package dashboard

import (
	"fmt"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/format"
	"github.com/rileyhilliard/pidash/internal/ui"
)

const detailLabelWidth = 16

// RenderDetails renders a container's inspection data and, when present,
// its live stats with CPU and memory sparklines.
func RenderDetails(info *api.ContainerInfo, stats *api.ContainerStats, cpuHist, memHist []float64, width int) string {
	if info == nil {
		return ""
	}
	var sections []string

	overview := []string{
		KV("Name", orDash(info.Name), detailLabelWidth),
		KV("ID", orDash(api.ShortID(info.ID)), detailLabelWidth),
		KV("Image", orDash(info.Image), detailLabelWidth),
		KV("Status", StatusStyle(info.Status).Render(StatusGlyph(info.Status)+" "+orDash(info.Status)), detailLabelWidth),
	}
	if info.Created != "" {
		overview = append(overview, KV("Created", format.Date(info.Created), detailLabelWidth))
	}
	if info.RestartPolicy.Name != "" {
		overview = append(overview, KV("Restart policy", info.RestartPolicy.Name, detailLabelWidth))
	}
	if cmd := info.CommandString(); cmd != "" {
		overview = append(overview, KV("Command", cmd, detailLabelWidth))
	}
	if len(info.Networks) > 0 {
		overview = append(overview, KV("Networks", strings.Join(info.Networks, ", "), detailLabelWidth))
	}
	sections = append(sections, Section("Container", "", overview, width))

	if stats != nil {
		sections = append(sections, Section("Live stats", "", statsLines(stats, cpuHist, memHist, width), width))
	}

	sections = append(sections,
		Section("Ports", "", portLines(info.Ports), width),
		Section("Volumes", "", listOrPlaceholder(info.Volumes, "No volumes mounted"), width),
		Section("Environment", "", envLines(info.Env), width),
	)
	return strings.Join(sections, "\n")
}

// RenderStats renders live stats on their own, without history.
func RenderStats(stats *api.ContainerStats, width int) string {
	if stats == nil {
		return ""
	}
	return Section("Live stats", "", statsLines(stats, nil, nil, width), width)
}

func statsLines(s *api.ContainerStats, cpuHist, memHist []float64, width int) []string {
	barW := 20
	sparkW := width - detailLabelWidth - barW - 20
	if sparkW < 0 {
		sparkW = 0
	}
	cpu := fmt.Sprintf("%s %s  %s", ProgressBar(barW, s.CPUPercent),
		MetricStyle(s.CPUPercent).Render(format.Percent(s.CPUPercent)), ui.RenderSparkline(cpuHist, sparkW))
	mem := fmt.Sprintf("%s %s  %s", ProgressBar(barW, s.MemPercent),
		MetricStyle(s.MemPercent).Render(format.Percent(s.MemPercent)), ui.RenderSparkline(memHist, sparkW))
	return []string{
		KV("CPU", cpu, detailLabelWidth),
		KV("Memory", mem, detailLabelWidth),
		KV("", fmt.Sprintf("%s / %s", format.BytesDefault(s.MemUsage), format.BytesDefault(s.MemLimit)), detailLabelWidth),
		KV("Network", fmt.Sprintf("↓ %s  ↑ %s", format.BytesDefault(s.RxBytes), format.BytesDefault(s.TxBytes)), detailLabelWidth),
	}
}

// portLines lists bindings by port number, then protocol. Exposed ports
// with no host binding are marked as not published. ports is not modified.
func portLines(ports nat.PortMap) []string {
	if len(ports) == 0 {
		return []string{Placeholder("No ports exposed")}
	}
	keys := make([]nat.Port, 0, len(ports))
	for p := range ports {
		keys = append(keys, p)
	}
	nat.Sort(keys, func(a, b nat.Port) bool {
		if a.Int() != b.Int() {
			return a.Int() < b.Int()
		}
		return a.Proto() < b.Proto()
	})

	var lines []string
	for _, p := range keys {
		bindings := ports[p]
		if len(bindings) == 0 {
			lines = append(lines, fmt.Sprintf("%s %s", p, MutedStyle.Render("(not published)")))
			continue
		}
		for _, b := range bindings {
			host := b.HostIP
			if host == "" {
				host = "0.0.0.0"
			}
			lines = append(lines, fmt.Sprintf("%s:%s → %s", host, b.HostPort, p))
		}
	}
	return lines
}

func envLines(env []string) []string {
	if len(env) == 0 {
		return []string{Placeholder("No environment variables")}
	}
	lines := make([]string, 0, len(env))
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		lines = append(lines, LabelStyle.Render(k)+"="+ValueStyle.Render(v))
	}
	return lines
}

func listOrPlaceholder(items []string, empty string) []string {
	if len(items) == 0 {
		return []string{Placeholder(empty)}
	}
	return items
}

// RenderLogs renders container log output or git command output.
func RenderLogs(text string, width int) string {
	text = strings.TrimRight(text, "\n")
	if strings.TrimSpace(text) == "" {
		return Placeholder("No logs available")
	}
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = wrapHard(l, width)
	}
	return strings.Join(lines, "\n")
}

// wrapHard breaks a line every width columns; log lines have no useful
// word boundaries.
func wrapHard(line string, width int) string {
	r := []rune(line)
	if len(r) <= width {
		return line
	}
	var b strings.Builder
	for len(r) > width {
		b.WriteString(string(r[:width]))
		b.WriteByte('\n')
		r = r[width:]
	}
	b.WriteString(string(r))
	return b.String()
}
