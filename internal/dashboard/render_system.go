package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/format"
	"github.com/rileyhilliard/pidash/internal/ui"
)

const systemLabelWidth = 14

// SystemView is everything the system tab shows.
type SystemView struct {
	Global  *api.GlobalStats
	Rpi     *api.RpiStats
	CPUHist []float64
	MemHist []float64
	RxRate  float64
	TxRate  float64
}

// RenderSystem renders host usage, Pi hardware readings and throttling.
func RenderSystem(v SystemView, width int) string {
	var sections []string

	if v.Global == nil {
		sections = append(sections, Section("Usage", "", []string{Placeholder("Waiting for stats…")}, width))
	} else {
		s := v.Global.System
		mem := format.Ratio(s.MemoryUsed, s.MemoryTotal)
		disk := format.Ratio(s.DiskUsed, s.DiskTotal)
		barW := 24
		sparkW := width - systemLabelWidth - barW - 24
		if sparkW < 0 {
			sparkW = 0
		}
		lines := []string{
			KV("CPU", fmt.Sprintf("%s %s  %s", ProgressBar(barW, s.CPUPercent),
				MetricStyle(s.CPUPercent).Render(format.Percent(s.CPUPercent)),
				ui.RenderSparkline(v.CPUHist, sparkW)), systemLabelWidth),
			KV("Memory", fmt.Sprintf("%s %s  %s", ProgressBar(barW, mem),
				MetricStyle(mem).Render(format.Percent(mem)),
				ui.RenderSparkline(v.MemHist, sparkW)), systemLabelWidth),
			KV("", fmt.Sprintf("%s / %s", format.BytesDefault(s.MemoryUsed), format.BytesDefault(s.MemoryTotal)), systemLabelWidth),
			KV("Disk", fmt.Sprintf("%s %s  %s / %s", ProgressBar(barW, disk),
				MetricStyle(disk).Render(format.Percent(disk)),
				format.BytesDefault(s.DiskUsed), format.BytesDefault(s.DiskTotal)), systemLabelWidth),
			KV("Network", fmt.Sprintf("↓ %s (%s)  ↑ %s (%s)",
				format.BytesDefault(s.NetworkRx), format.Rate(v.RxRate),
				format.BytesDefault(s.NetworkTx), format.Rate(v.TxRate)), systemLabelWidth),
		}
		sections = append(sections, Section("Usage", "", lines, width))
	}

	if v.Rpi == nil {
		sections = append(sections, Section("Raspberry Pi", "", []string{Placeholder("Hardware stats unavailable")}, width))
	} else {
		r := v.Rpi
		gpu := MutedStyle.Render("n/a")
		if r.GPUTemperature != nil {
			gpu = temperature(*r.GPUTemperature)
		}
		lines := []string{
			KV("CPU temp", temperature(r.CPUTemperature), systemLabelWidth),
			KV("GPU temp", gpu, systemLabelWidth),
			KV("CPU freq", fmt.Sprintf("%.0f MHz", r.CPUFrequencyMHz), systemLabelWidth),
			KV("Core volts", fmt.Sprintf("%.2f V", r.CoreVoltage), systemLabelWidth),
		}
		sections = append(sections, Section("Raspberry Pi", "", lines, width))
		sections = append(sections, Section("Throttling", "", throttleLines(r.Throttling), width))
	}

	return joinSections(sections)
}

func temperature(c float64) string {
	return lipgloss.NewStyle().Foreground(TempColor(c)).Render(fmt.Sprintf("%.1f°C", c))
}

func throttleLines(t api.Throttling) []string {
	warnings := t.Warnings()
	if len(warnings) == 0 {
		return []string{lipgloss.NewStyle().Foreground(ColorHealthy).Render(GlyphSuccess + " No throttling detected")}
	}
	lines := make([]string, 0, len(warnings))
	style := lipgloss.NewStyle().Foreground(ColorWarning)
	for _, w := range warnings {
		lines = append(lines, style.Render(GlyphWarning+" "+w))
	}
	return lines
}

func joinSections(sections []string) string {
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
