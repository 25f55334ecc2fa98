package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Dashboard colour palette.
const (
	ColorDarkBg    = lipgloss.Color("#0F0B12")
	ColorSurfaceBg = lipgloss.Color("#1A141E")
	ColorBorder    = lipgloss.Color("#3A2F44")

	ColorHealthy  = lipgloss.Color("#4ADE80")
	ColorWarning  = lipgloss.Color("#FBBF24")
	ColorCritical = lipgloss.Color("#F43F5E")
	ColorInfo     = lipgloss.Color("#38BDF8")

	ColorTextPrimary   = lipgloss.Color("#F5F3F7")
	ColorTextSecondary = lipgloss.Color("#B9AEC4")
	ColorTextMuted     = lipgloss.Color("#75697F")

	// Raspberry red accent.
	ColorAccent    = lipgloss.Color("#E3245C")
	ColorAccentDim = lipgloss.Color("#8C1D40")

	ColorGraph = lipgloss.Color("#7DD3FC")
)

// Thresholds for metric severity levels.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Padding(0, 1)

	TabActiveStyle = TabStyle.
			Foreground(ColorTextPrimary).
			Background(ColorAccentDim).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(ColorTextMuted).
				Italic(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Background(ColorSurfaceBg).
				Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	ConfirmModalStyle = ModalStyle.
				BorderForeground(ColorWarning)
)

// Status glyphs.
const (
	GlyphRunning = "●"
	GlyphStopped = "○"
	GlyphPending = "◐"
	GlyphHigh    = "▲"
	GlyphLow     = "▽"
	GlyphSuccess = "✓"
	GlyphError   = "✗"
	GlyphWarning = "⚠"
	GlyphInfo    = "ℹ"
	GlyphCursor  = "›"
)

// StatusStyle colours a Docker or systemd status string.
func StatusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "running", "active":
		return lipgloss.NewStyle().Foreground(ColorHealthy)
	case "restarting", "paused", "activating", "deactivating", "created":
		return lipgloss.NewStyle().Foreground(ColorWarning)
	default:
		return lipgloss.NewStyle().Foreground(ColorCritical)
	}
}

// StatusGlyph returns the dot shown before a status.
func StatusGlyph(status string) string {
	switch strings.ToLower(status) {
	case "running", "active":
		return GlyphRunning
	case "restarting", "activating", "deactivating":
		return GlyphPending
	default:
		return GlyphStopped
	}
}

// MetricColor returns green below 70%, amber to 90%, red above.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// MetricStyle returns a style with the threshold colour for percent.
func MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MetricColor(percent))
}

// TempColor grades a temperature in °C for a Pi SoC, which throttles at 80.
func TempColor(celsius float64) lipgloss.Color {
	switch {
	case celsius >= 80:
		return ColorCritical
	case celsius >= 65:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// ProgressBar renders a bar of width cells coloured by threshold.
func ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
	return lipgloss.NewStyle().Foreground(MetricColor(percent)).Render(bar)
}

// SectionHeader renders ╭─ Title ──── Value ╮ across width.
func SectionHeader(title, value string, width int) string {
	if width < 10 {
		width = 10
	}
	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2
	fill := width - leftWidth - rightWidth
	if fill < 1 {
		fill = 1
	}

	border := lipgloss.NewStyle().Foreground(ColorBorder)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)
	return border.Render("╭─ ") +
		TitleStyle.Render(title) +
		border.Render(" "+strings.Repeat("─", fill)+" ") +
		valueStyle.Render(value) +
		border.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return lipgloss.NewStyle().Foreground(ColorBorder).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionLine renders │ content │ padded to width.
func SectionLine(content string, width int) string {
	if width < 4 {
		width = 4
	}
	border := lipgloss.NewStyle().Foreground(ColorBorder)
	if lipgloss.Width(content) > width-4 {
		content = lipgloss.NewStyle().MaxWidth(width - 4).Render(content)
	}
	pad := width - 4 - lipgloss.Width(content)
	if pad < 0 {
		pad = 0
	}
	return border.Render("│") + " " + content + strings.Repeat(" ", pad) + " " + border.Render("│")
}

// Section draws a titled box around lines.
func Section(title, value string, lines []string, width int) string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, SectionHeader(title, value, width))
	for _, l := range lines {
		out = append(out, SectionLine(l, width))
	}
	out = append(out, SectionFooter(width))
	return strings.Join(out, "\n")
}

// KV renders a "label  value" pair with the label padded to labelWidth.
func KV(label, value string, labelWidth int) string {
	return LabelStyle.Width(labelWidth).Render(label) + ValueStyle.Render(value)
}

// Placeholder renders the muted "no data" line for an empty collection.
func Placeholder(text string) string {
	return PlaceholderStyle.Render(text)
}
