package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ANSI palette shared by CLI output. The dashboard has its own richer theme.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
	ColorPrimary lipgloss.Color = "7"
	ColorAccent  lipgloss.Color = "4" // Blue
	ColorMuted   lipgloss.Color = "8" // Bright black
)

// Text styles for one-shot command output.
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	InfoStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	HeaderStyle  = lipgloss.NewStyle().Bold(true)
	LabelStyle   = lipgloss.NewStyle().Foreground(ColorMuted).Width(14)
)

// DisableColors switches lipgloss to plain ASCII output.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ConfigureColors disables colour when asked to, when NO_COLOR is set, or
// when out is not a terminal.
func ConfigureColors(noColor bool, out io.Writer) {
	if noColor || os.Getenv("NO_COLOR") != "" || !IsTerminal(out) {
		DisableColors()
	}
}

// ThresholdColor maps a usage percentage to green, yellow or red.
func ThresholdColor(percent float64) lipgloss.Color {
	switch {
	case percent >= 80:
		return ColorError
	case percent >= 60:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
