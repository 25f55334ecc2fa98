package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Width(18)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)
)

// renderHelp renders the keyboard shortcut panel.
func (m Model) renderHelp() string {
	var lines []string
	lines = append(lines, TitleStyle.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	for _, b := range m.keys.helpBindings() {
		h := b.Help()
		lines = append(lines, helpKeyStyle.Render(h.Key)+helpDescStyle.Render(h.Desc))
	}

	lines = append(lines, "")
	lines = append(lines, LabelStyle.Render("Press ? to close"))

	return ModalStyle.Render(strings.Join(lines, "\n"))
}
