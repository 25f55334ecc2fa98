package ui

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestThresholdColor(t *testing.T) {
	tests := []struct {
		percent float64
		want    lipgloss.Color
	}{
		{0, ColorSuccess},
		{59.9, ColorSuccess},
		{60, ColorWarning},
		{79.9, ColorWarning},
		{80, ColorError},
		{100, ColorError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ThresholdColor(tt.percent), "%.1f", tt.percent)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestConfigureColors_NonTerminalIsPlain(t *testing.T) {
	orig := lipgloss.ColorProfile()
	t.Cleanup(func() { lipgloss.SetColorProfile(orig) })
	lipgloss.SetColorProfile(termenv.TrueColor)

	ConfigureColors(false, &bytes.Buffer{})

	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())
	assert.Equal(t, "ok", SuccessStyle.Render("ok"))
}
