package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks are the eight bar heights, lowest first.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline draws the newest width samples of a percentage series.
// Samples sit on a fixed 0-100 scale so a steady 3% load stays a low line
// instead of being stretched to fill the height. The line takes the
// threshold colour of the newest sample.
func RenderSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)
	for _, v := range data {
		sb.WriteRune(sparkBlocks[sparkLevel(v)])
	}

	return lipgloss.NewStyle().
		Foreground(ThresholdColor(data[len(data)-1])).
		Render(sb.String())
}

// sparkLevel maps a percentage onto a block index.
func sparkLevel(percent float64) int {
	top := len(sparkBlocks) - 1
	switch {
	case percent <= 0:
		return 0
	case percent >= 100:
		return top
	}
	return int(percent / 100 * float64(top))
}
