package ui

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestRenderSparkline_Empty(t *testing.T) {
	assert.Empty(t, RenderSparkline(nil, 10))
	assert.Empty(t, RenderSparkline([]float64{}, 10))
	assert.Empty(t, RenderSparkline([]float64{50}, 0))
	assert.Empty(t, RenderSparkline([]float64{50}, -1))
}

func TestRenderSparkline_FixedScale(t *testing.T) {
	got := ansi.Strip(RenderSparkline([]float64{0, 50, 100}, 10))
	assert.Equal(t, "▁▄█", got)

	// A flat low series stays low.
	assert.Equal(t, "▁▁▁", ansi.Strip(RenderSparkline([]float64{3, 3, 3}, 10)))
}

func TestRenderSparkline_KeepsNewestSamples(t *testing.T) {
	got := ansi.Strip(RenderSparkline([]float64{100, 100, 0, 0}, 2))
	assert.Equal(t, "▁▁", got)
}

func TestRenderSparkline_Clamps(t *testing.T) {
	got := ansi.Strip(RenderSparkline([]float64{-20, 250}, 5))
	assert.Equal(t, "▁█", got)
}

func TestSparkLevel(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{14, 0},
		{15, 1},
		{50, 3},
		{99, 6},
		{100, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sparkLevel(tt.in), "sparkLevel(%v)", tt.in)
	}
}
