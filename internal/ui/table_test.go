package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestRenderTable(t *testing.T) {
	out := ansi.Strip(RenderTable(
		[]string{"NAME", "STATUS"},
		[][]string{{"web", "running"}, {"db", "exited"}},
	))

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "web")
	assert.Contains(t, out, "exited")

	lines := strings.Split(out, "\n")
	assert.GreaterOrEqual(t, len(lines), 4, "header, border and two rows")
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable([]string{"NAME"}, nil))
}

func TestRenderTable_CapsWideColumns(t *testing.T) {
	long := strings.Repeat("x", 100)
	out := ansi.Strip(RenderTable([]string{"DESCRIPTION"}, [][]string{{long}}))
	assert.NotContains(t, out, long)
}
