package dashboard

import (
	"strings"

	"github.com/rileyhilliard/pidash/internal/action"
	"github.com/rileyhilliard/pidash/internal/api"
)

// control is one actionable list row.
type control struct {
	ref     action.Ref
	actions []action.Action
	// primary runs on enter or a click on an already selected row.
	primary action.Action
}

func (c control) has(a action.Action) bool {
	for _, x := range c.actions {
		if x == a {
			return true
		}
	}
	return false
}

var (
	containerActions = []action.Action{action.Info, action.Logs, action.Start, action.Stop, action.Restart}
	serviceActions   = []action.Action{action.Start, action.Stop, action.Restart}
	projectActions   = []action.Action{action.Status, action.Pull}
	gpioActions      = []action.Action{action.Toggle}
)

// controls rebuilds the control set for a list tab from the current data.
// It runs on every key and render pass so bindings always match what is
// on screen.
func (m *Model) controls(t Tab) []control {
	var out []control
	switch t {
	case TabContainers:
		for _, c := range m.data.containers {
			out = append(out, control{
				ref:     action.Ref{Kind: action.KindContainer, ID: c.ID, Label: c.Name},
				actions: containerActions,
				primary: action.Info,
			})
		}
	case TabServices:
		for _, s := range m.data.services {
			out = append(out, control{
				ref:     action.Ref{Kind: action.KindService, ID: s.Name, Label: serviceLabel(s)},
				actions: serviceActions,
			})
		}
	case TabProjects:
		for _, p := range m.data.projects {
			c := control{ref: action.Ref{Kind: action.KindProject, ID: p.Name, Label: p.Name}}
			if p.IsGit {
				c.actions = projectActions
				c.primary = action.Status
			}
			out = append(out, c)
		}
	case TabGPIO:
		// Only output pins toggle; setting an input would reconfigure it.
		for _, n := range api.SortedPins(m.data.pins) {
			c := control{ref: action.PinRef(n)}
			if m.data.pins[n].IsOutput() {
				c.actions = gpioActions
				c.primary = action.Toggle
			}
			out = append(out, c)
		}
	}
	return out
}

func serviceLabel(s api.Service) string {
	return strings.TrimSuffix(s.Name, ".service")
}

// selectedControl returns the control under the cursor on the active tab.
func (m *Model) selectedControl() (control, bool) {
	ctrls := m.controls(m.view.ActiveTab)
	sel := m.selected[m.view.ActiveTab]
	if sel < 0 || sel >= len(ctrls) {
		return control{}, false
	}
	return ctrls[sel], true
}

// clampSelection keeps the cursor inside a list that may have shrunk.
func (m *Model) clampSelection(t Tab) {
	n := len(m.controls(t))
	sel := m.selected[t]
	switch {
	case n == 0:
		sel = 0
	case sel >= n:
		sel = n - 1
	case sel < 0:
		sel = 0
	}
	m.selected[t] = sel
}

func (m *Model) moveSelection(delta int) {
	t := m.view.ActiveTab
	m.selected[t] += delta
	m.clampSelection(t)
}

// windowStart returns the first visible row so that sel stays in view.
func windowStart(sel, n, maxRows int) int {
	if maxRows <= 0 || n <= maxRows {
		return 0
	}
	start := sel - maxRows + 1
	if start < 0 {
		start = 0
	}
	if start > n-maxRows {
		start = n - maxRows
	}
	return start
}
