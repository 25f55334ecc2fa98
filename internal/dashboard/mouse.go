package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
)

// HandleMouseMsg processes mouse input. Only left presses and the wheel
// do anything.
func (m *Model) HandleMouseMsg(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}

	if m.view.Modal.IsOpen() {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.viewport.ScrollUp(3)
			return nil
		case tea.MouseButtonWheelDown:
			m.viewport.ScrollDown(3)
			return nil
		}
	}
	if msg.Button != tea.MouseButtonLeft {
		if !m.view.Modal.IsOpen() {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				m.moveSelection(-1)
			case tea.MouseButtonWheelDown:
				m.moveSelection(1)
			}
		}
		return nil
	}

	// Toasts sit above everything else.
	items := m.toasts.Items()
	for i, r := range m.toastRects() {
		if r.contains(msg.X, msg.Y) {
			m.toasts.Dismiss(items[i].ID)
			return nil
		}
	}

	if m.view.Modal.IsOpen() {
		if m.modalRect().contains(msg.X, msg.Y) {
			return nil
		}
		// Backdrop click.
		return m.closeAll()
	}

	for i, r := range tabSpans() {
		if r.contains(msg.X, msg.Y) {
			return m.Activate(Tabs[i])
		}
	}

	return m.clickRow(msg.X, msg.Y)
}

// clickRow selects the list row under the pointer. Clicking the row that is
// already selected runs its primary action.
func (m *Model) clickRow(_, y int) tea.Cmd {
	t := m.view.ActiveTab
	ctrls := m.controls(t)
	if len(ctrls) == 0 {
		return nil
	}
	top := m.listRowsTop(t)
	maxRows := m.maxRows(t)
	offset := y - top
	if offset < 0 || offset >= maxRows {
		return nil
	}
	sel := m.selected[t]
	idx := windowStart(sel, len(ctrls), maxRows) + offset
	if idx >= len(ctrls) {
		return nil
	}
	if idx != sel {
		m.selected[t] = idx
		return nil
	}
	c := ctrls[idx]
	if c.primary == "" {
		return nil
	}
	return m.requestAction(c.ref, c.primary)
}
