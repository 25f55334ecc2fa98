package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pidash/internal/action"
)

// keyMap holds every dashboard binding. Bindings double as the help text.
type keyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Refresh  key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	JumpTab  key.Binding
	Up       key.Binding
	Down     key.Binding
	Open     key.Binding
	Logs     key.Binding
	Start    key.Binding
	Stop     key.Binding
	Restart  key.Binding
	Pull     key.Binding
	Status   key.Binding
	Toggle   key.Binding
	Scan     key.Binding
	Dismiss  key.Binding
	Close    key.Binding
	CloseTop key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Scroll   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q / Ctrl+C", "Quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Toggle this help")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Reload current tab")),
		NextTab:  key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("Tab / →", "Next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("Shift+Tab / ←", "Previous tab")),
		JumpTab:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "Jump to tab")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑ / k", "Select previous")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓ / j", "Select next")),
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Details / toggle / git status")),
		Logs:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "Container logs")),
		Start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Start")),
		Stop:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "Stop")),
		Restart:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "Restart")),
		Pull:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "Git pull")),
		Status:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "Git status")),
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("Space", "Toggle GPIO pin")),
		Scan:     key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "Scan network")),
		Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "Dismiss newest notification")),
		Close:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Close all dialogs")),
		CloseTop: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "Close dialog")),
		Confirm:  key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y / Enter", "Confirm")),
		Cancel:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "Cancel")),
		Scroll:   key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("PgUp / PgDn", "Scroll dialog")),
	}
}

// helpBindings lists the bindings shown in the help overlay, in order.
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.JumpTab, k.NextTab, k.PrevTab, k.Up, k.Down, k.Open, k.Logs,
		k.Start, k.Stop, k.Restart, k.Pull, k.Status, k.Toggle, k.Scan,
		k.Refresh, k.Dismiss, k.Close, k.Scroll, k.Help, k.Quit,
	}
}

// actionKeys maps action bindings to the action they request.
func (k keyMap) actionFor(msg tea.KeyMsg) (action.Action, bool) {
	switch {
	case key.Matches(msg, k.Logs):
		return action.Logs, true
	case key.Matches(msg, k.Start):
		return action.Start, true
	case key.Matches(msg, k.Stop):
		return action.Stop, true
	case key.Matches(msg, k.Restart):
		return action.Restart, true
	case key.Matches(msg, k.Pull):
		return action.Pull, true
	case key.Matches(msg, k.Status):
		return action.Status, true
	case key.Matches(msg, k.Toggle):
		return action.Toggle, true
	}
	return "", false
}

// HandleKeyMsg processes keyboard input. It returns true when the key was
// consumed.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		m.poller.Stop()
		return true, tea.Quit
	}

	if m.view.Modal.IsOpen() {
		return m.handleModalKey(msg)
	}

	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.quitting = true
		m.poller.Stop()
		return true, tea.Quit

	case key.Matches(msg, k.Help):
		m.view.Modal.Open(ModalHelp)
		return true, nil

	case key.Matches(msg, k.Dismiss):
		m.toasts.DismissNewest()
		return true, nil

	case key.Matches(msg, k.Refresh):
		return true, m.Activate(m.view.ActiveTab)

	case key.Matches(msg, k.NextTab):
		return true, m.Activate(m.view.ActiveTab.Next())

	case key.Matches(msg, k.PrevTab):
		return true, m.Activate(m.view.ActiveTab.Prev())

	case key.Matches(msg, k.JumpTab):
		idx := int(msg.String()[0] - '1')
		return true, m.Activate(Tabs[idx])

	case key.Matches(msg, k.Up):
		m.moveSelection(-1)
		return true, nil

	case key.Matches(msg, k.Down):
		m.moveSelection(1)
		return true, nil

	case key.Matches(msg, k.Scan):
		if m.view.ActiveTab == TabNetwork {
			return true, m.openScan()
		}
		return true, nil

	case key.Matches(msg, k.Open):
		if c, ok := m.selectedControl(); ok && c.primary != "" {
			return true, m.requestAction(c.ref, c.primary)
		}
		return true, nil
	}

	if a, ok := k.actionFor(msg); ok {
		if c, ok := m.selectedControl(); ok && c.has(a) {
			return true, m.requestAction(c.ref, a)
		}
		return true, nil
	}
	return false, nil
}

// handleModalKey routes keys while a modal is open. Keys never fall
// through to the tab underneath.
func (m *Model) handleModalKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	k := m.keys
	if key.Matches(msg, k.Close) {
		return true, m.closeAll()
	}

	switch m.view.Modal.Active() {
	case ModalConfirm:
		switch {
		case key.Matches(msg, k.Confirm):
			return true, m.confirmPending()
		case key.Matches(msg, k.Cancel), key.Matches(msg, k.CloseTop):
			return true, m.cancelPending()
		}
		return true, nil

	case ModalHelp:
		if key.Matches(msg, k.Help) || key.Matches(msg, k.CloseTop) {
			return true, m.closeTop()
		}
		return true, nil

	case ModalDetails:
		if key.Matches(msg, k.CloseTop) {
			return true, m.closeTop()
		}
		if a, ok := k.actionFor(msg); ok && m.view.ActiveResource != nil {
			if a == action.Logs || a == action.Start || a == action.Stop || a == action.Restart {
				return true, m.requestAction(*m.view.ActiveResource, a)
			}
			return true, nil
		}

	case ModalLogs, ModalScan:
		if key.Matches(msg, k.CloseTop) {
			return true, m.closeTop()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return true, cmd
}
