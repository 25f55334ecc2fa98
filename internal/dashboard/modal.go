package dashboard

// ModalName identifies one of the fixed overlays.
type ModalName string

const (
	ModalNone    ModalName = ""
	ModalDetails ModalName = "details"
	ModalLogs    ModalName = "logs"
	ModalConfirm ModalName = "confirm"
	ModalScan    ModalName = "scan"
	ModalHelp    ModalName = "help"
)

// rect is a screen rectangle in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// Modals tracks which overlays are open. Overlays stack: confirm can open
// on top of details and closing it returns to details. Esc and backdrop
// clicks close everything.
type Modals struct {
	stack []ModalName
}

// Open shows name on top. Opening a modal that is already open moves it
// to the top.
func (m *Modals) Open(name ModalName) {
	if name == ModalNone {
		return
	}
	for i, n := range m.stack {
		if n == name {
			m.stack = append(m.stack[:i], m.stack[i+1:]...)
			break
		}
	}
	m.stack = append(m.stack, name)
}

// Close removes the top modal and returns what is now on top.
func (m *Modals) Close() ModalName {
	if len(m.stack) > 0 {
		m.stack = m.stack[:len(m.stack)-1]
	}
	return m.Active()
}

// CloseAll removes every modal.
func (m *Modals) CloseAll() {
	m.stack = nil
}

// Active returns the top modal.
func (m Modals) Active() ModalName {
	if len(m.stack) == 0 {
		return ModalNone
	}
	return m.stack[len(m.stack)-1]
}

// IsOpen reports whether any modal is showing.
func (m Modals) IsOpen() bool {
	return len(m.stack) > 0
}

// Has reports whether name is anywhere in the stack.
func (m Modals) Has(name ModalName) bool {
	for _, n := range m.stack {
		if n == name {
			return true
		}
	}
	return false
}

// Content returns the topmost modal with a scrolling body (details, logs or
// scan), skipping prompts stacked above it.
func (m Modals) Content() ModalName {
	for i := len(m.stack) - 1; i >= 0; i-- {
		switch m.stack[i] {
		case ModalDetails, ModalLogs, ModalScan:
			return m.stack[i]
		}
	}
	return ModalNone
}
