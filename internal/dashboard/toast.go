package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ToastKind selects a toast's colour and icon.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastWarning
	ToastError
)

func (k ToastKind) String() string {
	switch k {
	case ToastSuccess:
		return "success"
	case ToastWarning:
		return "warning"
	case ToastError:
		return "error"
	default:
		return "info"
	}
}

// DefaultToastDuration is the auto-dismiss delay when none is configured.
const DefaultToastDuration = 5 * time.Second

// MaxToasts is how many toasts stay visible; older ones are dropped first.
const MaxToasts = 5

// Toast is one transient notification.
type Toast struct {
	ID      int
	Message string
	Kind    ToastKind
}

// toastExpiredMsg fires when a toast's lifetime ends.
type toastExpiredMsg struct {
	id int
}

// Toasts is the notification stack, newest last.
type Toasts struct {
	items    []Toast
	nextID   int
	lifetime time.Duration
}

// NewToasts creates a stack whose toasts expire after lifetime.
func NewToasts(lifetime time.Duration) *Toasts {
	if lifetime <= 0 {
		lifetime = DefaultToastDuration
	}
	return &Toasts{lifetime: lifetime}
}

// Notify pushes a toast and returns its id and the expiry command.
func (t *Toasts) Notify(message string, kind ToastKind) (int, tea.Cmd) {
	t.nextID++
	id := t.nextID
	t.items = append(t.items, Toast{ID: id, Message: message, Kind: kind})
	if len(t.items) > MaxToasts {
		t.items = t.items[len(t.items)-MaxToasts:]
	}
	return id, tea.Tick(t.lifetime, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// Dismiss removes a toast. It reports false when id is already gone, which
// is how a late expiry after a manual dismiss becomes a no-op.
func (t *Toasts) Dismiss(id int) bool {
	for i, item := range t.items {
		if item.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

// DismissNewest removes the most recent toast.
func (t *Toasts) DismissNewest() bool {
	if len(t.items) == 0 {
		return false
	}
	return t.Dismiss(t.items[len(t.items)-1].ID)
}

// Items returns the visible toasts, oldest first.
func (t *Toasts) Items() []Toast {
	out := make([]Toast, len(t.items))
	copy(out, t.items)
	return out
}

// Len returns the number of visible toasts.
func (t *Toasts) Len() int {
	return len(t.items)
}
