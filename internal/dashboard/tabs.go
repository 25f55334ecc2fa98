package dashboard

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pidash/internal/action"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/format"
)

// Tab is one of the dashboard's top-level views.
type Tab int

const (
	TabNone Tab = iota - 1
	TabContainers
	TabSystem
	TabGPIO
	TabProjects
	TabNetwork
	TabServices
)

// Tabs lists the tabs in bar order.
var Tabs = []Tab{TabContainers, TabSystem, TabGPIO, TabProjects, TabNetwork, TabServices}

func (t Tab) String() string {
	switch t {
	case TabContainers:
		return "containers"
	case TabSystem:
		return "system"
	case TabGPIO:
		return "gpio"
	case TabProjects:
		return "projects"
	case TabNetwork:
		return "network"
	case TabServices:
		return "services"
	default:
		return "none"
	}
}

// Title is the tab bar label.
func (t Tab) Title() string {
	switch t {
	case TabGPIO:
		return "GPIO"
	case TabNone:
		return ""
	default:
		s := t.String()
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

// ParseTab converts a config or flag value.
func ParseTab(s string) (Tab, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range Tabs {
		if t.String() == s {
			return t, true
		}
	}
	return TabNone, false
}

// Next returns the tab to the right, wrapping.
func (t Tab) Next() Tab {
	return Tabs[(int(t)+1)%len(Tabs)]
}

// Prev returns the tab to the left, wrapping.
func (t Tab) Prev() Tab {
	return Tabs[(int(t)-1+len(Tabs))%len(Tabs)]
}

// tabForKind is the tab whose list shows resources of kind.
func tabForKind(k action.Kind) Tab {
	switch k {
	case action.KindContainer:
		return TabContainers
	case action.KindService:
		return TabServices
	case action.KindProject:
		return TabProjects
	case action.KindGPIO:
		return TabGPIO
	default:
		return TabNone
	}
}

// Payloads produced by tab loaders.
type (
	containersLoadedMsg struct {
		full     bool
		list     []api.ContainerSummary
		listErr  error
		stats    api.GlobalStats
		statsErr error
	}

	systemLoadedMsg struct {
		global    api.GlobalStats
		globalErr error
		rpi       api.RpiStats
		rpiErr    error
	}

	gpioLoadedMsg struct {
		pins map[int]api.GPIOPin
		err  error
	}

	projectsLoadedMsg struct {
		projects []api.Project
		err      error
	}

	networkLoadedMsg struct {
		status api.NetworkStatus
		err    error
	}

	servicesLoadedMsg struct {
		services []api.Service
		err      error
	}
)

// interval returns the tab's poll cadence, or 0 for tabs that load once.
func (m *Model) interval(t Tab) time.Duration {
	switch t {
	case TabContainers:
		return m.opts.Refresh.Global
	case TabSystem:
		return m.opts.Refresh.System
	default:
		return 0
	}
}

// loader returns the fetch for a tab. The containers tab loads its list
// once per activation and refreshes only the summary counters on ticks.
func (m *Model) loader(t Tab) FetchFunc {
	c := m.client
	switch t {
	case TabContainers:
		return func(ctx context.Context, seq uint64) tea.Msg {
			msg := containersLoadedMsg{full: seq == 1}
			if msg.full {
				msg.list, msg.listErr = c.Containers(ctx)
			}
			msg.stats, msg.statsErr = c.GlobalStats(ctx)
			return msg
		}
	case TabSystem:
		return func(ctx context.Context, _ uint64) tea.Msg {
			var msg systemLoadedMsg
			msg.global, msg.globalErr = c.GlobalStats(ctx)
			msg.rpi, msg.rpiErr = c.RpiStats(ctx)
			return msg
		}
	case TabGPIO:
		return func(ctx context.Context, _ uint64) tea.Msg {
			pins, err := c.GPIOStatus(ctx)
			return gpioLoadedMsg{pins: pins, err: err}
		}
	case TabProjects:
		return func(ctx context.Context, _ uint64) tea.Msg {
			projects, err := c.Projects(ctx)
			return projectsLoadedMsg{projects: projects, err: err}
		}
	case TabNetwork:
		return func(ctx context.Context, _ uint64) tea.Msg {
			status, err := c.NetworkStatus(ctx)
			return networkLoadedMsg{status: status, err: err}
		}
	case TabServices:
		return func(ctx context.Context, _ uint64) tea.Msg {
			services, err := c.Services(ctx)
			return servicesLoadedMsg{services: services, err: err}
		}
	default:
		return func(context.Context, uint64) tea.Msg { return nil }
	}
}

// Activate switches to t: it stops the current poll, runs t's loader once
// and starts t's cycle if the tab is live. Activating the current tab
// reloads it.
func (m *Model) Activate(t Tab) tea.Cmd {
	if t == TabNone {
		return nil
	}
	m.poller.Stop()
	m.view.ActiveTab = t
	m.loading[t] = true
	delete(m.stale, t)
	h, cmd := m.poller.Start(t.String(), m.interval(t), m.loader(t))
	m.view.Poll = h
	m.log.Debug("activated %s tab (poll gen %d, interval %s)", t, h.Gen, m.interval(t))
	return cmd
}

// applyTabPayload stores a loader result. It reports whether the payload
// was a tab payload.
func (m *Model) applyTabPayload(payload tea.Msg) (bool, tea.Cmd) {
	switch msg := payload.(type) {
	case containersLoadedMsg:
		m.loading[TabContainers] = false
		var cmds []tea.Cmd
		if msg.full {
			if msg.listErr != nil {
				cmds = append(cmds, m.loadFailed(TabContainers, msg.listErr))
			} else {
				m.data.containers = msg.list
				m.clampSelection(TabContainers)
			}
		}
		if msg.statsErr != nil {
			cmds = append(cmds, m.loadFailed(TabContainers, msg.statsErr))
		} else {
			g := msg.stats
			m.data.global = &g
			m.markUpdated()
		}
		if msg.listErr == nil && msg.statsErr == nil {
			m.errs[TabContainers] = ""
		}
		return true, tea.Batch(cmds...)

	case systemLoadedMsg:
		m.loading[TabSystem] = false
		var cmds []tea.Cmd
		if msg.globalErr != nil {
			cmds = append(cmds, m.loadFailed(TabSystem, msg.globalErr))
		} else {
			g := msg.global
			m.trackNetworkRate(g.System)
			m.data.global = &g
			m.history.Push(SystemSeries, g.System.CPUPercent, format.Ratio(g.System.MemoryUsed, g.System.MemoryTotal))
		}
		if msg.rpiErr != nil {
			cmds = append(cmds, m.loadFailed(TabSystem, msg.rpiErr))
		} else {
			r := msg.rpi
			m.data.rpi = &r
		}
		if msg.globalErr == nil && msg.rpiErr == nil {
			m.errs[TabSystem] = ""
			m.markUpdated()
		}
		return true, tea.Batch(cmds...)

	case gpioLoadedMsg:
		m.loading[TabGPIO] = false
		if msg.err != nil {
			// The pin table keeps its last state; the placeholder covers
			// hosts without GPIO.
			return true, m.loadFailed(TabGPIO, msg.err)
		}
		m.errs[TabGPIO] = ""
		m.data.pins = msg.pins
		m.data.gpioLoaded = true
		m.clampSelection(TabGPIO)
		m.markUpdated()
		return true, nil

	case projectsLoadedMsg:
		m.loading[TabProjects] = false
		if msg.err != nil {
			return true, m.loadFailed(TabProjects, msg.err)
		}
		m.errs[TabProjects] = ""
		m.data.projects = msg.projects
		m.clampSelection(TabProjects)
		m.markUpdated()
		return true, nil

	case networkLoadedMsg:
		m.loading[TabNetwork] = false
		if msg.err != nil {
			return true, m.loadFailed(TabNetwork, msg.err)
		}
		m.errs[TabNetwork] = ""
		status := msg.status
		m.data.network = &status
		m.markUpdated()
		return true, nil

	case servicesLoadedMsg:
		m.loading[TabServices] = false
		if msg.err != nil {
			return true, m.loadFailed(TabServices, msg.err)
		}
		m.errs[TabServices] = ""
		m.data.services = msg.services
		m.clampSelection(TabServices)
		m.markUpdated()
		return true, nil
	}
	return false, nil
}

// loadFailed records a tab error. A live tab failing every tick toasts
// only when the error text changes.
func (m *Model) loadFailed(t Tab, err error) tea.Cmd {
	text := err.Error()
	if m.errs[t] == text {
		return nil
	}
	m.errs[t] = text
	m.log.Warn("%s load failed: %v", t, err)
	return m.notify("Failed to load "+t.String()+": "+text, ToastError)
}

// trackNetworkRate derives throughput from the cumulative rx/tx counters of
// two consecutive system samples.
func (m *Model) trackNetworkRate(s api.SystemUsage) {
	now := time.Now()
	if !m.data.netSampled.IsZero() {
		if dt := now.Sub(m.data.netSampled).Seconds(); dt > 0 {
			m.data.rxRate = nonNegative(s.NetworkRx-m.data.netRx) / dt
			m.data.txRate = nonNegative(s.NetworkTx-m.data.netTx) / dt
		}
	}
	m.data.netRx, m.data.netTx, m.data.netSampled = s.NetworkRx, s.NetworkTx, now
}

// nonNegative treats a counter reset as no traffic.
func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
