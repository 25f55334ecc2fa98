package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/pidash/internal/action"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/config"
	"github.com/rileyhilliard/pidash/internal/logger"
)

// Client is the part of the API client the dashboard uses. *api.Client
// implements it.
type Client interface {
	action.Doer
	Containers(ctx context.Context) ([]api.ContainerSummary, error)
	GlobalStats(ctx context.Context) (api.GlobalStats, error)
	RpiStats(ctx context.Context) (api.RpiStats, error)
	GPIOStatus(ctx context.Context) (map[int]api.GPIOPin, error)
	Projects(ctx context.Context) ([]api.Project, error)
	NetworkStatus(ctx context.Context) (api.NetworkStatus, error)
	ScanNetwork(ctx context.Context, target string) ([]string, error)
	Services(ctx context.Context) ([]api.Service, error)
}

// Options configures the dashboard.
type Options struct {
	Refresh       config.RefreshConfig
	DefaultTab    Tab
	ToastDuration time.Duration
	Mouse         bool
	ScanTarget    string
	// Host is shown in the header.
	Host   string
	Logger logger.Logger
}

// OptionsFromConfig maps the loaded config onto dashboard options.
func OptionsFromConfig(cfg *config.Config, host string) Options {
	tab, ok := ParseTab(cfg.UI.DefaultTab)
	if !ok {
		tab = TabContainers
	}
	return Options{
		Refresh:       cfg.Refresh,
		DefaultTab:    tab,
		ToastDuration: cfg.UI.ToastDuration,
		Mouse:         cfg.UI.Mouse,
		ScanTarget:    cfg.Network.ScanTarget,
		Host:          host,
	}
}

// ViewState is what the user is looking at and which poll serves it.
type ViewState struct {
	ActiveTab      Tab
	Poll           Handle
	ActiveResource *action.Ref
	Modal          Modals
}

// tabData holds the last applied payload of every tab.
type tabData struct {
	containers []api.ContainerSummary
	global     *api.GlobalStats
	rpi        *api.RpiStats
	pins       map[int]api.GPIOPin
	gpioLoaded bool
	projects   []api.Project
	network    *api.NetworkStatus
	services   []api.Service

	// Cumulative counters from the previous system sample.
	netRx, netTx   float64
	netSampled     time.Time
	rxRate, txRate float64
}

type detailsState struct {
	ref      action.Ref
	info     *api.ContainerInfo
	stats    *api.ContainerStats
	loading  bool
	err      string
	statsErr string
}

type outputState struct {
	desc    action.Descriptor
	text    string
	loading bool
	err     string
}

type scanState struct {
	target  string
	hosts   []string
	loading bool
	err     string
}

// startMsg activates the default tab once the program is running.
type startMsg struct{}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	client     Client
	dispatcher *action.Dispatcher
	opts       Options
	log        logger.Logger
	keys       keyMap

	view    ViewState
	poller  *Poller
	toasts  *Toasts
	history *History

	data     tabData
	errs     map[Tab]string
	loading  map[Tab]bool
	selected map[Tab]int
	pending  map[string]action.Action
	// stale marks tabs changed by an action while a modal covered them.
	stale map[Tab]bool

	details detailsState
	output  outputState
	scan    scanState
	confirm *confirmState

	viewport   viewport.Model
	spinner    spinner.Model
	width      int
	height     int
	lastUpdate time.Time
	quitting   bool
}

// New creates a dashboard over client. No tab is active until Init runs.
func New(client Client, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logger.NewEnvLogger("[dashboard]")
	}
	if opts.DefaultTab == TabNone {
		opts.DefaultTab = TabContainers
	}
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	return Model{
		client:     client,
		dispatcher: action.NewDispatcher(client, opts.Logger),
		opts:       opts,
		log:        opts.Logger,
		keys:       defaultKeyMap(),
		view:       ViewState{ActiveTab: TabNone},
		poller:     NewPoller(),
		toasts:     NewToasts(opts.ToastDuration),
		history:    NewHistory(DefaultHistorySize),
		errs:       make(map[Tab]string),
		loading:    make(map[Tab]bool),
		selected:   make(map[Tab]int),
		pending:    make(map[string]action.Action),
		stale:      make(map[Tab]bool),
		viewport:   viewport.New(80, 20),
		spinner:    sp,
	}
}

// Init activates the default tab and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return startMsg{} },
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		if m.view.ActiveTab == TabNone {
			return m, m.Activate(m.opts.DefaultTab)
		}

	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.MouseMsg:
		if m.opts.Mouse {
			return m, m.HandleMouseMsg(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pollTickMsg:
		return m, m.poller.Tick(msg)

	case pollResultMsg:
		if !m.poller.Accept(msg) {
			m.log.Debug("dropped stale result from %s (gen %d seq %d)", msg.owner, msg.gen, msg.seq)
			return m, nil
		}
		return m, m.applyPayload(msg.payload)

	case actionDoneMsg:
		return m, m.actionDone(msg)

	case toastExpiredMsg:
		m.toasts.Dismiss(msg.id)
	}

	return m, nil
}

func (m *Model) applyPayload(payload tea.Msg) tea.Cmd {
	if ok, cmd := m.applyTabPayload(payload); ok {
		return cmd
	}
	switch msg := payload.(type) {
	case detailsLoadedMsg:
		return m.applyDetails(msg)
	case outputLoadedMsg:
		return m.applyOutput(msg)
	case scanLoadedMsg:
		return m.applyScan(msg)
	}
	return nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// notify pushes a toast and returns its expiry command.
func (m *Model) notify(message string, kind ToastKind) tea.Cmd {
	_, cmd := m.toasts.Notify(message, kind)
	return cmd
}

func (m *Model) markUpdated() {
	m.lastUpdate = time.Now()
}

// ActiveTab returns the active tab, TabNone before Init.
func (m Model) ActiveTab() Tab {
	return m.view.ActiveTab
}

// State returns a copy of the view state.
func (m Model) State() ViewState {
	return m.view
}

// Toasts returns the visible toasts.
func (m Model) Toasts() []Toast {
	return m.toasts.Items()
}

// Shutdown stops polling; the CLI calls it after the program exits.
func (m Model) Shutdown() {
	m.poller.Stop()
}

// modalSize is the outer size of modal panels for the current terminal.
func (m Model) modalSize() (int, int) {
	w := m.width - 8
	if w > 100 {
		w = 100
	}
	if w < 30 {
		w = 30
	}
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	return w, h
}

// resizeViewport fits the modal viewport inside the panel: border (2),
// padding (2 rows, 4 cols), title and hint lines (4).
func (m *Model) resizeViewport() {
	w, h := m.modalSize()
	m.viewport.Width = w - 6
	m.viewport.Height = h - 8
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.refreshViewport()
}

// detailsBody renders the details modal. A failed stats fetch keeps the
// last stats and adds a note under them.
func (m *Model) detailsBody() string {
	cpu, mem := m.detailHistory()
	body := RenderDetails(m.details.info, m.details.stats, cpu, mem, m.viewport.Width)
	if body != "" && m.details.statsErr != "" {
		body += "\n" + Placeholder("Stats unavailable: "+m.details.statsErr)
	}
	return body
}

// refreshViewport re-renders the scrolling body of the active modal.
func (m *Model) refreshViewport() {
	switch m.view.Modal.Content() {
	case ModalDetails:
		m.viewport.SetContent(m.detailsBody())
	case ModalLogs:
		m.viewport.SetContent(RenderLogs(m.output.text, m.viewport.Width))
	case ModalScan:
		m.viewport.SetContent(RenderScanResults(m.scan.hosts, m.viewport.Width))
	}
}

func (m Model) detailHistory() ([]float64, []float64) {
	if m.view.ActiveResource == nil {
		return nil, nil
	}
	id := m.view.ActiveResource.ID
	return m.history.CPU(id, DefaultHistorySize), m.history.Mem(id, DefaultHistorySize)
}
