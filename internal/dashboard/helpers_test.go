package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/docker/go-connections/nat"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/config"
	"github.com/rileyhilliard/pidash/internal/logger"
)

// fakeClient serves canned data and records every request.
type fakeClient struct {
	mu sync.Mutex

	containers []api.ContainerSummary
	global     api.GlobalStats
	rpi        api.RpiStats
	pins       map[int]api.GPIOPin
	projects   []api.Project
	network    api.NetworkStatus
	services   []api.Service
	hosts      []string
	infos      map[string]api.ContainerInfo
	stats      map[string]api.ContainerStats
	logs       string

	// actionErr fails every mutating request.
	actionErr error
	// statsErr fails container stats requests.
	statsErr error
	// loadErr fails tab loaders by name ("containers", "gpio", ...).
	loadErr map[string]error

	requests []string
	bodies   []any
	calls    map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		containers: []api.ContainerSummary{
			{ID: "abc123", Name: "web", Status: "running", Image: "nginx:latest", HostPort: "8080"},
			{ID: "def456", Name: "db", Status: "exited", Image: "postgres:16"},
		},
		global: api.GlobalStats{
			Containers: api.ContainerCounts{Total: 5, Running: 3, Stopped: 2},
			System:     api.SystemUsage{CPUPercent: 42.5, MemoryUsed: 512 << 20, MemoryTotal: 1 << 30},
		},
		rpi:  api.RpiStats{CPUTemperature: 48.2, CPUFrequencyMHz: 1500, CoreVoltage: 0.85},
		pins: map[int]api.GPIOPin{17: {Mode: "output", Value: 0}, 4: {Mode: "input", Value: 1}},
		projects: []api.Project{
			{Name: "site", Path: "/home/pi/projects/site", IsGit: true, GitInfo: &api.GitInfo{Branch: "main", Commit: "0123456789"}},
			{Name: "notes", Path: "/home/pi/projects/notes"},
		},
		network: api.NetworkStatus{
			Interfaces: map[string]api.Interface{"eth0": {IsUp: true, Addresses: []string{"192.168.1.20"}}},
		},
		services: []api.Service{{Name: "nginx.service", Active: "active", Description: "web server"}},
		hosts:    []string{"192.168.1.1", "192.168.1.20"},
		infos: map[string]api.ContainerInfo{
			"abc123": {ID: "abc123", Name: "web", Status: "running", Image: "nginx:latest", Ports: nat.PortMap{}},
		},
		stats: map[string]api.ContainerStats{
			"abc123": {CPUPercent: 1.5, MemPercent: 10},
		},
		logs:    "line one\nline two",
		loadErr: make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *fakeClient) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.loadErr[name]
}

func (f *fakeClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if strings.HasPrefix(r, "POST ") && !strings.HasSuffix(r, "/git/status") {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeClient) Do(_ context.Context, method, path string, body, v any) error {
	f.mu.Lock()
	f.requests = append(f.requests, method+" "+path)
	f.bodies = append(f.bodies, body)
	actionErr := f.actionErr
	statsErr := f.statsErr
	f.mu.Unlock()

	parts := strings.Split(strings.Trim(path, "/"), "/")
	var resp any
	switch {
	case strings.HasPrefix(path, "/container/") && strings.HasSuffix(path, "/info"):
		info, ok := f.infos[parts[1]]
		if !ok {
			return &api.APIError{Status: 404, Message: "Container not found"}
		}
		resp = map[string]any{"info": info}
	case strings.HasPrefix(path, "/container/") && strings.HasSuffix(path, "/stats"):
		if statsErr != nil {
			return statsErr
		}
		resp = map[string]any{"stats": f.stats[parts[1]]}
	case strings.HasSuffix(path, "/logs"):
		resp = map[string]any{"logs": f.logs}
	case strings.HasSuffix(path, "/git/status"):
		resp = map[string]any{"status": "success", "output": "On branch main"}
	default:
		if actionErr != nil {
			return actionErr
		}
		resp = map[string]any{"status": "success"}
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (f *fakeClient) Containers(context.Context) ([]api.ContainerSummary, error) {
	if err := f.record("containers"); err != nil {
		return nil, err
	}
	return f.containers, nil
}

func (f *fakeClient) GlobalStats(context.Context) (api.GlobalStats, error) {
	if err := f.record("global"); err != nil {
		return api.GlobalStats{}, err
	}
	return f.global, nil
}

func (f *fakeClient) RpiStats(context.Context) (api.RpiStats, error) {
	if err := f.record("rpi"); err != nil {
		return api.RpiStats{}, err
	}
	return f.rpi, nil
}

func (f *fakeClient) GPIOStatus(context.Context) (map[int]api.GPIOPin, error) {
	if err := f.record("gpio"); err != nil {
		return nil, err
	}
	return f.pins, nil
}

func (f *fakeClient) Projects(context.Context) ([]api.Project, error) {
	if err := f.record("projects"); err != nil {
		return nil, err
	}
	return f.projects, nil
}

func (f *fakeClient) NetworkStatus(context.Context) (api.NetworkStatus, error) {
	if err := f.record("network"); err != nil {
		return api.NetworkStatus{}, err
	}
	return f.network, nil
}

func (f *fakeClient) ScanNetwork(_ context.Context, target string) ([]string, error) {
	if err := f.record("scan:" + target); err != nil {
		return nil, err
	}
	return f.hosts, nil
}

func (f *fakeClient) Services(context.Context) ([]api.Service, error) {
	if err := f.record("services"); err != nil {
		return nil, err
	}
	return f.services, nil
}

// testOptions uses long intervals so no tick fires during a test.
func testOptions() Options {
	return Options{
		Refresh: config.RefreshConfig{
			Global:    time.Hour,
			System:    time.Hour,
			Container: time.Hour,
		},
		DefaultTab: TabContainers,
		Mouse:      true,
		ScanTarget: "192.168.1.0/24",
		Host:       "raspberrypi.local",
		Logger:     logger.NewBufferLogger(),
	}
}

// cmdTimeout bounds how long run waits on a command. Tick commands sleep
// for their full interval and are never delivered.
const cmdTimeout = 150 * time.Millisecond

// run executes cmd and returns the messages it produced in time. Batches
// run concurrently and are flattened in order.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(cmdTimeout):
		return nil
	}

	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	}

	results := make([][]tea.Msg, len(batch))
	var wg sync.WaitGroup
	for i, c := range batch {
		wg.Add(1)
		go func(i int, c tea.Cmd) {
			defer wg.Done()
			results[i] = run(c)
		}(i, c)
	}
	wg.Wait()

	var out []tea.Msg
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// send delivers msg and then every message its commands produce, until the
// model settles. Spinner frames and timer messages are not fed back.
func send(m Model, msg tea.Msg) Model {
	queue := []tea.Msg{msg}
	first := true
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if !first {
			switch next.(type) {
			case spinner.TickMsg, pollTickMsg, toastExpiredMsg, tea.QuitMsg:
				continue
			}
		}
		first = false
		updated, cmd := m.Update(next)
		m = updated.(Model)
		queue = append(queue, run(cmd)...)
	}
	return m
}

// update delivers msg without running its commands.
func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

// started returns a sized model with the default tab loaded.
func started(t *testing.T, fc *fakeClient) Model {
	t.Helper()
	m := New(fc, testOptions())
	m = send(m, tea.WindowSizeMsg{Width: 120, Height: 50})
	return send(m, startMsg{})
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func leftClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

// plain strips styling from rendered output.
func plain(s string) string {
	return ansi.Strip(s)
}

func toastMessages(m Model) []string {
	var out []string
	for _, t := range m.Toasts() {
		out = append(out, fmt.Sprintf("%s: %s", t.Kind, t.Message))
	}
	return out
}
