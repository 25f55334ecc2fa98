package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FetchFunc loads data for one poll. seq is 1 for the initial load and
// increments with every tick. The returned message is delivered to Update
// wrapped in a pollResultMsg.
type FetchFunc func(ctx context.Context, seq uint64) tea.Msg

// Handle identifies a poll cycle. The zero Handle means no cycle.
type Handle struct {
	Owner string
	Gen   uint64
}

// Valid reports whether h refers to a cycle.
func (h Handle) Valid() bool {
	return h.Gen != 0
}

// pollTickMsg asks the poller to fetch again.
type pollTickMsg struct {
	gen uint64
}

// pollResultMsg carries a fetch result tagged with the cycle that issued it.
type pollResultMsg struct {
	owner   string
	gen     uint64
	seq     uint64
	payload tea.Msg
}

// Poller owns at most one cycle at a time. Each cycle has its own context,
// cancelled on Stop, and a generation number carried by every tick and
// result so stale messages can be recognised.
type Poller struct {
	gen      uint64
	owner    string
	interval time.Duration
	fetch    FetchFunc
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool

	issued  uint64
	applied uint64
}

// NewPoller returns an idle poller.
func NewPoller() *Poller {
	return &Poller{}
}

// Start stops any prior cycle and begins a new one. The returned command
// runs the initial fetch and, when interval > 0, schedules the first tick.
// An interval of 0 makes a one-shot cycle that only loads once.
func (p *Poller) Start(owner string, interval time.Duration, fetch FetchFunc) (Handle, tea.Cmd) {
	p.Stop()

	p.gen++
	p.owner = owner
	p.interval = interval
	p.fetch = fetch
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.running = true
	p.issued, p.applied = 0, 0

	h := Handle{Owner: owner, Gen: p.gen}
	cmds := []tea.Cmd{p.fetchCmd()}
	if interval > 0 {
		cmds = append(cmds, p.tickCmd())
	}
	return h, tea.Batch(cmds...)
}

// Stop cancels the live cycle. In-flight requests abort and any message
// they still produce is discarded. Calling Stop again is a no-op.
func (p *Poller) Stop() {
	if !p.running {
		return
	}
	p.cancel()
	p.running = false
	p.fetch = nil
	// Bump so ticks and results of the stopped cycle no longer match.
	p.gen++
}

// Current returns the live handle, or the zero Handle when stopped.
func (p *Poller) Current() Handle {
	if !p.running {
		return Handle{}
	}
	return Handle{Owner: p.owner, Gen: p.gen}
}

// Live reports whether a repeating cycle is running.
func (p *Poller) Live() bool {
	return p.running && p.interval > 0
}

// Context returns the live cycle's context, or a cancelled one when stopped.
func (p *Poller) Context() context.Context {
	if !p.running {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return p.ctx
}

// Tick handles a pollTickMsg: it issues the next fetch and schedules the
// following tick at a fixed cadence. Stale ticks return nil.
func (p *Poller) Tick(msg pollTickMsg) tea.Cmd {
	if !p.running || msg.gen != p.gen || p.interval <= 0 {
		return nil
	}
	return tea.Batch(p.fetchCmd(), p.tickCmd())
}

// Accept reports whether a result may be applied. Results from stopped or
// replaced cycles are rejected, as are results older than one already
// applied within the live cycle.
func (p *Poller) Accept(msg pollResultMsg) bool {
	if !p.running || msg.gen != p.gen || msg.owner != p.owner {
		return false
	}
	if msg.seq <= p.applied {
		return false
	}
	p.applied = msg.seq
	return true
}

func (p *Poller) fetchCmd() tea.Cmd {
	p.issued++
	seq, gen, owner := p.issued, p.gen, p.owner
	ctx, fetch := p.ctx, p.fetch
	return func() tea.Msg {
		return pollResultMsg{owner: owner, gen: gen, seq: seq, payload: fetch(ctx, seq)}
	}
}

func (p *Poller) tickCmd() tea.Cmd {
	gen := p.gen
	return tea.Tick(p.interval, func(time.Time) tea.Msg {
		return pollTickMsg{gen: gen}
	})
}
