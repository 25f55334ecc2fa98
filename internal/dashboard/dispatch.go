package dashboard

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pidash/internal/action"
	"github.com/rileyhilliard/pidash/internal/api"
)

// actionDoneMsg reports the result of a dispatched action.
type actionDoneMsg struct {
	desc    action.Descriptor
	outcome action.Outcome
	err     error
}

// detailsLoadedMsg is one details poll: info, plus stats while running.
type detailsLoadedMsg struct {
	ref      action.Ref
	info     *api.ContainerInfo
	stats    *api.ContainerStats
	err      error
	statsErr error
}

// outputLoadedMsg fills the logs modal, which also shows git status.
type outputLoadedMsg struct {
	desc action.Descriptor
	text string
	err  error
}

// scanLoadedMsg carries network scan results.
type scanLoadedMsg struct {
	target string
	hosts  []string
	err    error
}

// pendingKey identifies an in-flight action per resource.
func pendingKey(ref action.Ref) string {
	return string(ref.Kind) + "/" + ref.ID
}

// requestAction is where keys and clicks turn into actions. Read actions
// open their modal, disruptive ones go through confirmation, the rest are
// sent straight away.
func (m *Model) requestAction(ref action.Ref, a action.Action) tea.Cmd {
	desc, err := action.Lookup(ref, a)
	if err != nil {
		return m.notify(err.Error(), ToastError)
	}

	switch a {
	case action.Info, action.Stats:
		return m.openDetails(ref)
	case action.Logs, action.Status:
		return m.openOutput(desc)
	case action.Toggle:
		pin, ok := m.pin(ref)
		if !ok {
			return m.notify("Unknown GPIO pin "+ref.ID, ToastError)
		}
		if !pin.IsOutput() {
			return m.notify(fmt.Sprintf("GPIO %s isn't an output pin", ref.ID), ToastWarning)
		}
		desc = desc.WithToggle(pin.Value)
	}

	if desc.NeedsConfirm() {
		m.confirm = &confirmState{desc: desc}
		m.view.Modal.Open(ModalConfirm)
		return nil
	}
	return m.perform(desc)
}

func (m *Model) pin(ref action.Ref) (api.GPIOPin, bool) {
	for n, p := range m.data.pins {
		if fmt.Sprint(n) == ref.ID {
			return p, true
		}
	}
	return api.GPIOPin{}, false
}

// confirmState holds the action awaiting confirmation.
type confirmState struct {
	desc action.Descriptor
}

// confirmPending sends the confirmed action and closes the prompt.
func (m *Model) confirmPending() tea.Cmd {
	if m.confirm == nil {
		return m.closeTop()
	}
	desc := m.confirm.desc
	m.confirm = nil
	return tea.Batch(m.closeTop(), m.perform(desc))
}

// cancelPending closes the prompt without sending anything.
func (m *Model) cancelPending() tea.Cmd {
	m.confirm = nil
	return m.closeTop()
}

// perform dispatches a mutating action. A resource with an action already
// in flight ignores further requests until it settles.
func (m *Model) perform(desc action.Descriptor) tea.Cmd {
	k := pendingKey(desc.Ref)
	if _, busy := m.pending[k]; busy {
		return m.notify(fmt.Sprintf("%s is busy", desc.Ref.Name()), ToastWarning)
	}
	m.pending[k] = desc.Action
	m.log.Debug("dispatch %s %s (%s %s)", desc.Action, desc.Ref, desc.Method, desc.Path)

	d := m.dispatcher
	return func() tea.Msg {
		out, err := d.Perform(context.Background(), desc)
		return actionDoneMsg{desc: desc, outcome: out, err: err}
	}
}

// actionDone settles an action. Failures leave the shown state as it was;
// successes refresh the list the resource belongs to.
func (m *Model) actionDone(msg actionDoneMsg) tea.Cmd {
	delete(m.pending, pendingKey(msg.desc.Ref))

	if msg.err != nil {
		var ae *action.ActionError
		if errors.As(msg.err, &ae) && ae.Kind == action.ErrApplication {
			return m.notify(ae.Error(), ToastError)
		}
		return m.notify("Error: "+msg.err.Error(), ToastError)
	}

	cmds := []tea.Cmd{m.notify(msg.outcome.Message(), ToastSuccess)}
	switch {
	case m.view.Modal.Has(ModalDetails) && m.view.ActiveResource != nil &&
		pendingKey(*m.view.ActiveResource) == pendingKey(msg.desc.Ref):
		cmds = append(cmds, m.startDetailsPoll(*m.view.ActiveResource))
	case tabForKind(msg.desc.Ref.Kind) == m.view.ActiveTab:
		if m.view.Modal.IsOpen() {
			m.stale[m.view.ActiveTab] = true
		} else {
			cmds = append(cmds, m.Activate(m.view.ActiveTab))
		}
	}
	return tea.Batch(cmds...)
}

// IsPending reports whether ref has an action in flight.
func (m Model) IsPending(ref action.Ref) bool {
	_, ok := m.pending[pendingKey(ref)]
	return ok
}

func detailsOwner(ref action.Ref) string {
	return "details:" + ref.ID
}

// openDetails shows a container's details. The details poll replaces the
// tab poll until the modal closes.
func (m *Model) openDetails(ref action.Ref) tea.Cmd {
	r := ref
	m.view.ActiveResource = &r
	m.details = detailsState{ref: ref, loading: true}
	m.view.Modal.Open(ModalDetails)
	m.viewport.GotoTop()
	m.refreshViewport()
	return m.startDetailsPoll(ref)
}

// startDetailsPoll (re)starts the details cycle. Each poll fetches info and,
// while the container runs, stats. The first result for a stopped container
// ends the cycle.
func (m *Model) startDetailsPoll(ref action.Ref) tea.Cmd {
	d := m.dispatcher
	fetch := func(ctx context.Context, _ uint64) tea.Msg {
		msg := detailsLoadedMsg{ref: ref}
		infoDesc, _ := action.Lookup(ref, action.Info)
		out, err := d.Perform(ctx, infoDesc)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.info = out.Info
		if out.Info != nil && out.Info.IsRunning() {
			statsDesc, _ := action.Lookup(ref, action.Stats)
			sout, err := d.Perform(ctx, statsDesc)
			if err != nil {
				msg.statsErr = err
			} else {
				msg.stats = sout.Stats
			}
		}
		return msg
	}
	h, cmd := m.poller.Start(detailsOwner(ref), m.opts.Refresh.Container, fetch)
	m.view.Poll = h
	return cmd
}

func (m *Model) applyDetails(msg detailsLoadedMsg) tea.Cmd {
	if m.view.ActiveResource == nil || m.view.ActiveResource.ID != msg.ref.ID {
		return nil
	}
	m.details.loading = false
	if msg.err != nil {
		m.poller.Stop()
		m.view.Poll = Handle{}
		m.details.err = msg.err.Error()
		m.refreshViewport()
		return m.notify("Error: "+msg.err.Error(), ToastError)
	}
	m.details.err = ""
	if msg.info != nil {
		m.details.info = msg.info
	}
	m.details.statsErr = ""
	if msg.statsErr != nil {
		m.log.Warn("stats for %s: %v", msg.ref.Name(), msg.statsErr)
		m.details.statsErr = msg.statsErr.Error()
	}
	if msg.stats != nil {
		m.details.stats = msg.stats
		m.history.Push(msg.ref.ID, msg.stats.CPUPercent, msg.stats.MemPercent)
	} else if msg.info != nil && !msg.info.IsRunning() {
		m.details.stats = nil
	}
	if msg.info != nil && !msg.info.IsRunning() {
		// Nothing live to show for a stopped container.
		m.poller.Stop()
		m.view.Poll = Handle{}
	}
	m.markUpdated()
	m.refreshViewport()
	return nil
}

// openOutput loads container logs or git status into the logs modal.
func (m *Model) openOutput(desc action.Descriptor) tea.Cmd {
	m.output = outputState{desc: desc, loading: true}
	m.view.Modal.Open(ModalLogs)
	m.viewport.GotoTop()
	m.refreshViewport()

	d := m.dispatcher
	fetch := func(ctx context.Context, _ uint64) tea.Msg {
		out, err := d.Perform(ctx, desc)
		if err != nil {
			return outputLoadedMsg{desc: desc, err: err}
		}
		text := out.Result.Output
		if out.Logs != nil {
			text = *out.Logs
		}
		return outputLoadedMsg{desc: desc, text: text}
	}
	h, cmd := m.poller.Start("output:"+pendingKey(desc.Ref), 0, fetch)
	m.view.Poll = h
	return cmd
}

func (m *Model) applyOutput(msg outputLoadedMsg) tea.Cmd {
	m.output.loading = false
	if msg.err != nil {
		m.output.err = msg.err.Error()
		m.refreshViewport()
		return m.notify("Error: "+msg.err.Error(), ToastError)
	}
	m.output.text = msg.text
	m.output.err = ""
	m.refreshViewport()
	m.viewport.GotoBottom()
	return nil
}

// openScan sweeps the configured CIDR and shows live hosts.
func (m *Model) openScan() tea.Cmd {
	target := m.opts.ScanTarget
	m.scan = scanState{target: target, loading: true}
	m.view.Modal.Open(ModalScan)
	m.viewport.GotoTop()
	m.refreshViewport()

	c := m.client
	fetch := func(ctx context.Context, _ uint64) tea.Msg {
		hosts, err := c.ScanNetwork(ctx, target)
		return scanLoadedMsg{target: target, hosts: hosts, err: err}
	}
	h, cmd := m.poller.Start("scan", 0, fetch)
	m.view.Poll = h
	return cmd
}

func (m *Model) applyScan(msg scanLoadedMsg) tea.Cmd {
	m.scan.loading = false
	if msg.err != nil {
		m.scan.err = msg.err.Error()
		m.refreshViewport()
		return m.notify("Scan failed: "+msg.err.Error(), ToastError)
	}
	m.scan.hosts = msg.hosts
	m.scan.err = ""
	m.refreshViewport()
	return m.notify(fmt.Sprintf("Found %d active hosts", len(msg.hosts)), ToastInfo)
}

// closeAll closes every modal, releases the details resource and hands the
// poller back to the active tab.
func (m *Model) closeAll() tea.Cmd {
	m.view.Modal.CloseAll()
	m.view.ActiveResource = nil
	m.confirm = nil
	return m.resumePoll()
}

// closeTop closes the top modal only.
func (m *Model) closeTop() tea.Cmd {
	closed := m.view.Modal.Active()
	m.view.Modal.Close()
	if closed == ModalConfirm {
		m.confirm = nil
	}
	if !m.view.Modal.Has(ModalDetails) {
		m.view.ActiveResource = nil
	}
	m.refreshViewport()
	return m.resumePoll()
}

// resumePoll gives the poller to whatever is now showing: the details
// modal if it is still open, otherwise the active tab. A stale tab reloads
// even if it still owns the poller.
func (m *Model) resumePoll() tea.Cmd {
	owner := m.poller.Current().Owner
	if m.view.Modal.Has(ModalDetails) && m.view.ActiveResource != nil {
		if m.view.Modal.Active() == ModalDetails && owner != detailsOwner(*m.view.ActiveResource) {
			return m.startDetailsPoll(*m.view.ActiveResource)
		}
		return nil
	}
	if m.view.Modal.IsOpen() {
		return nil
	}
	if owner != m.view.ActiveTab.String() || m.stale[m.view.ActiveTab] {
		return m.Activate(m.view.ActiveTab)
	}
	return nil
}
