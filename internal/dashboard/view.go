package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/pidash/internal/action"
	"github.com/rileyhilliard/pidash/internal/format"
)

// Screen layout: header on line 0, tab bar on line 1, content from
// contentTop, footer on the last line. Toasts stack from toastTop.
const (
	contentTop    = 3
	toastTop      = 2
	maxToastWidth = 48
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

func (m Model) screenSize() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	w, h := m.screenSize()

	var screen string
	if m.view.Modal.IsOpen() {
		screen = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.renderModal(),
			lipgloss.WithWhitespaceChars(" "))
	} else {
		var b strings.Builder
		b.WriteString(m.renderHeader())
		b.WriteString("\n")
		b.WriteString(m.renderTabBar())
		b.WriteString("\n\n")
		b.WriteString(m.renderContent())
		body := b.String()

		lines := strings.Split(body, "\n")
		for len(lines) < h-1 {
			lines = append(lines, "")
		}
		lines = lines[:h-1]
		lines = append(lines, m.renderFooter())
		screen = strings.Join(lines, "\n")
	}
	return m.overlayToasts(screen, w)
}

// renderHeader renders the title, host and freshness line.
func (m Model) renderHeader() string {
	w, _ := m.screenSize()
	title := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render("pidash")

	host := m.opts.Host
	if host == "" {
		host = "local"
	}
	info := fmt.Sprintf(" | %s | updated %s", host, format.Ago(m.lastUpdate))
	if m.loading[m.view.ActiveTab] {
		info += " | " + m.spinner.View() + " loading"
	}
	stats := lipgloss.NewStyle().Foreground(ColorTextSecondary).Render(info)
	return HeaderStyle.Width(w).MaxWidth(w).Render(title + stats)
}

// tabLabel is the text drawn for t in the tab bar.
func tabLabel(t Tab) string {
	return fmt.Sprintf("%d %s", int(t)+1, t.Title())
}

// tabSpans returns the start column and width of every tab in the bar.
func tabSpans() []rect {
	spans := make([]rect, 0, len(Tabs))
	x := 0
	for _, t := range Tabs {
		w := lipgloss.Width(TabStyle.Render(tabLabel(t)))
		spans = append(spans, rect{x: x, y: 1, w: w, h: 1})
		x += w
	}
	return spans
}

func (m Model) renderTabBar() string {
	parts := make([]string, 0, len(Tabs))
	for _, t := range Tabs {
		style := TabStyle
		if t == m.view.ActiveTab {
			style = TabActiveStyle
		}
		parts = append(parts, style.Render(tabLabel(t)))
	}
	return strings.Join(parts, "")
}

// listPrefix is what the active list tab draws above its list section.
func (m Model) listPrefix(t Tab, width int) string {
	var parts []string
	if t == TabContainers {
		parts = append(parts, RenderSummary(m.data.global, width))
	}
	if text := m.errs[t]; text != "" {
		parts = append(parts, ErrorTextStyle.Render(GlyphError+" "+ansi.Truncate(text, width-2, "…")))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n") + "\n"
}

// listRowsTop is the screen line of the first list row on tab t.
func (m Model) listRowsTop(t Tab) int {
	w, _ := m.screenSize()
	prefix := m.listPrefix(t, w)
	top := contentTop
	if prefix != "" {
		top += lipgloss.Height(prefix) - 1
	}
	// Section header line.
	return top + 1
}

// maxRows is how many list rows fit between the first row and the footer.
func (m Model) maxRows(t Tab) int {
	_, h := m.screenSize()
	// Section footer and app footer.
	n := h - m.listRowsTop(t) - 2
	if n < 1 {
		n = 1
	}
	return n
}

// busySet returns the ids of kind with an action in flight.
func (m Model) busySet(kind action.Kind) map[string]bool {
	busy := make(map[string]bool)
	prefix := string(kind) + "/"
	for k := range m.pending {
		if strings.HasPrefix(k, prefix) {
			busy[strings.TrimPrefix(k, prefix)] = true
		}
	}
	return busy
}

// renderContent renders the active tab.
func (m Model) renderContent() string {
	w, _ := m.screenSize()
	t := m.view.ActiveTab
	sel := m.selected[t]

	switch t {
	case TabContainers, TabGPIO, TabProjects, TabServices:
		var list string
		switch t {
		case TabContainers:
			list = RenderContainers(m.data.containers, sel, m.busySet(action.KindContainer), m.maxRows(t), w)
		case TabGPIO:
			if !m.data.gpioLoaded && m.loading[t] {
				list = Section("GPIO", "", []string{m.spinner.View() + " Loading pins…"}, w)
			} else {
				list = RenderGPIO(m.data.pins, sel, m.busySet(action.KindGPIO), m.maxRows(t), w)
			}
		case TabProjects:
			list = RenderProjects(m.data.projects, sel, m.busySet(action.KindProject), m.maxRows(t), w)
		case TabServices:
			list = RenderServices(m.data.services, sel, m.busySet(action.KindService), m.maxRows(t), w)
		}
		return m.listPrefix(t, w) + list

	case TabSystem:
		body := RenderSystem(SystemView{
			Global:  m.data.global,
			Rpi:     m.data.rpi,
			CPUHist: m.history.CPU(SystemSeries, DefaultHistorySize),
			MemHist: m.history.Mem(SystemSeries, DefaultHistorySize),
			RxRate:  m.data.rxRate,
			TxRate:  m.data.txRate,
		}, w)
		return m.errorLine(t, w) + body

	case TabNetwork:
		return m.errorLine(t, w) + RenderNetwork(m.data.network, m.opts.ScanTarget, w)
	}
	return ""
}

func (m Model) errorLine(t Tab, width int) string {
	if text := m.errs[t]; text != "" {
		return ErrorTextStyle.Render(GlyphError+" "+ansi.Truncate(text, width-2, "…")) + "\n"
	}
	return ""
}

// renderFooter renders the key hints for the active tab.
func (m Model) renderFooter() string {
	w, _ := m.screenSize()
	hints := []string{"q quit", "? help", "1-6 tabs", "r refresh"}
	switch m.view.ActiveTab {
	case TabContainers:
		hints = append(hints, "enter details", "l logs", "s/t/R start/stop/restart")
	case TabServices:
		hints = append(hints, "s/t/R start/stop/restart")
	case TabProjects:
		hints = append(hints, "g status", "p pull")
	case TabGPIO:
		hints = append(hints, "space toggle")
	case TabNetwork:
		hints = append(hints, "S scan")
	}
	return FooterStyle.MaxWidth(w).Render(strings.Join(hints, " | "))
}

// renderModal renders the top modal panel.
func (m Model) renderModal() string {
	w, h := m.modalSize()
	switch m.view.Modal.Active() {
	case ModalConfirm:
		return m.renderConfirm()
	case ModalHelp:
		return m.renderHelp()
	case ModalDetails:
		title := "Container"
		if ref := m.view.ActiveResource; ref != nil {
			title = ref.Name()
		}
		if m.details.info != nil {
			title = m.details.info.Name
		}
		return m.contentPanel(title, m.details.loading, m.details.err,
			"Esc close | l logs | s/t/R start/stop/restart | PgUp/PgDn scroll", w, h)
	case ModalLogs:
		title := "Logs: " + m.output.desc.Ref.Name()
		if m.output.desc.Action == action.Status {
			title = "Git status: " + m.output.desc.Ref.Name()
		}
		return m.contentPanel(title, m.output.loading, m.output.err, "Esc close | PgUp/PgDn scroll", w, h)
	case ModalScan:
		return m.contentPanel("Network scan: "+m.scan.target, m.scan.loading, m.scan.err,
			"Esc close | PgUp/PgDn scroll", w, h)
	}
	return ""
}

// contentPanel frames the viewport with a title and a hint line.
func (m Model) contentPanel(title string, loading bool, errText, hint string, w, h int) string {
	inner := w - 6
	head := TitleStyle.Render(ansi.Truncate(title, inner, "…"))
	var body string
	switch {
	case loading:
		body = m.spinner.View() + " Loading…"
	case errText != "":
		body = ErrorTextStyle.Render(GlyphError + " " + errText)
	default:
		body = m.viewport.View()
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		head,
		"",
		lipgloss.NewStyle().Height(m.viewport.Height).MaxHeight(m.viewport.Height).Render(body),
		"",
		MutedStyle.Render(ansi.Truncate(hint, inner, "…")),
	)
	return ModalStyle.Width(w - 2).Height(h - 2).Render(content)
}

func (m Model) renderConfirm() string {
	if m.confirm == nil {
		return ""
	}
	desc := m.confirm.desc
	w, _ := m.modalSize()
	if w > 60 {
		w = 60
	}
	warn := lipgloss.NewStyle().Foreground(ColorWarning)
	lines := []string{TitleStyle.Render(desc.ConfirmTitle()), ""}
	for _, l := range strings.Split(action.Warning(desc.Action), "\n") {
		lines = append(lines, warn.Render(l))
	}
	lines = append(lines, "", MutedStyle.Render("y / Enter confirm | n / q cancel | Esc close all"))
	return ConfirmModalStyle.Width(w - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// modalRect is where the top modal panel sits on screen.
func (m Model) modalRect() rect {
	w, h := m.screenSize()
	panel := m.renderModal()
	pw, ph := lipgloss.Width(panel), lipgloss.Height(panel)
	return rect{x: (w - pw) / 2, y: (h - ph) / 2, w: pw, h: ph}
}

// renderToast renders one notification line.
func renderToast(t Toast) string {
	var glyph string
	var color lipgloss.Color
	switch t.Kind {
	case ToastSuccess:
		glyph, color = GlyphSuccess, ColorHealthy
	case ToastWarning:
		glyph, color = GlyphWarning, ColorWarning
	case ToastError:
		glyph, color = GlyphError, ColorCritical
	default:
		glyph, color = GlyphInfo, ColorInfo
	}
	msg := strings.ReplaceAll(t.Message, "\n", " ")
	msg = ansi.Truncate(msg, maxToastWidth-4, "…")
	return lipgloss.NewStyle().
		Foreground(color).
		Background(ColorSurfaceBg).
		Padding(0, 1).
		Render(glyph + " " + msg)
}

// toastRects returns the screen rectangle of each visible toast.
func (m Model) toastRects() []rect {
	w, _ := m.screenSize()
	items := m.toasts.Items()
	rects := make([]rect, 0, len(items))
	for i, t := range items {
		tw := lipgloss.Width(renderToast(t))
		rects = append(rects, rect{x: w - tw, y: toastTop + i, w: tw, h: 1})
	}
	return rects
}

// overlayToasts draws the toasts right-aligned over screen.
func (m Model) overlayToasts(screen string, width int) string {
	items := m.toasts.Items()
	if len(items) == 0 {
		return screen
	}
	lines := strings.Split(screen, "\n")
	for i, t := range items {
		y := toastTop + i
		if y >= len(lines) {
			break
		}
		toast := renderToast(t)
		left := width - lipgloss.Width(toast)
		if left < 0 {
			left = 0
		}
		base := ansi.Truncate(lines[y], left, "")
		if pad := left - lipgloss.Width(base); pad > 0 {
			base += strings.Repeat(" ", pad)
		}
		lines[y] = base + toast
	}
	return strings.Join(lines, "\n")
}
