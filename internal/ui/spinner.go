package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// spinnerFrames animate a pending request.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows a label with an animated glyph while a request is in
// flight, then replaces it with a final status line. On a non-terminal
// writer only the final line is written.
type Spinner struct {
	mu       sync.Mutex
	out      io.Writer
	label    string
	animate  bool
	start    time.Time
	frame    int
	lastLen  int
	stop     chan struct{}
	done     chan struct{}
	finished bool
}

// NewSpinner creates a spinner that writes to out.
func NewSpinner(out io.Writer, label string) *Spinner {
	return &Spinner{out: out, label: label, animate: IsTerminal(out)}
}

// Start begins the animation. Calling it twice has no effect.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil || s.finished {
		return
	}
	s.start = time.Now()
	if !s.animate {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
}

func (s *Spinner) loop(stop, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(spinnerInterval)
	defer t.Stop()
	s.render()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	glyph := lipgloss.NewStyle().Foreground(ColorInfo).Render(spinnerFrames[s.frame])
	s.frame = (s.frame + 1) % len(spinnerFrames)
	line := fmt.Sprintf("%s %s…", glyph, s.label)
	s.clearLocked()
	fmt.Fprint(s.out, line)
	s.lastLen = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.lastLen > 0 {
		fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.lastLen)+"\r")
		s.lastLen = 0
	}
}

// Success stops the spinner and prints msg with a check mark.
func (s *Spinner) Success(msg string) {
	s.finish(SuccessStyle.Render(SymbolSuccess), msg)
}

// Fail stops the spinner and prints msg with a cross.
func (s *Spinner) Fail(msg string) {
	s.finish(ErrorStyle.Render(SymbolFail), msg)
}

func (s *Spinner) finish(glyph, msg string) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	stop, done := s.stop, s.done
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	if msg == "" {
		msg = s.label
	}
	fmt.Fprintf(s.out, "%s %s %s\n", glyph, msg, MutedStyle.Render(formatElapsed(s.Elapsed())))
}

// Elapsed is the time since Start.
func (s *Spinner) Elapsed() time.Duration {
	if s.start.IsZero() {
		return 0
	}
	return time.Since(s.start)
}

// formatElapsed renders d as "0.05s" below a tenth of a second, else "1.2s".
func formatElapsed(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
