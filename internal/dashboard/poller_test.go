package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loaded struct{ seq uint64 }

func countingFetch() (FetchFunc, func() []context.Context) {
	var mu sync.Mutex
	var ctxs []context.Context
	fetch := func(ctx context.Context, seq uint64) tea.Msg {
		mu.Lock()
		ctxs = append(ctxs, ctx)
		mu.Unlock()
		return loaded{seq: seq}
	}
	return fetch, func() []context.Context {
		mu.Lock()
		defer mu.Unlock()
		return append([]context.Context(nil), ctxs...)
	}
}

func resultOf(t *testing.T, cmd tea.Cmd) pollResultMsg {
	t.Helper()
	for _, msg := range run(cmd) {
		if r, ok := msg.(pollResultMsg); ok {
			return r
		}
	}
	t.Fatal("no poll result produced")
	return pollResultMsg{}
}

func TestPoller_StartRunsInitialFetch(t *testing.T) {
	p := NewPoller()
	fetch, _ := countingFetch()

	h, cmd := p.Start("containers", time.Hour, fetch)

	assert.True(t, h.Valid())
	assert.Equal(t, "containers", h.Owner)
	assert.Equal(t, h, p.Current())
	assert.True(t, p.Live())

	res := resultOf(t, cmd)
	assert.Equal(t, h.Gen, res.gen)
	assert.Equal(t, uint64(1), res.seq)
	assert.Equal(t, loaded{seq: 1}, res.payload)
	assert.True(t, p.Accept(res))
}

func TestPoller_OneShot(t *testing.T) {
	p := NewPoller()
	fetch, _ := countingFetch()

	h, _ := p.Start("gpio", 0, fetch)

	assert.False(t, p.Live())
	assert.Nil(t, p.Tick(pollTickMsg{gen: h.Gen}), "one-shot cycles never tick")
}

func TestPoller_StartReplacesCycle(t *testing.T) {
	p := NewPoller()
	fetch, ctxs := countingFetch()

	first, cmd := p.Start("containers", time.Hour, fetch)
	stale := resultOf(t, cmd)
	second, _ := p.Start("system", time.Hour, fetch)

	assert.NotEqual(t, first.Gen, second.Gen)
	assert.Equal(t, second, p.Current())
	require.Len(t, ctxs(), 1)
	assert.ErrorIs(t, ctxs()[0].Err(), context.Canceled)
	assert.False(t, p.Accept(stale))
	assert.Nil(t, p.Tick(pollTickMsg{gen: first.Gen}))
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := NewPoller()
	fetch, _ := countingFetch()
	h, cmd := p.Start("system", time.Hour, fetch)
	res := resultOf(t, cmd)
	ctx := p.Context()

	p.Stop()
	p.Stop()

	assert.False(t, p.Current().Valid())
	assert.False(t, p.Live())
	assert.Error(t, ctx.Err())
	assert.Error(t, p.Context().Err())
	assert.False(t, p.Accept(res))
	assert.Nil(t, p.Tick(pollTickMsg{gen: h.Gen}))
}

func TestPoller_SeqGuard(t *testing.T) {
	p := NewPoller()
	fetch, _ := countingFetch()
	h, _ := p.Start("containers", time.Hour, fetch)

	older := pollResultMsg{owner: h.Owner, gen: h.Gen, seq: 2}
	newer := pollResultMsg{owner: h.Owner, gen: h.Gen, seq: 3}

	assert.True(t, p.Accept(newer))
	assert.False(t, p.Accept(older), "results older than an applied one are dropped")
	assert.False(t, p.Accept(newer), "duplicates are dropped")
}

func TestPoller_RejectsForeignOwner(t *testing.T) {
	p := NewPoller()
	fetch, _ := countingFetch()
	h, _ := p.Start("containers", time.Hour, fetch)

	assert.False(t, p.Accept(pollResultMsg{owner: "system", gen: h.Gen, seq: 1}))
}

func TestPoller_TickIssuesNextSeq(t *testing.T) {
	p := NewPoller()
	fetch, _ := countingFetch()
	h, cmd := p.Start("system", time.Hour, fetch)
	require.True(t, p.Accept(resultOf(t, cmd)))

	res := resultOf(t, p.Tick(pollTickMsg{gen: h.Gen}))

	assert.Equal(t, uint64(2), res.seq)
	assert.True(t, p.Accept(res))
}

func TestHandle_ZeroIsInvalid(t *testing.T) {
	assert.False(t, Handle{}.Valid())
	assert.True(t, Handle{Owner: "x", Gen: 1}.Valid())
}
