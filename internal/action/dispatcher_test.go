package action

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher(t *testing.T, handler http.HandlerFunc) (*Dispatcher, *logger.BufferLogger) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := api.New(srv.URL)
	require.NoError(t, err)
	log := logger.NewBufferLogger()
	return NewDispatcher(client, log), log
}

func TestPerform_Mutation(t *testing.T) {
	var gotMethod, gotPath string
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_, _ = io.WriteString(w, `{"success":true,"status":"started"}`)
	})

	desc, err := Lookup(Ref{Kind: KindContainer, ID: "abc", Label: "web"}, Start)
	require.NoError(t, err)

	out, err := d.Perform(context.Background(), desc)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/container/abc/start", gotPath)
	assert.Equal(t, "started", out.Result.Status)
	assert.Equal(t, "Container web started", out.Message())
}

func TestPerform_ServerMessageWins(t *testing.T) {
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"message":"Service nginx restarted"}`)
	})

	desc, err := Lookup(Ref{Kind: KindService, ID: "nginx"}, Restart)
	require.NoError(t, err)

	out, err := d.Perform(context.Background(), desc)
	require.NoError(t, err)
	assert.Equal(t, "Service nginx restarted", out.Message())
}

func TestPerform_ApplicationError(t *testing.T) {
	d, log := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"success":false,"error":"container already stopped"}`)
	})

	desc, err := Lookup(Ref{Kind: KindContainer, ID: "abc"}, Stop)
	require.NoError(t, err)

	_, err = d.Perform(context.Background(), desc)
	var ae *ActionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, ErrApplication, ae.Kind)
	assert.Equal(t, "container already stopped", ae.Error())
	assert.True(t, log.HasLevel("debug"))
}

func TestPerform_Malformed(t *testing.T) {
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})

	desc, err := Lookup(PinRef(4), Toggle)
	require.NoError(t, err)

	_, err = d.Perform(context.Background(), desc.WithToggle(0))
	var ae *ActionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, ErrMalformed, ae.Kind)
	assert.ErrorIs(t, err, api.ErrMalformed)
}

func TestPerform_Transport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := api.New(base)
	require.NoError(t, err)
	d := NewDispatcher(client, nil)

	desc, err := Lookup(Ref{Kind: KindProject, ID: "site"}, Pull)
	require.NoError(t, err)

	_, err = d.Perform(context.Background(), desc)
	var ae *ActionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, ErrTransport, ae.Kind)
	assert.Contains(t, ae.Error(), "pull site failed")
}

func TestPerform_NilClient(t *testing.T) {
	desc, err := Lookup(Ref{Kind: KindContainer, ID: "abc"}, Start)
	require.NoError(t, err)

	_, err = NewDispatcher(nil, nil).Perform(context.Background(), desc)
	var ae *ActionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, ErrTransport, ae.Kind)
}

func TestPerform_ReadPayloads(t *testing.T) {
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/container/123/info":
			_, _ = io.WriteString(w, `{"success":true,"info":{"name":"web","status":"running","ports":{},"volumes":[],"env":[]}}`)
		case "/container/123/logs":
			_, _ = io.WriteString(w, `{"success":true,"logs":"2024-01-01T00:00:00Z hello\n"}`)
		case "/container/123/stats":
			_, _ = io.WriteString(w, `{"success":true,"stats":{"cpu_percent":1.5,"mem_usage":1048576,"mem_limit":4194304,"mem_percent":25}}`)
		case "/api/projects/site/git/status":
			_, _ = io.WriteString(w, `{"success":true,"output":"On branch main"}`)
		default:
			http.NotFound(w, r)
		}
	})
	ref := Ref{Kind: KindContainer, ID: "123"}

	info, err := Lookup(ref, Info)
	require.NoError(t, err)
	out, err := d.Perform(context.Background(), info)
	require.NoError(t, err)
	require.NotNil(t, out.Info)
	assert.Equal(t, "web", out.Info.Name)
	assert.Empty(t, out.Info.Ports)

	logs, err := Lookup(ref, Logs)
	require.NoError(t, err)
	out, err = d.Perform(context.Background(), logs)
	require.NoError(t, err)
	require.NotNil(t, out.Logs)
	assert.Contains(t, *out.Logs, "hello")

	stats, err := Lookup(ref, Stats)
	require.NoError(t, err)
	out, err = d.Perform(context.Background(), stats)
	require.NoError(t, err)
	require.NotNil(t, out.Stats)
	assert.Equal(t, 25.0, out.Stats.MemPercent)

	status, err := Lookup(Ref{Kind: KindProject, ID: "site"}, Status)
	require.NoError(t, err)
	out, err = d.Perform(context.Background(), status)
	require.NoError(t, err)
	assert.Equal(t, "On branch main", out.Result.Output)
}

func TestPerform_InfoMissingPayload(t *testing.T) {
	d, _ := newDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	desc, err := Lookup(Ref{Kind: KindContainer, ID: "123"}, Info)
	require.NoError(t, err)

	_, err = d.Perform(context.Background(), desc)
	var ae *ActionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, ErrMalformed, ae.Kind)
}

type panicDoer struct{}

func (panicDoer) Do(context.Context, string, string, any, any) error {
	panic("boom")
}

func TestPerform_NeverPanics(t *testing.T) {
	desc, err := Lookup(Ref{Kind: KindContainer, ID: "abc"}, Start)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		_, err = NewDispatcher(panicDoer{}, nil).Perform(context.Background(), desc)
	})
	var ae *ActionError
	require.True(t, errors.As(err, &ae))
}
