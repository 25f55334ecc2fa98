package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rileyhilliard/pidash/internal/action"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, buf *bytes.Buffer) JSONEnvelope {
	t.Helper()
	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	return env
}

func TestWriteJSONSuccess(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONSuccess(&buf, map[string]int{"running": 3}))

	env := decodeEnvelope(t, &buf)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["running"])
}

func TestWriteJSONFromError(t *testing.T) {
	var buf bytes.Buffer
	err := errors.New(errors.ErrSSH, "Tunnel failed", "Check ssh works")
	require.NoError(t, WriteJSONFromError(&buf, err))

	env := decodeEnvelope(t, &buf)
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeSSHFailed, env.Error.Code)
	assert.Equal(t, "Tunnel failed", env.Error.Message)
	assert.Equal(t, "Check ssh works", env.Error.Suggestion)
}

func TestWriteJSON_OmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONFromError(&buf, fmt.Errorf("plain")))
	assert.NotContains(t, buf.String(), `"data"`)
	assert.NotContains(t, buf.String(), `"suggestion"`)
}

func TestErrorToJSON(t *testing.T) {
	desc, err := action.Lookup(action.Ref{Kind: action.KindContainer, ID: "abc", Label: "web"}, action.Restart)
	require.NoError(t, err)

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"config not found", errors.New(errors.ErrConfig, "Config file not found", ""), ErrCodeConfigNotFound},
		{"config invalid", errors.New(errors.ErrConfig, "api.url has no host", ""), ErrCodeConfigInvalid},
		{"network", errors.New(errors.ErrNetwork, "down", ""), ErrCodeAPIUnreachable},
		{"action code", errors.New(errors.ErrAction, "No container named x", ""), ErrCodeActionFailed},
		{"action application", &action.ActionError{Kind: action.ErrApplication, Desc: desc, Err: &api.APIError{Status: 500, Message: "no such container"}}, ErrCodeActionFailed},
		{"action transport", &action.ActionError{Kind: action.ErrTransport, Desc: desc, Err: fmt.Errorf("refused")}, ErrCodeAPIUnreachable},
		{"action malformed", &action.ActionError{Kind: action.ErrMalformed, Desc: desc, Err: api.ErrMalformed}, ErrCodeAPIMalformed},
		{"api error", &api.APIError{Status: 500, Message: "boom"}, ErrCodeAPIError},
		{"malformed", fmt.Errorf("decode: %w", api.ErrMalformed), ErrCodeAPIMalformed},
		{"transport", &api.TransportError{Method: "GET", Path: "/api/stats/global", Err: fmt.Errorf("refused")}, ErrCodeAPIUnreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorToJSON(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestErrorToJSON_Nil(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))
}

func TestErrorToJSON_ApplicationMessageVerbatim(t *testing.T) {
	desc, err := action.Lookup(action.Ref{Kind: action.KindService, ID: "nginx"}, action.Stop)
	require.NoError(t, err)
	got := ErrorToJSON(&action.ActionError{Kind: action.ErrApplication, Desc: desc, Err: &api.APIError{Status: 500, Message: "Unit nginx.service not loaded."}})
	assert.Contains(t, got.Message, "Unit nginx.service not loaded.")
}
