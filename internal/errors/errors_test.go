package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Render(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New(ErrAction, "No container named \"web\"", ""),
			want: "✗ No container named \"web\"\n",
		},
		{
			name: "message and suggestion",
			err:  New(ErrConfig, "Unknown default tab 'weather'", "Pick one of: containers, system"),
			want: "✗ Unknown default tab 'weather'\n\n  Pick one of: containers, system\n",
		},
		{
			name: "cause between message and suggestion",
			err: WrapWithCode(fmt.Errorf("dial tcp 10.0.0.7:22: connection refused"), ErrSSH,
				"Couldn't connect to pi@garage", "Check 'ssh pi@garage' works"),
			want: "✗ Couldn't connect to pi@garage\n\n  dial tcp 10.0.0.7:22: connection refused\n\n  Check 'ssh pi@garage' works\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapWithCode_Unwraps(t *testing.T) {
	sentinel := errors.New("timeout")
	err := WrapWithCode(sentinel, ErrAPI, "Request failed", "")

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, ErrAPI, err.Code)
	assert.Equal(t, sentinel, err.Unwrap())
}

func TestIsCode(t *testing.T) {
	err := New(ErrNetwork, "Host unreachable", "")
	wrapped := fmt.Errorf("doctor: %w", err)

	assert.True(t, IsCode(err, ErrNetwork))
	assert.True(t, IsCode(wrapped, ErrNetwork))
	assert.False(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(errors.New("plain"), ErrNetwork))
	assert.False(t, IsCode(nil, ErrNetwork))
}

func TestCodesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range []string{ErrConfig, ErrAPI, ErrAction, ErrSSH, ErrNetwork} {
		require.NotEmpty(t, c)
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
}

func TestExitError(t *testing.T) {
	err := NewExitError(2)
	assert.Equal(t, "exit code 2", err.Error())

	code, ok := GetExitCode(fmt.Errorf("stats: %w", err))
	assert.True(t, ok)
	assert.Equal(t, 2, code)

	_, ok = GetExitCode(New(ErrAPI, "x", ""))
	assert.False(t, ok)
	_, ok = GetExitCode(nil)
	assert.False(t, ok)
}
