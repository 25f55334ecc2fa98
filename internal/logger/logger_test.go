package logger

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureLog redirects the standard logger for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags, out := log.Flags(), log.Writer()
	log.SetFlags(0)
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetFlags(flags)
		log.SetOutput(out)
	})
	return &buf
}

func TestEnvLogger_DebugGatedByEnv(t *testing.T) {
	for _, env := range []string{"", "1", "yes"} {
		t.Run("PIDASH_DEBUG="+env, func(t *testing.T) {
			t.Setenv(DebugEnv, env)
			buf := captureLog(t)

			NewEnvLogger("[api]").Debug("GET %s", "/api/stats/global")

			if env == "" {
				assert.False(t, DebugEnabled())
				assert.Empty(t, buf.String())
				return
			}
			assert.True(t, DebugEnabled())
			assert.Equal(t, "[api] GET /api/stats/global\n", buf.String())
		})
	}
}

func TestEnvLogger_LevelsAlwaysPrint(t *testing.T) {
	t.Setenv(DebugEnv, "")
	buf := captureLog(t)
	l := NewEnvLogger("[poll]")

	l.Info("cycle %d started", 3)
	l.Warn("slow response")
	l.Error("fetch failed: %v", "timeout")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[poll] cycle 3 started",
		"[poll] WARN: slow response",
		"[poll] ERROR: fetch failed: timeout",
	}, lines)
}

func TestNoop(t *testing.T) {
	t.Setenv(DebugEnv, "1")
	buf := captureLog(t)

	l := Noop()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	assert.Empty(t, buf.String())
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()
	assert.False(t, l.HasLevel("info"))

	l.Debug("request %s", "abc")
	l.Warn("toast %d dropped", 6)

	assert.Equal(t, 2, l.Len())
	assert.True(t, l.HasLevel("debug"))
	assert.True(t, l.HasLevel("warn"))
	assert.False(t, l.HasLevel("error"))
	assert.True(t, l.Contains("warn", "dropped"))
	assert.False(t, l.Contains("debug", "dropped"))
	assert.Equal(t, LogMessage{Level: "debug", Message: "request abc"}, l.Messages[0])
}

func TestBufferLogger_ConcurrentWrites(t *testing.T) {
	l := NewBufferLogger()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Info("tick %d", n)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, l.Len())
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = NewEnvLogger("")
	var _ Logger = Noop()
	var _ Logger = NewBufferLogger()
}
