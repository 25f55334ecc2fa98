package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	pderrors "github.com/rileyhilliard/pidash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfig points config discovery at an empty home and working
// directory, and resets the global flags afterwards.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	for _, k := range []string{"PIDASH_API_URL", "PIDASH_API_SSH", "PIDASH_UI_DEFAULT_TAB"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	origCfg, origAPI := cfgFile, apiURL
	t.Cleanup(func() { cfgFile, apiURL = origCfg, origAPI })
	cfgFile, apiURL = "", ""
	return dir
}

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unknown command", errors.New(`unknown command "foo" for "pidash"`), true},
		{"unknown flag", errors.New(`unknown flag: --foo`), true},
		{"other error", errors.New("connection failed"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"standard cobra format", errors.New(`unknown command "foo" for "pidash"`), "foo"},
		{"command with hyphen", errors.New(`unknown command "my-cmd" for "pidash"`), "my-cmd"},
		{"no quotes returns empty", errors.New("unknown command foo"), ""},
		{"single quote returns empty", errors.New(`unknown command "foo`), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

func TestFormatError(t *testing.T) {
	t.Run("structured error keeps its layout", func(t *testing.T) {
		err := pderrors.New(pderrors.ErrConfig, "Bad config", "Fix it")
		assert.Equal(t, err.Error(), formatError(err))
	})

	t.Run("unknown command", func(t *testing.T) {
		out := formatError(errors.New(`unknown command "nope" for "pidash"`))
		assert.Contains(t, out, `Unknown command "nope"`)
		assert.Contains(t, out, "pidash --help")
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Contains(t, formatError(errors.New("boom")), "boom")
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.API.URL)
}

func TestLoadConfig_APIFlagOverrides(t *testing.T) {
	dir := isolateConfig(t)
	path := filepath.Join(dir, ".pidash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  url: http://pi.local:5000\n"), 0o644))

	apiURL = " http://10.0.0.2:5000 "
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:5000", cfg.API.URL)
}

func TestLoadConfig_InvalidAPIFlag(t *testing.T) {
	isolateConfig(t)

	apiURL = "ftp://pi"
	_, err := loadConfig()
	require.Error(t, err)
	assert.True(t, pderrors.IsCode(err, pderrors.ErrConfig))
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	dir := isolateConfig(t)

	cfgFile = filepath.Join(dir, "nope.yaml")
	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestConnectAndHostLabel(t *testing.T) {
	isolateConfig(t)
	apiURL = "http://raspberrypi.local:5000"
	cfg, err := loadConfig()
	require.NoError(t, err)

	conn, err := connect(cfg, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Nil(t, conn.tunnel)
	assert.Equal(t, "raspberrypi.local", hostLabel(cfg, conn.client))

	cfg.API.SSH = "pi@garage"
	tunnelled, err := connect(cfg, nil)
	require.NoError(t, err)
	defer tunnelled.Close()
	assert.NotNil(t, tunnelled.tunnel)
	assert.Equal(t, "raspberrypi.local via pi@garage", hostLabel(cfg, tunnelled.client))
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"dashboard", "stats", "doctor", "init", "version", "completion",
		"container", "service", "project", "gpio"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}
