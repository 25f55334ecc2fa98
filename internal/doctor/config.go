package doctor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rileyhilliard/pidash/internal/config"
)

// ConfigFileCheck verifies that a config file exists. Running without one
// is allowed, so a missing file is a warning that --fix can address.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search

	// WritePath is where Fix creates the default config. Empty means the
	// global config path.
	WritePath string
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(_ context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %v", err),
			Suggestion: "Check the --config path or run 'pidash init' to create a config",
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'pidash init' to create " + config.ConfigFileName + " or ~/" + config.GlobalConfigDir + "/" + config.GlobalConfigFile,
			Fixable:    true,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", filepath.Base(path)),
	}
}

// Fix writes the default config when none exists.
func (c *ConfigFileCheck) Fix() error {
	if path, err := config.Find(c.ConfigPath); err != nil || path != "" {
		return err
	}
	target := c.WritePath
	if target == "" {
		target = config.GlobalConfigPath()
	}
	if target == "" {
		return fmt.Errorf("cannot determine home directory for the config file")
	}
	return config.Save(target, config.DefaultConfig(), false)
}

// ConfigValidCheck loads the effective config (file, defaults and PIDASH_*
// overrides) and validates it.
type ConfigValidCheck struct {
	ConfigPath string
}

func (c *ConfigValidCheck) Name() string     { return "config_valid" }
func (c *ConfigValidCheck) Category() string { return CategoryConfig }

func (c *ConfigValidCheck) Run(_ context.Context) CheckResult {
	cfg, path, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %v", err),
			Suggestion: "Check the YAML syntax in your config file",
		}
	}

	if err := config.Validate(cfg); err != nil {
		source := "your config"
		if path != "" {
			source = filepath.Base(path)
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Invalid config: %v", err),
			Suggestion: "Fix the values in " + source + " or the PIDASH_* environment",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("API %s, default tab %s", cfg.API.URL, cfg.UI.DefaultTab),
	}
}

func (c *ConfigValidCheck) Fix() error {
	return nil // Invalid values need a human
}

// NewConfigChecks creates all config-related checks.
func NewConfigChecks(configPath string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ConfigValidCheck{ConfigPath: configPath},
	}
}
