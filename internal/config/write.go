package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/pidash/internal/errors"
	"gopkg.in/yaml.v3"
)

// fileHeader is written above the generated YAML.
const fileHeader = "# pidash configuration\n# See 'pidash init --help' for details.\n\n"

// Marshal renders cfg as YAML with durations written as strings.
func Marshal(cfg *Config) ([]byte, error) {
	doc := map[string]interface{}{
		"version": cfg.Version,
		"api": map[string]interface{}{
			"url":                      cfg.API.URL,
			"timeout":                  cfg.API.Timeout.String(),
			"ssh":                      cfg.API.SSH,
			"strict_host_key_checking": cfg.API.StrictHostKeyChecking,
		},
		"refresh": map[string]interface{}{
			"global":    cfg.Refresh.Global.String(),
			"system":    cfg.Refresh.System.String(),
			"container": cfg.Refresh.Container.String(),
		},
		"ui": map[string]interface{}{
			"default_tab":    cfg.UI.DefaultTab,
			"toast_duration": cfg.UI.ToastDuration.String(),
			"mouse":          cfg.UI.Mouse,
		},
		"network": map[string]interface{}{
			"scan_target": cfg.Network.ScanTarget,
		},
	}
	return yaml.Marshal(doc)
}

// Save writes cfg to path, creating parent directories. It refuses to
// overwrite an existing file unless force is set.
func Save(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				"Config file already exists: "+path,
				"Use --force to overwrite it.")
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't encode config", "")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create config directory",
			"Check permissions on "+filepath.Dir(path))
	}

	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write config file",
			"Check permissions on "+path)
	}
	return nil
}
