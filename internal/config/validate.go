package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/pidash/internal/errors"
)

// MinRefreshInterval is the shortest polling cadence allowed.
const MinRefreshInterval = 500 * time.Millisecond

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but pidash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade pidash to a newer release.")
	}

	if err := ValidateURL(cfg.API.URL); err != nil {
		return err
	}

	if cfg.API.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			"api.timeout must be positive",
			"Use a duration like 10s or 30s.")
	}

	if err := validateRefresh(cfg.Refresh); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'refresh' section in your config.")
	}

	if !IsTab(cfg.UI.DefaultTab) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown default tab '%s'", cfg.UI.DefaultTab),
			"Pick one of: "+strings.Join(TabNames, ", "))
	}

	if cfg.UI.ToastDuration <= 0 {
		return errors.New(errors.ErrConfig,
			"ui.toast_duration must be positive",
			"Use a duration like 3s or 5s.")
	}

	if cfg.Network.ScanTarget != "" {
		if _, _, err := net.ParseCIDR(cfg.Network.ScanTarget); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("network.scan_target '%s' isn't a CIDR range", cfg.Network.ScanTarget),
				"Use something like 192.168.1.0/24.")
		}
	}

	return nil
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("api.url '%s' isn't a valid URL", raw),
			"Use something like http://raspberrypi.local:5000")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("api.url must use http or https, got '%s'", u.Scheme),
			"Use something like http://raspberrypi.local:5000")
	}
	if u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("api.url '%s' has no host", raw),
			"Use something like http://raspberrypi.local:5000")
	}
	return nil
}

// IsTab reports whether name is a known dashboard tab.
func IsTab(name string) bool {
	for _, t := range TabNames {
		if t == name {
			return true
		}
	}
	return false
}

func validateRefresh(r RefreshConfig) error {
	intervals := []struct {
		name  string
		value time.Duration
	}{
		{"refresh.global", r.Global},
		{"refresh.system", r.System},
		{"refresh.container", r.Container},
	}
	for _, iv := range intervals {
		if iv.value < MinRefreshInterval {
			return fmt.Errorf("%s is %s; the minimum is %s", iv.name, iv.value, MinRefreshInterval)
		}
	}
	return nil
}
