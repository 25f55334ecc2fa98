package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Tab names accepted by ui.default_tab.
var TabNames = []string{"containers", "system", "gpio", "projects", "network", "services"}

// Config represents the complete pidash configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version"`
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Refresh RefreshConfig `yaml:"refresh" mapstructure:"refresh"`
	UI      UIConfig      `yaml:"ui" mapstructure:"ui"`
	Network NetworkConfig `yaml:"network" mapstructure:"network"`
}

// APIConfig describes how to reach the management API.
type APIConfig struct {
	// URL is the API base URL, e.g. http://raspberrypi.local:5000.
	// Supports ${USER}, ${HOME} and environment variable expansion.
	URL string `yaml:"url" mapstructure:"url"`

	// Timeout bounds every request. A request that exceeds it is reported
	// as a transport failure.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// SSH, when set, tunnels API traffic through an SSH connection to this
	// host. Accepts an ~/.ssh/config alias, host, user@host or host:port.
	SSH string `yaml:"ssh" mapstructure:"ssh"`

	// StrictHostKeyChecking verifies the tunnel host against known_hosts.
	StrictHostKeyChecking bool `yaml:"strict_host_key_checking" mapstructure:"strict_host_key_checking"`
}

// RefreshConfig holds the polling cadence for each live view.
type RefreshConfig struct {
	// Global is the containers tab summary counters cadence.
	Global time.Duration `yaml:"global" mapstructure:"global"`

	// System is the system tab cadence (global + Pi hardware stats).
	System time.Duration `yaml:"system" mapstructure:"system"`

	// Container is the details modal cadence for a running container.
	Container time.Duration `yaml:"container" mapstructure:"container"`
}

// UIConfig controls dashboard presentation.
type UIConfig struct {
	// DefaultTab is activated on startup.
	DefaultTab string `yaml:"default_tab" mapstructure:"default_tab"`

	// ToastDuration is how long notifications stay up before auto-removal.
	ToastDuration time.Duration `yaml:"toast_duration" mapstructure:"toast_duration"`

	// Mouse enables click handling (tab bar, backdrop, toasts).
	Mouse bool `yaml:"mouse" mapstructure:"mouse"`
}

// NetworkConfig controls the network tab.
type NetworkConfig struct {
	// ScanTarget is the CIDR sent to the scan endpoint.
	ScanTarget string `yaml:"scan_target" mapstructure:"scan_target"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			URL:                   "http://localhost:5000",
			Timeout:               10 * time.Second,
			StrictHostKeyChecking: true,
		},
		Refresh: RefreshConfig{
			Global:    10 * time.Second,
			System:    5 * time.Second,
			Container: 2 * time.Second,
		},
		UI: UIConfig{
			DefaultTab:    "containers",
			ToastDuration: 5 * time.Second,
			Mouse:         true,
		},
		Network: NetworkConfig{
			ScanTarget: "192.168.1.0/24",
		},
	}
}
