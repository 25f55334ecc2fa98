package sshutil

import (
	"bytes"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kevinburke/ssh_config"
)

// WarningHandler receives non-fatal configuration warnings. When nil they go
// to the standard logger.
var WarningHandler func(message string)

var matchWarningOnce sync.Once

func warn(message string) {
	if WarningHandler != nil {
		WarningHandler(message)
		return
	}
	log.Printf("Warning: %s", message)
}

// settings are the resolved connection parameters for one host.
type settings struct {
	hostname      string
	port          string
	user          string
	identityFile  string
	encryptedKeys []string
}

func (s *settings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// configPath is swapped in tests.
var configPath = func() string {
	return filepath.Join(homeDir(), ".ssh", "config")
}

// splitTarget parses [user@]host[:port].
func splitTarget(target string) (user, host, port string) {
	host = target
	if at := strings.Index(host, "@"); at != -1 {
		user, host = host[:at], host[at+1:]
	}
	if colon := strings.LastIndex(host, ":"); colon != -1 && isDigits(host[colon+1:]) {
		host, port = host[:colon], host[colon+1:]
	}
	return user, host, port
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Hostname returns the host target connects to after ~/.ssh/config aliases
// are applied.
func Hostname(target string) string {
	return resolve(target).hostname
}

// resolve applies ~/.ssh/config to target. Values given explicitly in the
// target string win over the config file.
func resolve(target string) *settings {
	user, host, port := splitTarget(target)
	s := &settings{hostname: host, port: "22", user: currentUser()}

	cfg, matchLine := loadConfig(configPath())
	hostFound := false
	if cfg != nil {
		if v, _ := cfg.Get(host, "HostName"); v != "" {
			s.hostname = v
			hostFound = true
		}
		if v, _ := cfg.Get(host, "Port"); v != "" {
			s.port = v
			hostFound = true
		}
		if v, _ := cfg.Get(host, "User"); v != "" {
			s.user = v
			hostFound = true
		}
		if v, _ := cfg.Get(host, "IdentityFile"); v != "" {
			s.identityFile = expandPath(v)
			hostFound = true
		}
	}
	if matchLine > 0 && !hostFound {
		matchWarningOnce.Do(func() {
			warn(fmt.Sprintf("host %q not found in SSH config; entries after the Match block at line %d are ignored", host, matchLine))
		})
	}

	if user != "" {
		s.user = user
	}
	if port != "" {
		s.port = port
	}
	return s
}

func loadConfig(path string) (*ssh_config.Config, int) {
	content, matchLine, err := stripMatchBlocks(path)
	if err != nil {
		return nil, 0
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, matchLine
	}
	return cfg, matchLine
}

// stripMatchBlocks returns the config up to the first Match directive, which
// ssh_config cannot parse, and the 1-indexed line it was found on.
func stripMatchBlocks(path string) ([]byte, int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			return []byte(strings.Join(lines[:i], "\n")), i + 1, nil
		}
	}
	return content, 0, nil
}

// Host is a concrete alias from ~/.ssh/config.
type Host struct {
	Alias    string
	Hostname string
	User     string
	Port     string
}

// Description summarises where the alias points.
func (h Host) Description() string {
	var parts []string
	if h.Hostname != "" && h.Hostname != h.Alias {
		parts = append(parts, h.Hostname)
	}
	if h.User != "" {
		parts = append(parts, "user: "+h.User)
	}
	if h.Port != "" && h.Port != "22" {
		parts = append(parts, "port: "+h.Port)
	}
	if len(parts) == 0 {
		return h.Alias
	}
	return strings.Join(parts, ", ")
}

// ListHosts returns the non-wildcard aliases in ~/.ssh/config, sorted.
// A missing config yields no hosts and no error.
func ListHosts() ([]Host, error) {
	return listHostsFile(configPath())
}

func listHostsFile(path string) ([]Host, error) {
	content, _, err := stripMatchBlocks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var hosts []Host
	seen := make(map[string]bool)
	for _, h := range cfg.Hosts {
		for _, pattern := range h.Patterns {
			alias := pattern.String()
			if strings.ContainsAny(alias, "*?") || seen[alias] {
				continue
			}
			seen[alias] = true
			entry := Host{Alias: alias}
			entry.Hostname, _ = cfg.Get(alias, "HostName")
			entry.User, _ = cfg.Get(alias, "User")
			entry.Port, _ = cfg.Get(alias, "Port")
			hosts = append(hosts, entry)
		}
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Alias < hosts[j].Alias })
	return hosts, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "pi"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
