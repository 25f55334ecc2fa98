package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// Expand replaces ${VAR} and $VAR references with their values.
// ${USER} and ${HOME} fall back to the OS user database when the
// environment does not define them; unknown variables expand to "".
func Expand(s string) string {
	if s == "" || !strings.Contains(s, "$") {
		return s
	}
	return os.Expand(s, lookupVar)
}

func lookupVar(name string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	switch name {
	case "USER":
		return getUser()
	case "HOME":
		return getHome()
	}
	return ""
}

func getUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}

func getHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
