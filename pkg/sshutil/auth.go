package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/pidash/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

var (
	agentConn     net.Conn
	agentClient   agent.ExtendedAgent
	agentConnOnce sync.Once
)

// clientConfig builds auth and host key verification for s. Keys that exist
// but need a passphrase are recorded on s for the error suggestion.
func clientConfig(s *settings, strict bool) (*ssh.ClientConfig, error) {
	var methods []ssh.AuthMethod
	tryKey := func(path string) {
		auth, err := keyFileAuth(path)
		if err != nil {
			var encErr *EncryptedKeyError
			if stderrors.As(err, &encErr) {
				s.encryptedKeys = append(s.encryptedKeys, path)
			}
			return
		}
		methods = append(methods, auth)
	}

	if a := agentAuth(); a != nil {
		methods = append(methods, a)
	}
	if s.identityFile != "" {
		tryKey(s.identityFile)
	}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		path := filepath.Join(homeDir(), ".ssh", name)
		if path != s.identityFile {
			tryKey(path)
		}
	}

	if len(methods) == 0 {
		if len(s.encryptedKeys) > 0 {
			return nil, errors.New(errors.ErrSSH,
				"Found SSH key(s) but they're encrypted: "+strings.Join(s.encryptedKeys, ", "),
				addKeysSuggestion("Add your key(s) to the agent:", s.encryptedKeys))
		}
		return nil, errors.New(errors.ErrSSH, "No SSH auth methods available",
			"Check your keys are loaded: ssh-add -l")
	}

	callback := ssh.InsecureIgnoreHostKey() //nolint:gosec // strict checking disabled in config
	if strict {
		var err error
		callback, err = hostKeyCallback(filepath.Join(homeDir(), ".ssh", "known_hosts"))
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrSSH, "Couldn't load known_hosts",
				"Connect once with ssh to record the Pi's host key")
		}
	}

	return &ssh.ClientConfig{
		User:            s.user,
		Auth:            methods,
		HostKeyCallback: callback,
		Timeout:         10 * time.Second,
	}, nil
}

// agentAuth uses SSH_AUTH_SOCK when the agent holds at least one key. An
// empty agent placed first makes servers reject the later key methods.
func agentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}
	agentConnOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentConn = conn
		agentClient = agent.NewClient(conn)
	})
	if agentClient == nil {
		return nil
	}
	signers, err := agentClient.Signers()
	if err != nil || len(signers) == 0 {
		return nil
	}
	return ssh.PublicKeysCallback(agentClient.Signers)
}

// CloseAgent releases the shared agent connection.
func CloseAgent() {
	if agentConn != nil {
		agentConn.Close()
	}
}

func keyFileAuth(path string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || isEncryptedPEM(key) {
			return nil, &EncryptedKeyError{Path: path}
		}
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

func isEncryptedPEM(data []byte) bool {
	return bytes.Contains(data, []byte("ENCRYPTED"))
}

func addKeysSuggestion(header string, keys []string) string {
	var sb strings.Builder
	sb.WriteString(header + "\n")
	for _, key := range keys {
		if runtime.GOOS == "darwin" {
			fmt.Fprintf(&sb, "  ssh-add --apple-use-keychain %s\n", key)
		} else {
			fmt.Fprintf(&sb, "  ssh-add %s\n", key)
		}
	}
	sb.WriteString("\nNot sure which key? Check with: ssh -v <host>")
	return sb.String()
}

func suggestionForDialError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Is sshd running on the Pi? Try: ssh <host>"
	case strings.Contains(msg, "no route to host"), strings.Contains(msg, "network is unreachable"):
		return "Can't route to the host. Check your network connection."
	case strings.Contains(msg, "timeout"):
		return "Connection timed out. The Pi might be offline or blocked by a firewall."
	default:
		return "Make sure the host is reachable: pidash doctor"
	}
}

func suggestionForHandshakeError(err error, encryptedKeys []string) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unable to authenticate"), strings.Contains(msg, "no supported methods"):
		if len(encryptedKeys) > 0 {
			return addKeysSuggestion("Your key(s) are encrypted. Add them to the agent:", encryptedKeys)
		}
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	case strings.Contains(msg, "host key"):
		return "Host key issue. Try connecting manually first: ssh <host>"
	default:
		return "Something went wrong during SSH setup. Try: ssh <host>"
	}
}

// EncryptedKeyError is returned when a key needs a passphrase.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// HostKeyMismatchError reports a known_hosts verification failure.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
	Want         []knownhosts.KnownKey
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion explains how to refresh known_hosts.
func (e *HostKeyMismatchError) Suggestion() string {
	host := e.Hostname
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	known := make([]string, 0, len(e.Want))
	for _, k := range e.Want {
		known = append(known, k.Key.Type())
	}
	wantStr := "unknown"
	if len(known) > 0 {
		wantStr = strings.Join(known, ", ")
	}
	return fmt.Sprintf("known_hosts has %s but the Pi sent %s. If the Pi was reinstalled:\n  ssh-keygen -R %s\n  ssh-keyscan -t rsa,ecdsa,ed25519 %s >> %s",
		wantStr, e.ReceivedType, host, host, e.KnownHosts)
}

func hostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
			return nil, fmt.Errorf("create .ssh directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, nil, 0600); err != nil {
			return nil, fmt.Errorf("create known_hosts: %w", err)
		}
	}
	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
			return &HostKeyMismatchError{
				Hostname:     hostname,
				ReceivedType: key.Type(),
				KnownHosts:   knownHostsPath,
				Want:         keyErr.Want,
			}
		}
		return err
	}, nil
}
