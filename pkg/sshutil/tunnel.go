package sshutil

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rileyhilliard/pidash/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Tunnel forwards TCP connections through one SSH session, dialled lazily
// and re-dialled after the session drops.
type Tunnel struct {
	Host        string
	DialTimeout time.Duration
	Strict      bool

	mu     sync.Mutex
	client *ssh.Client
	addr   string
}

// NewTunnel prepares a tunnel to host, an ssh alias or [user@]host[:port].
func NewTunnel(host string, dialTimeout time.Duration, strict bool) *Tunnel {
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	return &Tunnel{Host: host, DialTimeout: dialTimeout, Strict: strict}
}

// Address returns the resolved host:port of the SSH server once connected.
func (t *Tunnel) Address() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addr
}

// DialContext opens addr on the far side of the tunnel. Its signature
// matches http.Transport.DialContext.
func (t *Tunnel) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	client, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}

	type result struct {
		conn net.Conn
		err  error
	}
	done := make(chan result, 1)
	go func() {
		c, err := client.Dial(network, addr)
		done <- result{c, err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.conn != nil {
				r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			// The session may be dead; force a fresh dial next time.
			t.reset(client)
			return nil, fmt.Errorf("tunnel dial %s: %w", addr, r.err)
		}
		return r.conn, nil
	}
}

// Transport returns an HTTP transport that dials through the tunnel.
func (t *Tunnel) Transport() *http.Transport {
	return &http.Transport{
		DialContext:         t.DialContext,
		MaxIdleConns:        4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// Close tears down the SSH session.
func (t *Tunnel) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

func (t *Tunnel) reset(c *ssh.Client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == c {
		t.client.Close()
		t.client = nil
	}
}

func (t *Tunnel) connect(ctx context.Context) (*ssh.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		return t.client, nil
	}
	client, addr, err := dial(ctx, t.Host, t.DialTimeout, t.Strict)
	if err != nil {
		return nil, err
	}
	t.client, t.addr = client, addr
	return client, nil
}

// dial resolves host, connects and completes the SSH handshake.
func dial(ctx context.Context, host string, timeout time.Duration, strict bool) (*ssh.Client, string, error) {
	s := resolve(host)
	cfg, err := clientConfig(s, strict)
	if err != nil {
		var structured *errors.Error
		if stderrors.As(err, &structured) {
			return nil, "", err
		}
		return nil, "", errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", host),
			"Check your keys are loaded: ssh-add -l")
	}

	address := s.address()
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, "", errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", host, address),
			suggestionForDialError(err))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, cfg)
	if err != nil {
		conn.Close()
		var mismatch *HostKeyMismatchError
		if stderrors.As(err, &mismatch) {
			return nil, "", errors.New(errors.ErrSSH, mismatch.Error(), mismatch.Suggestion())
		}
		return nil, "", errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
			suggestionForHandshakeError(err, s.encryptedKeys))
	}
	return ssh.NewClient(sshConn, chans, reqs), address, nil
}
