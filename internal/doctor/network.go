package doctor

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/errors"
)

// Pinger is the subset of *probing.Pinger the ping check uses.
type Pinger interface {
	Run() error
	Statistics() *probing.Statistics
	SetPrivileged(bool)
}

// newPinger resolves addr and prepares count echo requests. Replaced in tests.
var newPinger = func(addr string, count int, timeout time.Duration) (Pinger, error) {
	p, err := probing.NewPinger(addr)
	if err != nil {
		return nil, err
	}
	p.Count = count
	p.Timeout = timeout
	return p, nil
}

// PingCheck sends ICMP echoes to the API host. It tries an unprivileged UDP
// ping first and falls back to a raw socket.
type PingCheck struct {
	Host    string
	Count   int
	Timeout time.Duration
}

func (c *PingCheck) Name() string     { return "ping" }
func (c *PingCheck) Category() string { return CategoryNetwork }

func (c *PingCheck) Run(_ context.Context) CheckResult {
	if c.Host == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusWarn,
			Message: "No host to ping",
		}
	}
	count, timeout := c.Count, c.Timeout
	if count <= 0 {
		count = 3
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var stats *probing.Statistics
	var runErr error
	for _, privileged := range []bool{false, true} {
		p, err := newPinger(c.Host, count, timeout)
		if err != nil {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusFail,
				Message:    fmt.Sprintf("Can't resolve %s: %v", c.Host, err),
				Suggestion: "Check api.url, or use the Pi's IP address if mDNS isn't available",
			}
		}
		p.SetPrivileged(privileged)
		if runErr = p.Run(); runErr == nil {
			stats = p.Statistics()
			break
		}
	}

	if stats == nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("ICMP unavailable: %v", runErr),
			Suggestion: "Allow unprivileged ping with: sudo sysctl -w net.ipv4.ping_group_range=\"0 2147483647\"",
		}
	}

	if stats.PacketsRecv == 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("No reply from %s (%d sent)", c.Host, stats.PacketsSent),
			Suggestion: "Check the Pi is powered on and on the same network",
		}
	}

	msg := fmt.Sprintf("%s replied %d/%d, avg %s", c.Host, stats.PacketsRecv, stats.PacketsSent,
		stats.AvgRtt.Round(100*time.Microsecond))
	if stats.PacketLoss > 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s, %.0f%% loss", msg, stats.PacketLoss),
			Suggestion: "The link to the Pi is dropping packets; refreshes may time out",
		}
	}
	return CheckResult{Name: c.Name(), Status: StatusPass, Message: msg}
}

func (c *PingCheck) Fix() error {
	return nil
}

// StatsClient is the part of the API client the API checks call.
type StatsClient interface {
	GlobalStats(ctx context.Context) (api.GlobalStats, error)
	RpiStats(ctx context.Context) (api.RpiStats, error)
}

// APICheck performs one global stats round trip.
type APICheck struct {
	Client StatsClient
	URL    string
}

func (c *APICheck) Name() string     { return "api_reachable" }
func (c *APICheck) Category() string { return CategoryAPI }

func (c *APICheck) Run(ctx context.Context) CheckResult {
	start := time.Now()
	stats, err := c.Client.GlobalStats(ctx)
	if err != nil {
		return apiFailure(c.Name(), c.URL, err)
	}
	elapsed := time.Since(start).Round(time.Millisecond)
	return CheckResult{
		Name:   c.Name(),
		Status: StatusPass,
		Message: fmt.Sprintf("Responded in %s, %d/%d containers running",
			elapsed, stats.Containers.Running, stats.Containers.Total),
	}
}

func (c *APICheck) Fix() error {
	return nil
}

// apiFailure maps the client's error shapes to a failed result.
func apiFailure(name, url string, err error) CheckResult {
	res := CheckResult{Name: name, Status: StatusFail}

	var apiErr *api.APIError
	var transportErr *api.TransportError
	switch {
	case stderrors.As(err, &apiErr):
		res.Message = "Server error: " + apiErr.Error()
		res.Suggestion = "Check the API server logs on the Pi"
	case stderrors.As(err, &transportErr):
		res.Message = fmt.Sprintf("Can't reach %s: %v", url, transportErr.Err)
		res.Suggestion = "Check the API server is running and api.url points at it"
		if transportErr.Timeout() {
			res.Suggestion = "The server is slow or unreachable; raise api.timeout or check the network"
		}
	case stderrors.Is(err, api.ErrMalformed):
		res.Message = fmt.Sprintf("%s didn't answer like the management API", url)
		res.Suggestion = "Check api.url includes the right port (usually 5000)"
	default:
		res.Message = err.Error()
	}
	return res
}

// HardwareCheck reports the Pi's hardware stats and any throttling.
type HardwareCheck struct {
	Client StatsClient
}

func (c *HardwareCheck) Name() string     { return "hardware_stats" }
func (c *HardwareCheck) Category() string { return CategoryAPI }

func (c *HardwareCheck) Run(ctx context.Context) CheckResult {
	rpi, err := c.Client.RpiStats(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Hardware stats unavailable: %v", err),
			Suggestion: "The system tab will show usage only; vcgencmd may be missing on the server",
		}
	}

	if warnings := rpi.Throttling.Warnings(); len(warnings) > 0 {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("CPU %.1f°C, throttling: %s", rpi.CPUTemperature, strings.Join(warnings, "; ")),
			Suggestion: "Check the power supply and cooling",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("CPU %.1f°C at %.0f MHz, no throttling", rpi.CPUTemperature, rpi.CPUFrequencyMHz),
	}
}

func (c *HardwareCheck) Fix() error {
	return nil
}

// Dialer opens connections through a tunnel.
type Dialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// SSHTunnelCheck opens a connection to the API address through the tunnel.
type SSHTunnelCheck struct {
	Host   string
	Tunnel Dialer
	Addr   string
}

func (c *SSHTunnelCheck) Name() string     { return "ssh_tunnel" }
func (c *SSHTunnelCheck) Category() string { return CategorySSH }

func (c *SSHTunnelCheck) Run(ctx context.Context) CheckResult {
	conn, err := c.Tunnel.DialContext(ctx, "tcp", c.Addr)
	if err != nil {
		res := CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Tunnel via %s failed: %v", c.Host, err),
			Suggestion: "Check 'ssh " + c.Host + "' works from this machine",
		}
		var e *errors.Error
		if stderrors.As(err, &e) {
			res.Message = fmt.Sprintf("Tunnel via %s failed: %s", c.Host, e.Message)
			if e.Suggestion != "" {
				res.Suggestion = e.Suggestion
			}
		}
		return res
	}
	_ = conn.Close()
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s reachable through %s", c.Addr, c.Host),
	}
}

func (c *SSHTunnelCheck) Fix() error {
	return nil
}
