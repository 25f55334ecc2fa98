package doctor

import (
	"context"
	stderrors "errors"
	"net"
	"testing"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"github.com/rileyhilliard/pidash/internal/api"
	"github.com/rileyhilliard/pidash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Run() error {
	return m.Called().Error(0)
}

func (m *mockPinger) Statistics() *probing.Statistics {
	return m.Called().Get(0).(*probing.Statistics)
}

func (m *mockPinger) SetPrivileged(privileged bool) {
	m.Called(privileged)
}

// stubPingers makes newPinger hand out ps in order.
func stubPingers(t *testing.T, ps ...*mockPinger) {
	t.Helper()
	orig := newPinger
	t.Cleanup(func() { newPinger = orig })
	i := 0
	newPinger = func(addr string, count int, timeout time.Duration) (Pinger, error) {
		assert.Equal(t, "raspberrypi.local", addr)
		require.Less(t, i, len(ps), "unexpected pinger")
		p := ps[i]
		i++
		return p, nil
	}
}

func TestPingCheck_Unprivileged(t *testing.T) {
	p := new(mockPinger)
	p.On("SetPrivileged", false).Return()
	p.On("Run").Return(nil)
	p.On("Statistics").Return(&probing.Statistics{PacketsSent: 3, PacketsRecv: 3, AvgRtt: 2 * time.Millisecond})
	stubPingers(t, p)

	result := (&PingCheck{Host: "raspberrypi.local"}).Run(context.Background())

	assert.Equal(t, StatusPass, result.Status)
	assert.Equal(t, "raspberrypi.local replied 3/3, avg 2ms", result.Message)
	p.AssertExpectations(t)
}

func TestPingCheck_FallsBackToPrivileged(t *testing.T) {
	udp := new(mockPinger)
	udp.On("SetPrivileged", false).Return()
	udp.On("Run").Return(stderrors.New("socket: permission denied"))

	raw := new(mockPinger)
	raw.On("SetPrivileged", true).Return()
	raw.On("Run").Return(nil)
	raw.On("Statistics").Return(&probing.Statistics{PacketsSent: 4, PacketsRecv: 3, PacketLoss: 25, AvgRtt: time.Millisecond})
	stubPingers(t, udp, raw)

	result := (&PingCheck{Host: "raspberrypi.local", Count: 4}).Run(context.Background())

	assert.Equal(t, StatusWarn, result.Status)
	assert.Contains(t, result.Message, "25% loss")
	udp.AssertNotCalled(t, "Statistics")
	raw.AssertExpectations(t)
}

func TestPingCheck_NoICMP(t *testing.T) {
	udp := new(mockPinger)
	udp.On("SetPrivileged", false).Return()
	udp.On("Run").Return(stderrors.New("permission denied"))
	raw := new(mockPinger)
	raw.On("SetPrivileged", true).Return()
	raw.On("Run").Return(stderrors.New("operation not permitted"))
	stubPingers(t, udp, raw)

	result := (&PingCheck{Host: "raspberrypi.local"}).Run(context.Background())

	assert.Equal(t, StatusWarn, result.Status)
	assert.Equal(t, "ICMP unavailable: operation not permitted", result.Message)
	assert.Contains(t, result.Suggestion, "ping_group_range")
}

func TestPingCheck_NoReply(t *testing.T) {
	p := new(mockPinger)
	p.On("SetPrivileged", false).Return()
	p.On("Run").Return(nil)
	p.On("Statistics").Return(&probing.Statistics{PacketsSent: 3, PacketLoss: 100})
	stubPingers(t, p)

	result := (&PingCheck{Host: "raspberrypi.local"}).Run(context.Background())

	assert.Equal(t, StatusFail, result.Status)
	assert.Equal(t, "No reply from raspberrypi.local (3 sent)", result.Message)
}

func TestPingCheck_ResolveFailure(t *testing.T) {
	orig := newPinger
	t.Cleanup(func() { newPinger = orig })
	newPinger = func(string, int, time.Duration) (Pinger, error) {
		return nil, stderrors.New("no such host")
	}

	result := (&PingCheck{Host: "raspberrypi.local"}).Run(context.Background())

	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "Can't resolve raspberrypi.local")
}

func TestPingCheck_NoHost(t *testing.T) {
	result := (&PingCheck{}).Run(context.Background())
	assert.Equal(t, StatusWarn, result.Status)
}

type mockStats struct {
	mock.Mock
}

func (m *mockStats) GlobalStats(ctx context.Context) (api.GlobalStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(api.GlobalStats), args.Error(1)
}

func (m *mockStats) RpiStats(ctx context.Context) (api.RpiStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(api.RpiStats), args.Error(1)
}

func TestAPICheck(t *testing.T) {
	tests := []struct {
		name    string
		stats   api.GlobalStats
		err     error
		status  CheckStatus
		message string
	}{
		{
			name:    "ok",
			stats:   api.GlobalStats{Containers: api.ContainerCounts{Total: 5, Running: 3, Stopped: 2}},
			status:  StatusPass,
			message: "3/5 containers running",
		},
		{
			name:    "server error verbatim",
			err:     &api.APIError{Status: 500, Message: "docker daemon not running"},
			status:  StatusFail,
			message: "Server error: docker daemon not running",
		},
		{
			name:    "unreachable",
			err:     &api.TransportError{Method: "GET", Path: "/stats/global", Err: stderrors.New("connection refused")},
			status:  StatusFail,
			message: "Can't reach http://pi:5000: connection refused",
		},
		{
			name:    "not the api",
			err:     api.ErrMalformed,
			status:  StatusFail,
			message: "didn't answer like the management API",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := new(mockStats)
			client.On("GlobalStats", mock.Anything).Return(tc.stats, tc.err)

			result := (&APICheck{Client: client, URL: "http://pi:5000"}).Run(context.Background())

			assert.Equal(t, tc.status, result.Status)
			assert.Contains(t, result.Message, tc.message)
			client.AssertExpectations(t)
		})
	}
}

func TestHardwareCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		client := new(mockStats)
		client.On("RpiStats", mock.Anything).Return(api.RpiStats{CPUTemperature: 48.2, CPUFrequencyMHz: 1500}, nil)
		result := (&HardwareCheck{Client: client}).Run(context.Background())
		assert.Equal(t, StatusPass, result.Status)
		assert.Equal(t, "CPU 48.2°C at 1500 MHz, no throttling", result.Message)
	})

	t.Run("throttled", func(t *testing.T) {
		client := new(mockStats)
		client.On("RpiStats", mock.Anything).Return(api.RpiStats{
			CPUTemperature: 81,
			Throttling:     api.Throttling{UnderVoltage: true, TemperatureLimit: true},
		}, nil)
		result := (&HardwareCheck{Client: client}).Run(context.Background())
		assert.Equal(t, StatusWarn, result.Status)
		assert.Contains(t, result.Message, "Under-voltage detected; Soft temperature limit active")
	})

	t.Run("unavailable", func(t *testing.T) {
		client := new(mockStats)
		client.On("RpiStats", mock.Anything).Return(api.RpiStats{}, &api.APIError{Status: 500, Message: "vcgencmd not found"})
		result := (&HardwareCheck{Client: client}).Run(context.Background())
		assert.Equal(t, StatusWarn, result.Status)
		assert.Contains(t, result.Message, "vcgencmd not found")
	})
}

type mockDialer struct {
	mock.Mock
}

func (m *mockDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	args := m.Called(ctx, network, addr)
	conn, _ := args.Get(0).(net.Conn)
	return conn, args.Error(1)
}

func TestSSHTunnelCheck(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		client, server := net.Pipe()
		defer server.Close()
		d := new(mockDialer)
		d.On("DialContext", mock.Anything, "tcp", "localhost:5000").Return(client, nil)

		result := (&SSHTunnelCheck{Host: "pi", Tunnel: d, Addr: "localhost:5000"}).Run(context.Background())

		assert.Equal(t, StatusPass, result.Status)
		assert.Equal(t, "localhost:5000 reachable through pi", result.Message)
		d.AssertExpectations(t)
	})

	t.Run("structured error keeps suggestion", func(t *testing.T) {
		d := new(mockDialer)
		d.On("DialContext", mock.Anything, "tcp", "localhost:5000").
			Return(nil, errors.New(errors.ErrSSH, "Authentication failed", "Add your key with ssh-add"))

		result := (&SSHTunnelCheck{Host: "pi", Tunnel: d, Addr: "localhost:5000"}).Run(context.Background())

		assert.Equal(t, StatusFail, result.Status)
		assert.Equal(t, "Tunnel via pi failed: Authentication failed", result.Message)
		assert.Equal(t, "Add your key with ssh-add", result.Suggestion)
	})

	t.Run("plain error", func(t *testing.T) {
		d := new(mockDialer)
		d.On("DialContext", mock.Anything, "tcp", "localhost:5000").Return(nil, stderrors.New("boom"))

		result := (&SSHTunnelCheck{Host: "pi", Tunnel: d, Addr: "localhost:5000"}).Run(context.Background())

		assert.Equal(t, StatusFail, result.Status)
		assert.Equal(t, "Check 'ssh pi' works from this machine", result.Suggestion)
	})
}
