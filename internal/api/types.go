package api

import (
	"encoding/json"
	"strings"

	"github.com/docker/go-connections/nat"
)

// Envelope is the success/error wrapper every endpoint returns.
type Envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

// ContainerCounts summarises container states on the host.
type ContainerCounts struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	Stopped int `json:"stopped"`
}

// SystemUsage is the host-wide resource usage snapshot.
type SystemUsage struct {
	CPUPercent  float64 `json:"cpu_percent"`
	MemoryUsed  float64 `json:"memory_used"`
	MemoryTotal float64 `json:"memory_total"`
	DiskUsed    float64 `json:"disk_used"`
	DiskTotal   float64 `json:"disk_total"`
	NetworkRx   float64 `json:"network_rx"`
	NetworkTx   float64 `json:"network_tx"`
}

// GlobalStats is the payload of /api/stats/global.
type GlobalStats struct {
	Containers ContainerCounts `json:"containers"`
	System     SystemUsage     `json:"system"`
}

// Throttling mirrors the Pi firmware throttle flags.
type Throttling struct {
	UnderVoltage       bool `json:"under_voltage"`
	FrequencyCapped    bool `json:"frequency_capped"`
	CurrentlyThrottled bool `json:"currently_throttled"`
	TemperatureLimit   bool `json:"temperature_limit"`
}

// Warnings lists the active throttle conditions in display order.
func (t Throttling) Warnings() []string {
	var w []string
	if t.UnderVoltage {
		w = append(w, "Under-voltage detected")
	}
	if t.FrequencyCapped {
		w = append(w, "ARM frequency capped")
	}
	if t.CurrentlyThrottled {
		w = append(w, "Currently being throttled")
	}
	if t.TemperatureLimit {
		w = append(w, "Soft temperature limit active")
	}
	return w
}

// RpiStats is the payload of /api/stats/rpi.
type RpiStats struct {
	CPUTemperature  float64    `json:"cpu_temperature"`
	GPUTemperature  *float64   `json:"gpu_temperature"`
	CPUFrequencyMHz float64    `json:"cpu_frequency_mhz"`
	CoreVoltage     float64    `json:"core_voltage"`
	Throttling      Throttling `json:"throttling"`
}

// ContainerSummary is one row of the container listing.
type ContainerSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Image    string `json:"image"`
	HostPort string `json:"host_port"`
	URL      string `json:"url"`
}

// ShortID returns the 12 character Docker short id.
func (c ContainerSummary) ShortID() string {
	return ShortID(c.ID)
}

// ShortID truncates a Docker id to 12 characters.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// RestartPolicy is Docker's HostConfig.RestartPolicy.
type RestartPolicy struct {
	Name              string `json:"Name"`
	MaximumRetryCount int    `json:"MaximumRetryCount"`
}

// ContainerInfo is the payload of /container/{id}/info.
type ContainerInfo struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Status        string            `json:"status"`
	Image         string            `json:"image"`
	Created       string            `json:"created"`
	Ports         nat.PortMap       `json:"ports"`
	Labels        map[string]string `json:"labels"`
	Env           []string          `json:"env"`
	Command       json.RawMessage   `json:"command"`
	Volumes       []string          `json:"volumes"`
	Networks      []string          `json:"networks"`
	RestartPolicy RestartPolicy     `json:"restart_policy"`
}

// CommandString renders Cmd, which Docker reports as a list, a string, or null.
func (c ContainerInfo) CommandString() string {
	if len(c.Command) == 0 || string(c.Command) == "null" {
		return ""
	}
	var parts []string
	if err := json.Unmarshal(c.Command, &parts); err == nil {
		return strings.Join(parts, " ")
	}
	var s string
	if err := json.Unmarshal(c.Command, &s); err == nil {
		return s
	}
	return ""
}

// IsRunning reports whether the container status is "running".
func (c ContainerInfo) IsRunning() bool {
	return c.Status == "running"
}

// ContainerStats is the payload of /container/{id}/stats.
type ContainerStats struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemUsage   float64 `json:"mem_usage"`
	MemLimit   float64 `json:"mem_limit"`
	MemPercent float64 `json:"mem_percent"`
	RxBytes    float64 `json:"rx_bytes"`
	TxBytes    float64 `json:"tx_bytes"`
}

// ActionResult is returned by mutating endpoints.
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Output  string `json:"output"`
}

// GPIOPin is one pin's state.
type GPIOPin struct {
	Mode  string `json:"mode"`
	Value int    `json:"value"`
}

// IsHigh reports whether the pin reads 1.
func (p GPIOPin) IsHigh() bool {
	return p.Value == 1
}

// IsOutput reports whether the pin is configured as an output.
func (p GPIOPin) IsOutput() bool {
	return strings.EqualFold(p.Mode, "output")
}

// GPIOSetRequest is the body of /api/gpio/pin/{pin}/set.
type GPIOSetRequest struct {
	Value int    `json:"value"`
	Mode  string `json:"mode"`
}

// GitInfo describes a project's checkout.
type GitInfo struct {
	Branch string `json:"branch"`
	Commit string `json:"commit"`
	Dirty  bool   `json:"dirty"`
}

// Project is one entry of /api/projects.
type Project struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	IsGit   bool     `json:"is_git"`
	GitInfo *GitInfo `json:"git_info"`
}

// Interface is one network interface.
type Interface struct {
	IsUp      bool     `json:"is_up"`
	Addresses []string `json:"addresses"`
}

// NetworkCounters are host-wide network totals.
type NetworkCounters struct {
	BytesSent   float64 `json:"bytes_sent"`
	BytesRecv   float64 `json:"bytes_recv"`
	PacketsSent int64   `json:"packets_sent"`
	PacketsRecv int64   `json:"packets_recv"`
}

// NetworkStatus is the payload of /api/network/status.
type NetworkStatus struct {
	Interfaces map[string]Interface `json:"interfaces"`
	WifiSignal string               `json:"wifi_signal"`
	Stats      *NetworkCounters     `json:"stats"`
}

// ScanRequest is the body of /api/network/scan.
type ScanRequest struct {
	Target string `json:"target"`
}

// Service is one systemd unit from /api/services.
type Service struct {
	Name        string `json:"name"`
	Active      string `json:"active"`
	Description string `json:"description"`
}

// IsActive reports whether systemd considers the unit active.
func (s Service) IsActive() bool {
	return s.Active == "active"
}
