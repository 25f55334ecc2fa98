package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
)

// Containers lists all containers, running or not.
func (c *Client) Containers(ctx context.Context) ([]ContainerSummary, error) {
	var resp struct {
		Containers []ContainerSummary `json:"containers"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/containers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Containers, nil
}

// ContainerInfo fetches inspection details for one container.
func (c *Client) ContainerInfo(ctx context.Context, id string) (ContainerInfo, error) {
	var resp struct {
		Info *ContainerInfo `json:"info"`
	}
	if err := c.Do(ctx, http.MethodGet, containerPath(id, "info"), nil, &resp); err != nil {
		return ContainerInfo{}, err
	}
	if resp.Info == nil {
		return ContainerInfo{}, fmt.Errorf("%w: missing info", ErrMalformed)
	}
	return *resp.Info, nil
}

// ContainerLogs returns the last 100 timestamped log lines.
func (c *Client) ContainerLogs(ctx context.Context, id string) (string, error) {
	var resp struct {
		Logs string `json:"logs"`
	}
	if err := c.Do(ctx, http.MethodGet, containerPath(id, "logs"), nil, &resp); err != nil {
		return "", err
	}
	return resp.Logs, nil
}

// ContainerStats returns a single stats sample for one container.
func (c *Client) ContainerStats(ctx context.Context, id string) (ContainerStats, error) {
	var resp struct {
		Stats *ContainerStats `json:"stats"`
	}
	if err := c.Do(ctx, http.MethodGet, containerPath(id, "stats"), nil, &resp); err != nil {
		return ContainerStats{}, err
	}
	if resp.Stats == nil {
		return ContainerStats{}, fmt.Errorf("%w: missing stats", ErrMalformed)
	}
	return *resp.Stats, nil
}

// GlobalStats returns host-wide container counts and resource usage.
func (c *Client) GlobalStats(ctx context.Context) (GlobalStats, error) {
	var resp struct {
		Stats *GlobalStats `json:"stats"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/stats/global", nil, &resp); err != nil {
		return GlobalStats{}, err
	}
	if resp.Stats == nil {
		return GlobalStats{}, fmt.Errorf("%w: missing stats", ErrMalformed)
	}
	return *resp.Stats, nil
}

// RpiStats returns Raspberry Pi hardware readings.
func (c *Client) RpiStats(ctx context.Context) (RpiStats, error) {
	var resp struct {
		Stats *RpiStats `json:"stats"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/stats/rpi", nil, &resp); err != nil {
		return RpiStats{}, err
	}
	if resp.Stats == nil {
		return RpiStats{}, fmt.Errorf("%w: missing stats", ErrMalformed)
	}
	return *resp.Stats, nil
}

// GPIOStatus returns every exported pin keyed by BCM number.
func (c *Client) GPIOStatus(ctx context.Context) (map[int]GPIOPin, error) {
	var resp struct {
		Pins map[string]GPIOPin `json:"pins"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/gpio/status", nil, &resp); err != nil {
		return nil, err
	}
	pins := make(map[int]GPIOPin, len(resp.Pins))
	for k, p := range resp.Pins {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		pins[n] = p
	}
	return pins, nil
}

// SortedPins returns the pin numbers in ascending order.
func SortedPins(pins map[int]GPIOPin) []int {
	nums := make([]int, 0, len(pins))
	for n := range pins {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Projects lists the directories under ~/projects on the host.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var resp struct {
		Projects []Project `json:"projects"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/projects", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Projects, nil
}

// NetworkStatus returns interfaces, WiFi signal and traffic counters.
func (c *Client) NetworkStatus(ctx context.Context) (NetworkStatus, error) {
	var resp struct {
		Network *NetworkStatus `json:"network"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/network/status", nil, &resp); err != nil {
		return NetworkStatus{}, err
	}
	if resp.Network == nil {
		return NetworkStatus{}, fmt.Errorf("%w: missing network", ErrMalformed)
	}
	return *resp.Network, nil
}

// ScanNetwork asks the host to sweep a CIDR range and returns live hosts.
func (c *Client) ScanNetwork(ctx context.Context, target string) ([]string, error) {
	var resp struct {
		Hosts []string `json:"hosts"`
	}
	if err := c.Do(ctx, http.MethodPost, "/api/network/scan", ScanRequest{Target: target}, &resp); err != nil {
		return nil, err
	}
	return resp.Hosts, nil
}

// Services lists systemd units.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var resp struct {
		Services []Service `json:"services"`
	}
	if err := c.Do(ctx, http.MethodGet, "/api/services", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Services, nil
}

// Send performs a raw envelope request and decodes the action result. The
// dispatcher uses it for every mutating endpoint.
func (c *Client) Send(ctx context.Context, method, path string, body any) (ActionResult, error) {
	var res ActionResult
	if err := c.Do(ctx, method, path, body, &res); err != nil {
		return ActionResult{}, err
	}
	return res, nil
}

func containerPath(id, op string) string {
	return "/container/" + url.PathEscape(id) + "/" + op
}
