package dashboard

import "sync"

// DefaultHistorySize is how many samples each series keeps.
const DefaultHistorySize = 60

// SystemSeries is the history key for host-wide usage.
const SystemSeries = "system"

// History keeps recent CPU and memory percentages per series (the host, or
// a container id) in ring buffers for sparklines.
type History struct {
	mu     sync.RWMutex
	size   int
	series map[string]*usageHistory
}

type usageHistory struct {
	cpu *ringBuffer
	mem *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history with size samples per metric.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size, series: make(map[string]*usageHistory)}
}

// Push records one CPU and memory sample for key.
func (h *History) Push(key string, cpuPercent, memPercent float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.series[key]
	if !ok {
		s = &usageHistory{cpu: newRingBuffer(h.size), mem: newRingBuffer(h.size)}
		h.series[key] = s
	}
	s.cpu.push(cpuPercent)
	s.mem.push(memPercent)
}

// CPU returns up to count CPU samples for key, oldest first.
func (h *History) CPU(key string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if s, ok := h.series[key]; ok {
		return s.cpu.getLast(count)
	}
	return nil
}

// Mem returns up to count memory samples for key, oldest first.
func (h *History) Mem(key string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if s, ok := h.series[key]; ok {
		return s.mem.getLast(count)
	}
	return nil
}

// Count returns how many samples key holds.
func (h *History) Count(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if s, ok := h.series[key]; ok {
		return s.cpu.count
	}
	return 0
}

// Clear drops the history for key.
func (h *History) Clear(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.series, key)
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{data: make([]float64, size), size: size}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the newest count values in chronological order.
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}
	result := make([]float64, count)
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
