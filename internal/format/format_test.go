package format

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBytes(t *testing.T) {
	tests := []struct {
		name     string
		n        float64
		decimals int
		want     string
	}{
		{"zero", 0, 2, "0 Bytes"},
		{"one kilobyte", 1024, 2, "1 KB"},
		{"one and a half kilobytes", 1536, 1, "1.5 KB"},
		{"bytes", 512, 2, "512 Bytes"},
		{"megabytes", 5 * 1024 * 1024, 2, "5 MB"},
		{"gigabytes rounded", 1.256 * 1024 * 1024 * 1024, 2, "1.26 GB"},
		{"terabytes", 2 * math.Pow(1024, 4), 2, "2 TB"},
		{"clamped at terabytes", 3 * math.Pow(1024, 5), 0, "3072 TB"},
		{"negative decimals treated as zero", 1536, -1, "2 KB"},
		{"fraction of a byte", 0.5, 2, "0.5 Bytes"},
		{"rounds up into next unit", 1048575, 2, "1 MB"},
		{"rounds up out of bytes", 1023.999, 2, "1 KB"},
		{"just below the carry", 1023.994, 2, "1023.99 Bytes"},
		{"carry clamped at terabytes", 1024*math.Pow(1024, 4) - 1, 0, "1024 TB"},
		{"negative", -10, 2, "0 Bytes"},
		{"NaN", math.NaN(), 2, "0 Bytes"},
		{"positive infinity", math.Inf(1), 2, "0 Bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bytes(tt.n, tt.decimals))
		})
	}
}

func TestBytesDefault(t *testing.T) {
	assert.Equal(t, "0 Bytes", BytesDefault(0))
	assert.Equal(t, "1 KB", BytesDefault(1024))
	assert.Equal(t, "1.5 KB", BytesInt(1536))
}

func TestByteUnit_ScaledValueInRange(t *testing.T) {
	for _, n := range []float64{1, 7, 1023, 1024, 4096, 1 << 20, 123456789, 1 << 40, 1 << 42} {
		scaled, idx := byteUnit(n)
		assert.GreaterOrEqual(t, scaled, 1.0, "n=%v", n)
		if idx < len(byteUnits)-1 {
			assert.Less(t, scaled, 1024.0, "n=%v", n)
		}
		assert.InDelta(t, n, scaled*math.Pow(1024, float64(idx)), 1e-6*n)
	}
}

func TestDate(t *testing.T) {
	ts := "2024-01-15T10:30:00.123456789Z"
	want := time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC).Local().Format(DateLayout)
	assert.Equal(t, want, Date(ts))

	assert.NotEqual(t, InvalidDate, Date("2024-01-15T10:30:00Z"))
	assert.NotEqual(t, InvalidDate, Date("2024-01-15"))
	assert.Equal(t, InvalidDate, Date(""))
	assert.Equal(t, InvalidDate, Date("not a date"))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "42.5%", Percent(42.5))
	assert.Equal(t, "0.0%", Percent(0))
	assert.Equal(t, "0.0%", Percent(math.NaN()))
	assert.Equal(t, "33.3%", Percent(100.0/3))
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 50.0, Ratio(512, 1024), 0.0001)
	assert.Equal(t, 0.0, Ratio(10, 0))
}

func TestCount(t *testing.T) {
	assert.Equal(t, "1,234,567", Count(1234567))
	assert.Equal(t, "12", Count(12))
}

func TestAgo(t *testing.T) {
	assert.Equal(t, "never", Ago(time.Time{}))
	assert.Contains(t, Ago(time.Now().Add(-3*time.Minute)), "minutes ago")
}

func TestRate(t *testing.T) {
	assert.Equal(t, "0 B/s", Rate(0))
	assert.Equal(t, "512 B/s", Rate(512))
	assert.Equal(t, "1.5 KB/s", Rate(1536))
	assert.Equal(t, "2.0 MB/s", Rate(2*1024*1024))
}
