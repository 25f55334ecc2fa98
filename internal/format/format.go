// Package format converts raw API numbers and timestamps into the short
// strings the dashboard and CLI print.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// InvalidDate is shown in place of timestamps that cannot be parsed.
const InvalidDate = "Invalid date"

// DateLayout mirrors the en-US locale rendering of a date and time.
const DateLayout = "1/2/2006, 3:04:05 PM"

// DefaultDecimals is the precision used by BytesDefault.
const DefaultDecimals = 2

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// dateLayouts are tried in order. Docker reports RFC3339 with nanoseconds;
// the API's own fields sometimes drop the zone.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// byteUnit picks the largest unit whose scaled value is at least 1, clamped
// to the last unit.
func byteUnit(n float64) (float64, int) {
	i := 0
	for n >= 1024 && i < len(byteUnits)-1 {
		n /= 1024
		i++
	}
	return n, i
}

// Bytes renders a byte count with the given number of decimals, trimming
// trailing zeros: 1536 with one decimal is "1.5 KB", 1024 is "1 KB".
// Zero, negative, and non-finite counts render as "0 Bytes".
func Bytes(n float64, decimals int) string {
	if n == 0 || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return "0 Bytes"
	}
	if decimals < 0 {
		decimals = 0
	}

	scaled, i := byteUnit(n)
	pow := math.Pow(10, float64(decimals))
	rounded := math.Round(scaled*pow) / pow
	// Rounding can carry into the next unit: 1023.999 KB is 1 MB.
	if rounded >= 1024 && i < len(byteUnits)-1 {
		i++
		rounded = math.Round(rounded/1024*pow) / pow
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[i]
}

// BytesDefault renders a byte count with two decimals.
func BytesDefault(n float64) string {
	return Bytes(n, DefaultDecimals)
}

// BytesInt is Bytes for integer counts.
func BytesInt(n int64) string {
	return Bytes(float64(n), DefaultDecimals)
}

// ParseDate parses the timestamp formats the API emits.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Date renders an ISO timestamp in local time. Unparseable input renders as
// "Invalid date".
func Date(iso string) string {
	t, err := ParseDate(iso)
	if err != nil {
		return InvalidDate
	}
	return t.Local().Format(DateLayout)
}

// Percent renders a percentage with one decimal, e.g. "42.5%".
func Percent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", v)
}

// Ratio returns used/total as a percentage, or 0 when total is not positive.
func Ratio(used, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return used / total * 100
}

// Count renders an integer with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// Ago renders how long ago t was, e.g. "3 minutes ago". Zero times render
// as "never".
func Ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// Rate formats a bytes-per-second rate.
func Rate(bytesPerSecond float64) string {
	if bytesPerSecond <= 0 || math.IsNaN(bytesPerSecond) {
		return "0 B/s"
	}
	if bytesPerSecond < 1024 {
		return fmt.Sprintf("%.0f B/s", bytesPerSecond)
	} else if bytesPerSecond < 1024*1024 {
		return fmt.Sprintf("%.1f KB/s", bytesPerSecond/1024)
	} else if bytesPerSecond < 1024*1024*1024 {
		return fmt.Sprintf("%.1f MB/s", bytesPerSecond/(1024*1024))
	}
	return fmt.Sprintf("%.1f GB/s", bytesPerSecond/(1024*1024*1024))
}
