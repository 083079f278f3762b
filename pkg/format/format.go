// Package format renders byte counts, durations and transfer speeds for
// logs, notifications and the progress display.
package format

import (
	"fmt"
	"math"
	"time"
)

// Bytes formats a byte count with binary unit prefixes (B, KB, MB, GB, TB).
func Bytes(n int64) string {
	value := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024 {
			return fmt.Sprintf("%.2f%s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.2fTB", value)
}

// MegaBytes converts a byte count to megabytes rounded to two decimals,
// matching the size_mb field recorded in the manifest.
func MegaBytes(n int64) float64 {
	return math.Round(float64(n)/(1024*1024)*100) / 100
}

// Clock formats a duration as HH:MM:SS. Negative durations render as
// 00:00:00.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Speed formats a throughput figure in megabytes per second.
func Speed(bytesPerSecond float64) string {
	return fmt.Sprintf("%.2fMB/s", bytesPerSecond/(1024*1024))
}
