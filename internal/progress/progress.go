// Package progress turns raw counters into percentages, rates and ETAs.
// Every function is pure; callers own the counters.
package progress

import (
	"time"

	"s3dirstat/internal/models"
)

// Percent returns processed/total in [0,100]; zero when total is zero.
func Percent(processed, total int64) float64 {
	if total <= 0 || processed <= 0 {
		return 0
	}
	if processed >= total {
		return 100
	}
	return float64(processed) / float64(total) * 100
}

// Rate returns bytes per second over elapsed.
func Rate(bytes int64, elapsed time.Duration) float64 {
	seconds := elapsed.Seconds()
	if seconds < 0.001 {
		seconds = 0.001
	}
	return float64(bytes) / seconds
}

// ETA returns the time to move remaining bytes at rate, and false if the rate is zero.
func ETA(remaining int64, rate float64) (time.Duration, bool) {
	if rate <= 0 {
		return 0, false
	}
	if remaining <= 0 {
		return 0, true
	}
	return time.Duration(float64(remaining) / rate * float64(time.Second)).Round(time.Second), true
}

type Estimate struct {
	Percent        float64       `json:"percent"`
	BytesPerSecond float64       `json:"bytes_per_second"`
	ETA            time.Duration `json:"eta"`
	HasETA         bool          `json:"has_eta"`
}

// EstimateSync derives speed and ETA from a sync snapshot. Only downloaded bytes
// count toward speed; skipped bytes shrink the remainder without transfer.
func EstimateSync(p models.SyncProgress, elapsed time.Duration) Estimate {
	rate := Rate(p.DownloadedBytes, elapsed)
	eta, ok := ETA(p.RemainingBytes(), rate)
	return Estimate{
		Percent:        Percent(p.Processed(), p.Total),
		BytesPerSecond: rate,
		ETA:            eta,
		HasETA:         ok,
	}
}
