package clean

import (
	"time"

	"github.com/planbiir/gtrack/internal/track"
)

// Clean removes GPS spikes from t and median-smooths its elevation. The input
// track is never modified; sample order is preserved.
func Clean(t track.Track, config Config) (Result, error) {
	if err := t.Validate(); err != nil {
		return Result{}, err
	}

	startTime := time.Now()
	activityType, detectedMaxSpeed, p95Speed := detectActivityType(t)

	stats := Stats{
		OriginalPoints:   len(t),
		ActivityType:     activityType,
		DetectedMaxSpeed: detectedMaxSpeed,
		P95Speed:         p95Speed,
	}

	kept := t
	if len(t) >= 3 {
		maxSpeed := config.MaxSpeed
		if maxSpeed <= 0 {
			maxSpeed = detectedMaxSpeed
		}

		indices := velocityOutlierFilter(t, maxSpeed, config)
		removed := float64(len(t)-len(indices)) / float64(len(t)) * 100
		if removed > config.MaxRemovedPercent {
			stats.SafetyOverride = true
		} else {
			kept = make(track.Track, len(indices))
			for i, idx := range indices {
				kept[i] = t[idx]
			}
		}
	}

	final, smoothed := smoothElevation(kept, config.ElevationWindow)

	stats.FinalPoints = len(final)
	stats.PointsRemoved = len(t) - len(final)
	stats.PointsPercent = float64(stats.PointsRemoved) / float64(len(t)) * 100
	stats.SmoothedPoints = smoothed
	stats.ProcessingTime = time.Since(startTime)

	return Result{Track: final, Stats: stats}, nil
}
