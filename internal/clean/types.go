// Package clean is an opt-in pre-pass that removes GPS spikes and smooths
// elevation noise before metrics are computed.
package clean

import (
	"time"

	"github.com/planbiir/gtrack/internal/track"
)

// Config holds cleaning algorithm parameters
type Config struct {
	// Speed thresholds
	MinSpeed float64 // m/s - minimum valid speed
	MaxSpeed float64 // m/s - maximum valid speed (auto-detected if 0)

	// Pause detection
	PauseSpeed float64 // m/s - below this a rejected point is kept as a pause

	// Geometric filters
	MaxHairpinDegrees float64 // degrees - allow sharp trail switchbacks
	TeleportMeters    float64 // meters - jump guard for missing timestamps

	// Safety limits
	MaxRemovedPercent float64 // never remove >X% of points

	// Elevation smoothing, 0 or 1 disables
	ElevationWindow int // median filter window size
}

// DefaultConfig returns production-tested configuration
func DefaultConfig() Config {
	return Config{
		MinSpeed:          0.1,   // 0.36 km/h - allows extended stops
		MaxSpeed:          0,     // auto-detect based on activity type
		PauseSpeed:        0.7,   // slightly higher for robustness
		MaxHairpinDegrees: 160.0, // allow sharp trail switchbacks
		TeleportMeters:    120.0,
		MaxRemovedPercent: 20.0, // safety: never remove >20% of points
		ElevationWindow:   7,    // median filter window
	}
}

// Stats represents cleaning results and metrics
type Stats struct {
	OriginalPoints int     `json:"original_points"`
	FinalPoints    int     `json:"final_points"`
	PointsRemoved  int     `json:"points_removed"`
	PointsPercent  float64 `json:"points_removed_percent"`

	// Set when the spike filter exceeded MaxRemovedPercent and was skipped
	SafetyOverride bool `json:"safety_override"`

	SmoothedPoints int `json:"smoothed_points"`

	ProcessingTime time.Duration `json:"processing_time_ms"`

	// Activity detection
	ActivityType     string  `json:"activity_type"`
	DetectedMaxSpeed float64 `json:"detected_max_speed_ms"`
	P95Speed         float64 `json:"p95_speed_ms"`
}

// Result contains the cleaned track and statistics
type Result struct {
	Track track.Track
	Stats Stats
}
