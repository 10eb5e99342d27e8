// Package summary composes the distance and elevation metrics of one track.
package summary

import (
	"time"

	"github.com/planbiir/gtrack/internal/distance"
	"github.com/planbiir/gtrack/internal/elevation"
	"github.com/planbiir/gtrack/internal/track"
)

// Summary holds the reportable metrics of one track
type Summary struct {
	// Per-step distances in meters, Distances[0] == 0
	Distances []float64 `json:"distances_m"`

	// Running sum of Distances divided by 1000
	CumulativeKm []float64 `json:"cumulative_distance_km"`

	TotalDistanceM float64 `json:"total_distance_m"`
	AscentM        float64 `json:"ascent_m"`
	DescentM       float64 `json:"descent_m"`

	// Per-sample elevation, nil where unknown
	Elevations []*float64 `json:"elevations_m"`

	MinElevationM *float64      `json:"min_elevation_m,omitempty"`
	MaxElevationM *float64      `json:"max_elevation_m,omitempty"`
	Duration      time.Duration `json:"duration_ns,omitempty"`
	Samples       int           `json:"samples"`
}

// Build computes the summary of t. Coordinate errors from the distance series
// are returned unchanged.
func Build(t track.Track) (Summary, error) {
	if len(t) == 0 {
		return Summary{}, track.ErrEmptyTrack
	}

	distances, err := distance.Series(t)
	if err != nil {
		return Summary{}, err
	}

	// left-to-right fold so the total matches a plain sum of the series
	var total float64
	km := make([]float64, len(distances))
	for i, d := range distances {
		total += d
		km[i] = total / 1000
	}

	ascent, descent := elevation.Aggregate(elevation.Deltas(t))
	lowest, highest := elevation.Extremes(t)

	return Summary{
		Distances:      distances,
		CumulativeKm:   km,
		TotalDistanceM: total,
		AscentM:        elevation.Round(ascent),
		DescentM:       elevation.Round(descent),
		Elevations:     t.Elevations(),
		MinElevationM:  lowest,
		MaxElevationM:  highest,
		Duration:       t.Duration(),
		Samples:        len(t),
	}, nil
}

// Totals adds up the distance, ascent, descent, duration and sample count of
// several summaries, e.g. the days of one trip. Per-sample series are not kept.
func Totals(days ...Summary) Summary {
	var total Summary
	for _, d := range days {
		total.TotalDistanceM += d.TotalDistanceM
		total.AscentM += d.AscentM
		total.DescentM += d.DescentM
		total.Duration += d.Duration
		total.Samples += d.Samples
	}
	return total
}
