// Package elevation derives ascent and descent from consecutive elevation
// differences. Unknown elevations are skipped, never treated as zero.
package elevation

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/planbiir/gtrack/internal/track"
)

// Deltas returns one entry per sample. Entry i is the change from sample i to
// sample i+1; it is nil when either elevation is unknown, and the last entry
// is always nil.
func Deltas(t track.Track) []*float64 {
	out := make([]*float64, len(t))
	for i := 0; i+1 < len(t); i++ {
		cur, next := t[i].Elevation, t[i+1].Elevation
		if cur == nil || next == nil {
			continue
		}
		d := *next - *cur
		out[i] = &d
	}
	return out
}

// Aggregate sums positive deltas into ascent and the magnitude of negative
// deltas into descent. Neither sum is rounded.
func Aggregate(deltas []*float64) (ascent, descent float64) {
	for _, d := range deltas {
		switch {
		case d == nil:
		case *d > 0:
			ascent += *d
		case *d < 0:
			descent -= *d
		}
	}
	return ascent, descent
}

// Round rounds a reported elevation total to the nearest whole meter.
func Round(v float64) float64 {
	return math.Round(v)
}

// Extremes returns the lowest and highest known elevation. Both are nil when
// no sample has an elevation.
func Extremes(t track.Track) (lowest, highest *float64) {
	known := make([]float64, 0, len(t))
	for _, s := range t {
		if s.Elevation != nil {
			known = append(known, *s.Elevation)
		}
	}
	if len(known) == 0 {
		return nil, nil
	}
	return track.Meters(floats.Min(known)), track.Meters(floats.Max(known))
}
