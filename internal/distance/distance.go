// Package distance computes great-circle distances between track samples.
package distance

import (
	"fmt"
	"math"

	"github.com/planbiir/gtrack/internal/track"
)

// EarthRadius is the IUGG mean Earth radius in meters.
const EarthRadius = 6371008.8

// Between returns the haversine surface distance between a and b in meters,
// rounded to 2 decimals. Elevation is ignored.
func Between(a, b track.Sample) (float64, error) {
	if err := a.CheckCoordinate(); err != nil {
		return 0, err
	}
	if err := b.CheckCoordinate(); err != nil {
		return 0, err
	}
	return round2(haversine(a.Lat, a.Lon, b.Lat, b.Lon)), nil
}

// Series returns one entry per sample: 0 for the first, then the distance from
// the previous sample.
func Series(t track.Track) ([]float64, error) {
	if len(t) == 0 {
		return nil, track.ErrEmptyTrack
	}
	if err := t[0].CheckCoordinate(); err != nil {
		return nil, fmt.Errorf("sample 0: %w", err)
	}

	out := make([]float64, len(t))
	for i := 1; i < len(t); i++ {
		d, err := Between(t[i-1], t[i])
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLatRad := (lat2 - lat1) * math.Pi / 180
	deltaLonRad := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLatRad/2)*math.Sin(deltaLatRad/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLonRad/2)*math.Sin(deltaLonRad/2)

	// clamp guards against a > 1 from rounding at antipodes
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(math.Max(0, 1-a)))

	return EarthRadius * c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
