// Package track holds the recorded sample sequence every metric is derived from.
package track

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCoordinate is returned when a latitude or longitude is out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrEmptyTrack is returned when a track has no samples.
	ErrEmptyTrack = errors.New("track has no samples")
)

// Sample is one recorded observation.
type Sample struct {
	Lat float64 // degrees, [-90, 90]
	Lon float64 // degrees, [-180, 180]

	// Elevation in meters. Nil means the recording carried no elevation.
	Elevation *float64

	// Time is zero when the recording carried no timestamp.
	Time time.Time
}

// Meters returns an elevation value for use in Sample literals.
func Meters(v float64) *float64 {
	return &v
}

// HasElevation reports whether the elevation of s is known.
func (s Sample) HasElevation() bool {
	return s.Elevation != nil
}

// CheckCoordinate validates s's latitude and longitude.
func (s Sample) CheckCoordinate() error {
	if s.Lat < -90 || s.Lat > 90 || s.Lon < -180 || s.Lon > 180 || s.Lat != s.Lat || s.Lon != s.Lon {
		return fmt.Errorf("%w: lat=%f lon=%f", ErrInvalidCoordinate, s.Lat, s.Lon)
	}
	return nil
}

// Track is an ordered sequence of samples in recording order.
type Track []Sample

// Validate checks that t is non-empty and that every coordinate is in range.
func (t Track) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTrack
	}
	for i, s := range t {
		if err := s.CheckCoordinate(); err != nil {
			return fmt.Errorf("sample %d: %w", i, err)
		}
	}
	return nil
}

// Elevations returns a copy of the per-sample elevations.
func (t Track) Elevations() []*float64 {
	out := make([]*float64, len(t))
	for i, s := range t {
		if s.Elevation != nil {
			out[i] = Meters(*s.Elevation)
		}
	}
	return out
}

// Duration returns the time between the first and last sample, or zero when
// either end lacks a timestamp.
func (t Track) Duration() time.Duration {
	if len(t) < 2 {
		return 0
	}
	first, last := t[0].Time, t[len(t)-1].Time
	if first.IsZero() || last.IsZero() {
		return 0
	}
	return last.Sub(first)
}
