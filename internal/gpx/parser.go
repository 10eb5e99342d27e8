// Package gpx loads GPX recordings into tracks.
package gpx

import (
	"fmt"
	"io"
	"time"

	gpxgo "github.com/tkrajina/gpxgo/gpx"

	"github.com/planbiir/gtrack/internal/track"
)

// Point is one track point with its position in the original file
type Point struct {
	Lat       float64
	Lon       float64
	Elevation *float64 // nil when the file has no <ele>
	Time      time.Time

	TrackIdx, SegIdx, PtIdx int
}

// Recording is a parsed GPX file
type Recording struct {
	Name string
	data *gpxgo.GPX
}

// Parse reads and parses a GPX file
func Parse(filename string) (*Recording, error) {
	data, err := gpxgo.ParseFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX %s: %w", filename, err)
	}
	return newRecording(data), nil
}

// ParseReader parses GPX from an io.Reader
func ParseReader(r io.Reader) (*Recording, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GPX: %w", err)
	}

	data, err := gpxgo.ParseBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}
	return newRecording(data), nil
}

func newRecording(data *gpxgo.GPX) *Recording {
	name := data.Name
	if name == "" {
		for _, t := range data.Tracks {
			if t.Name != "" {
				name = t.Name
				break
			}
		}
	}
	return &Recording{Name: name, data: data}
}

// FlattenPoints returns all points from all tracks and segments in file order
func (r *Recording) FlattenPoints() []Point {
	var points []Point

	for trackIdx, t := range r.data.Tracks {
		for segIdx, segment := range t.Segments {
			for ptIdx, p := range segment.Points {
				point := Point{
					Lat:      p.Latitude,
					Lon:      p.Longitude,
					Time:     p.Timestamp,
					TrackIdx: trackIdx,
					SegIdx:   segIdx,
					PtIdx:    ptIdx,
				}
				if p.Elevation.NotNull() {
					point.Elevation = track.Meters(p.Elevation.Value())
				}
				points = append(points, point)
			}
		}
	}

	return points
}

// Track converts the recording into a validated track. All segments are joined
// in file order.
func (r *Recording) Track() (track.Track, error) {
	points := r.FlattenPoints()
	if len(points) == 0 {
		return nil, track.ErrEmptyTrack
	}

	t := make(track.Track, len(points))
	for i, p := range points {
		t[i] = track.Sample{Lat: p.Lat, Lon: p.Lon, Elevation: p.Elevation, Time: p.Time}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Stats returns basic structure counts of the recording
func (r *Recording) Stats() (pointCount int, trackCount int, segmentCount int) {
	trackCount = len(r.data.Tracks)
	for _, t := range r.data.Tracks {
		segmentCount += len(t.Segments)
		for _, s := range t.Segments {
			pointCount += len(s.Points)
		}
	}
	return
}

// Load parses filename and returns its track.
func Load(filename string) (track.Track, *Recording, error) {
	rec, err := Parse(filename)
	if err != nil {
		return nil, nil, err
	}
	t, err := rec.Track()
	if err != nil {
		return nil, rec, fmt.Errorf("%s: %w", filename, err)
	}
	return t, rec, nil
}
