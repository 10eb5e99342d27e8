package gpx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/planbiir/gtrack/internal/track"
)

const twoSegmentGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
	<trk>
		<name>TMB Day 1</name>
		<trkseg>
			<trkpt lat="45.8907" lon="6.7966">
				<ele>1008</ele>
				<time>2022-07-05T07:30:00Z</time>
			</trkpt>
			<trkpt lat="45.8912" lon="6.7971">
				<time>2022-07-05T07:30:10Z</time>
			</trkpt>
		</trkseg>
		<trkseg>
			<trkpt lat="45.8920" lon="6.7980">
				<ele>1031.5</ele>
				<time>2022-07-05T07:31:00Z</time>
			</trkpt>
		</trkseg>
	</trk>
</gpx>`

func TestParseReader(t *testing.T) {
	rec, err := ParseReader(strings.NewReader(twoSegmentGPX))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if rec.Name != "TMB Day 1" {
		t.Errorf("Expected name from track, got %q", rec.Name)
	}

	pointCount, trackCount, segmentCount := rec.Stats()
	if pointCount != 3 || trackCount != 1 || segmentCount != 2 {
		t.Errorf("Expected 3 points/1 track/2 segments, got %d/%d/%d", pointCount, trackCount, segmentCount)
	}
}

func TestFlattenPoints(t *testing.T) {
	rec, err := ParseReader(strings.NewReader(twoSegmentGPX))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	points := rec.FlattenPoints()
	if len(points) != 3 {
		t.Fatalf("Expected 3 flattened points, got %d", len(points))
	}

	if points[0].Lat != 45.8907 || points[0].Lon != 6.7966 {
		t.Errorf("Expected lat=45.8907, lon=6.7966, got lat=%f, lon=%f", points[0].Lat, points[0].Lon)
	}
	if points[0].Elevation == nil || *points[0].Elevation != 1008 {
		t.Errorf("Expected elevation 1008 on first point")
	}
	if points[1].Elevation != nil {
		t.Errorf("Missing <ele> must stay unknown, got %f", *points[1].Elevation)
	}

	if points[2].TrackIdx != 0 || points[2].SegIdx != 1 || points[2].PtIdx != 0 {
		t.Errorf("Point 2 indices incorrect: track=%d, seg=%d, pt=%d",
			points[2].TrackIdx, points[2].SegIdx, points[2].PtIdx)
	}

	want := time.Date(2022, 7, 5, 7, 31, 0, 0, time.UTC)
	if !points[2].Time.Equal(want) {
		t.Errorf("Expected time %v, got %v", want, points[2].Time)
	}
}

func TestTrack(t *testing.T) {
	rec, err := ParseReader(strings.NewReader(twoSegmentGPX))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	tr, err := rec.Track()
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if len(tr) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(tr))
	}
	if tr[1].HasElevation() {
		t.Errorf("Sample 1 should have unknown elevation")
	}
	if tr.Duration() != time.Minute {
		t.Errorf("Expected 1m duration, got %v", tr.Duration())
	}
}

func TestTrackEmpty(t *testing.T) {
	const empty = `<?xml version="1.0"?><gpx version="1.1" creator="test"><trk><trkseg></trkseg></trk></gpx>`

	rec, err := ParseReader(strings.NewReader(empty))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if _, err := rec.Track(); !errors.Is(err, track.ErrEmptyTrack) {
		t.Errorf("Expected ErrEmptyTrack, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "day1.gpx")
	if err := os.WriteFile(path, []byte(twoSegmentGPX), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tr, rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tr) != 3 || rec.Name != "TMB Day 1" {
		t.Errorf("unexpected load result: %d samples, name %q", len(tr), rec.Name)
	}

	if _, _, err := Load(filepath.Join(dir, "missing.gpx")); err == nil {
		t.Errorf("Expected error for missing file")
	}
}

func TestParseReaderInvalid(t *testing.T) {
	if _, err := ParseReader(strings.NewReader("not xml at all")); err == nil {
		t.Errorf("Expected parse error")
	}
}
