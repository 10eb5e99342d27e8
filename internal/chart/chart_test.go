package chart

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/text/language"

	"github.com/planbiir/gtrack/internal/summary"
	"github.com/planbiir/gtrack/internal/track"
)

func ptr(v float64) *float64 { return &v }

func testSummary() summary.Summary {
	return summary.Summary{
		Distances:      []float64{0, 4211.7, 8134.2},
		CumulativeKm:   []float64{0, 4.2117, 12.3459},
		TotalDistanceM: 12345.9,
		AscentM:        1234,
		DescentM:       987,
		Elevations:     []*float64{ptr(1035), ptr(2269), ptr(1782)},
		Samples:        3,
	}
}

func TestBuildSeries(t *testing.T) {
	s := testSummary()
	spec := Build(s, Options{Title: "Day 1", XLabel: "Km", YLabel: "Elevation", Style: DefaultStyle()})

	want := Spec{
		X:      []float64{0, 4.2117, 12.3459},
		Y:      []float64{1035, 2269, 1782},
		Title:  "Day 1",
		XLabel: "Km",
		YLabel: "Elevation",
		Style:  DefaultStyle(),
	}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("spec mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildUnknownElevationIsNaN(t *testing.T) {
	s := testSummary()
	s.Elevations[2] = nil

	spec := Build(s, Options{AnnotateEnd: true, EndName: "Les Contamines"})

	want := []float64{1035, 2269, math.NaN()}
	if diff := cmp.Diff(want, spec.Y, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("y series mismatch (-want +got):\n%s", diff)
	}

	// end label falls back to the last known point
	wantEnd := &EndLabel{X: 4.2117, Y: 2269, Text: "Les Contamines"}
	if diff := cmp.Diff(wantEnd, spec.EndLabel); diff != "" {
		t.Errorf("end label mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEndLabel(t *testing.T) {
	spec := Build(testSummary(), Options{AnnotateEnd: true, EndName: "Chamonix"})
	want := &EndLabel{X: 12.3459, Y: 1782, Text: "Chamonix"}
	if diff := cmp.Diff(want, spec.EndLabel); diff != "" {
		t.Errorf("end label mismatch (-want +got):\n%s", diff)
	}

	if spec := Build(testSummary(), Options{}); spec.EndLabel != nil {
		t.Errorf("expected no end label when not requested, got %+v", spec.EndLabel)
	}

	noEle := testSummary()
	noEle.Elevations = []*float64{nil, nil, nil}
	if spec := Build(noEle, Options{AnnotateEnd: true}); spec.EndLabel != nil {
		t.Errorf("expected no end label without any elevation, got %+v", spec.EndLabel)
	}
}

func TestBuildAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*summary.Summary)
		options Options
		want    string
	}{
		{
			name:    "english defaults",
			options: Options{Annotate: true},
			want:    "Distance: 12,346m\nAscent: 1,234\nDescent: 987",
		},
		{
			name:    "danish captions",
			options: Options{Annotate: true, Lang: language.Danish, Text: Text{Distance: "Distance", Ascent: "Højdemeter op", Descent: "Højdemeter ned", Duration: "Tid"}},
			want:    "Distance: 12.346m\nHøjdemeter op: 1.234\nHøjdemeter ned: 987",
		},
		{
			name:    "with duration",
			mutate:  func(s *summary.Summary) { s.Duration = 5*time.Hour + 7*time.Minute + 20*time.Second },
			options: Options{Annotate: true},
			want:    "Distance: 12,346m\nAscent: 1,234\nDescent: 987\nDuration: 5h07m",
		},
		{
			name:    "short day",
			mutate:  func(s *summary.Summary) { s.TotalDistanceM = 222.4; s.AscentM = 50; s.DescentM = 60; s.Duration = 42 * time.Minute },
			options: Options{Annotate: true},
			want:    "Distance: 222m\nAscent: 50\nDescent: 60\nDuration: 42m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSummary()
			if tt.mutate != nil {
				tt.mutate(&s)
			}
			spec := Build(s, tt.options)
			if spec.Annotation == nil {
				t.Fatal("expected annotation")
			}
			if *spec.Annotation != tt.want {
				t.Errorf("annotation mismatch:\ngot:  %q\nwant: %q", *spec.Annotation, tt.want)
			}
		})
	}

	if spec := Build(testSummary(), Options{}); spec.Annotation != nil {
		t.Errorf("expected no annotation when not requested")
	}
}

func TestBuildCopiesInput(t *testing.T) {
	s := testSummary()
	style := DefaultStyle()
	spec := Build(s, Options{Style: style})

	s.CumulativeKm[1] = 99
	*s.Elevations[1] = 0
	style.Colorway[0] = "#000000"

	if spec.X[1] != 4.2117 {
		t.Errorf("spec x series aliases the summary")
	}
	if spec.Y[1] != 2269 {
		t.Errorf("spec y series aliases the summary")
	}
	if spec.Style.Colorway[0] != "#005288" {
		t.Errorf("spec style aliases the caller's palette")
	}
}

func TestBuildFromPipeline(t *testing.T) {
	s, err := summary.Build(track.Track{
		{Lat: 0, Lon: 0, Elevation: track.Meters(100)},
		{Lat: 0, Lon: 0.001, Elevation: track.Meters(150)},
		{Lat: 0, Lon: 0.002, Elevation: track.Meters(90)},
	})
	if err != nil {
		t.Fatalf("summary.Build failed: %v", err)
	}

	spec := Build(s, Options{Annotate: true})
	if len(spec.X) != 3 || len(spec.Y) != 3 {
		t.Fatalf("expected 3 points, got x=%d y=%d", len(spec.X), len(spec.Y))
	}
	if math.Abs(spec.X[2]-0.2224) > 1e-6 {
		t.Errorf("expected last x ~0.2224 km, got %f", spec.X[2])
	}
	if want := "Distance: 222m\nAscent: 50\nDescent: 60"; *spec.Annotation != want {
		t.Errorf("annotation mismatch: got %q want %q", *spec.Annotation, want)
	}
}

func TestBuildGrouped(t *testing.T) {
	day1 := testSummary()
	day2 := testSummary()
	day2.Elevations = []*float64{ptr(1782), ptr(2480), nil}
	day2.Duration = 4 * time.Hour

	style := DefaultStyle()
	style.Colorway = []string{"#005288", "#01B2B3"}
	groups := []Group{
		{Name: "Day 1", Summary: day1},
		{Name: "Day 2", Summary: day2},
		{Name: "Day 3", Summary: day1},
	}

	spec := BuildGrouped(groups, Options{Title: "Tour du Mont Blanc", AnnotateEnd: true, Annotate: true, Style: style})

	if spec.X != nil || spec.Y != nil || spec.EndLabel != nil {
		t.Errorf("grouped spec must only use Series")
	}
	if len(spec.Series) != 3 {
		t.Fatalf("expected 3 series, got %d", len(spec.Series))
	}

	want := Series{
		Name:     "Day 2",
		X:        []float64{0, 4.2117, 12.3459},
		Y:        []float64{1782, 2480, math.NaN()},
		Color:    "#01B2B3",
		EndLabel: &EndLabel{X: 4.2117, Y: 2480, Text: "Day 2"},
	}
	if diff := cmp.Diff(want, spec.Series[1], cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}

	// colours cycle through the colorway
	if spec.Series[0].Color != "#005288" || spec.Series[2].Color != "#005288" {
		t.Errorf("unexpected colours: %s, %s", spec.Series[0].Color, spec.Series[2].Color)
	}

	if spec.Annotation == nil {
		t.Fatal("expected annotation with trip totals")
	}
	if want := "Distance: 37,038m\nAscent: 3,702\nDescent: 2,961\nDuration: 4h00m"; *spec.Annotation != want {
		t.Errorf("annotation mismatch:\ngot:  %q\nwant: %q", *spec.Annotation, want)
	}

	if got := spec.Lines(); len(got) != 3 || got[1].Name != "Day 2" {
		t.Errorf("Lines must return the grouped series")
	}
}

func TestBuildGroupedWithoutColorway(t *testing.T) {
	style := DefaultStyle()
	style.Colorway = nil

	spec := BuildGrouped([]Group{{Name: "Day 1", Summary: testSummary()}}, Options{Style: style})
	if spec.Series[0].Color != style.Primary {
		t.Errorf("expected primary colour, got %s", spec.Series[0].Color)
	}
	if spec.Series[0].EndLabel != nil || spec.Annotation != nil {
		t.Errorf("expected no labels when not requested")
	}

	if empty := BuildGrouped(nil, Options{Annotate: true}); empty.Annotation != nil || len(empty.Lines()) != 0 {
		t.Errorf("expected an empty chart without groups")
	}
}

func TestSpecLinesSingle(t *testing.T) {
	spec := Build(testSummary(), Options{AnnotateEnd: true, EndName: "Chamonix", Style: DefaultStyle()})

	lines := spec.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0].Color != "#1C4C38" || lines[0].EndLabel == nil || lines[0].EndLabel.Text != "Chamonix" {
		t.Errorf("unexpected line: %+v", lines[0])
	}
	if len(Spec{}.Lines()) != 0 {
		t.Errorf("expected no lines for an empty spec")
	}
}

func TestStyleValidate(t *testing.T) {
	if err := DefaultStyle().Validate(); err != nil {
		t.Fatalf("default style invalid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Style)
	}{
		{"primary", func(s *Style) { s.Primary = "green" }},
		{"secondary", func(s *Style) { s.Secondary = "" }},
		{"grey", func(s *Style) { s.Grey = "#C4C4C" }},
		{"colorway", func(s *Style) { s.Colorway = append(s.Colorway, "#GGGGGG") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultStyle()
			tt.mutate(&s)
			if err := s.Validate(); !errors.Is(err, ErrInvalidColor) {
				t.Errorf("expected ErrInvalidColor, got %v", err)
			}
		})
	}

	optional := DefaultStyle()
	optional.Grey, optional.LightGrey, optional.Colorway = "", "", nil
	if err := optional.Validate(); err != nil {
		t.Errorf("empty optional colours must be accepted: %v", err)
	}
}
