// Package chart maps a track summary onto a backend-agnostic elevation chart
// description. It only formats; every number comes from the summary.
package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/planbiir/gtrack/internal/summary"
)

// Spec describes one elevation-vs-distance chart.
type Spec struct {
	X []float64 // cumulative distance, km
	Y []float64 // elevation, m; NaN where unknown

	Title  string
	XLabel string
	YLabel string

	EndLabel   *EndLabel
	Annotation *string

	// Overlaid lines, one per group. When set, X, Y and EndLabel are unused.
	Series []Series

	Style Style
}

// Series is one coloured line of a grouped chart.
type Series struct {
	Name     string
	X, Y     []float64 // Y is NaN where unknown
	Color    string
	EndLabel *EndLabel
}

// Lines returns the lines to draw: Series when set, otherwise X and Y as a
// single line in the primary colour.
func (s Spec) Lines() []Series {
	if len(s.Series) > 0 {
		return s.Series
	}
	if len(s.X) == 0 {
		return nil
	}
	return []Series{{X: s.X, Y: s.Y, Color: s.Style.Primary, EndLabel: s.EndLabel}}
}

// EndLabel marks the last plotted point.
type EndLabel struct {
	X, Y float64
	Text string
}

// Text holds the captions of the annotation block.
type Text struct {
	Distance string
	Ascent   string
	Descent  string
	Duration string
}

// DefaultText returns English captions.
func DefaultText() Text {
	return Text{
		Distance: "Distance",
		Ascent:   "Ascent",
		Descent:  "Descent",
		Duration: "Duration",
	}
}

// Options controls titling and annotation.
type Options struct {
	Title  string
	XLabel string
	YLabel string

	AnnotateEnd bool
	EndName     string

	Annotate bool
	Text     Text
	Lang     language.Tag

	Style Style
}

// Build returns the chart for s. Slices are copied, so later changes to s do
// not reach the returned Spec.
func Build(s summary.Summary, o Options) Spec {
	spec := Spec{
		X:      append([]float64(nil), s.CumulativeKm...),
		Y:      make([]float64, len(s.Elevations)),
		Title:  o.Title,
		XLabel: o.XLabel,
		YLabel: o.YLabel,
		Style:  o.Style.clone(),
	}

	for i, e := range s.Elevations {
		spec.Y[i] = value(e)
	}

	if o.AnnotateEnd {
		spec.EndLabel = endLabel(spec.X, spec.Y, o.EndName)
	}

	if o.Annotate {
		text := annotation(s.TotalDistanceM, s.AscentM, s.DescentM, s.Duration, o)
		spec.Annotation = &text
	}

	return spec
}

// Group is one named line of a grouped chart, typically one day of a trip.
type Group struct {
	Name    string
	Summary summary.Summary
}

// BuildGrouped overlays every group on one chart, each line starting at 0 km.
// Colours cycle through the style's Colorway. The annotation, when requested,
// holds summary.Totals over all groups.
func BuildGrouped(groups []Group, o Options) Spec {
	spec := Spec{
		Title:  o.Title,
		XLabel: o.XLabel,
		YLabel: o.YLabel,
		Series: make([]Series, 0, len(groups)),
		Style:  o.Style.clone(),
	}

	days := make([]summary.Summary, 0, len(groups))
	for i, g := range groups {
		line := Series{
			Name:  g.Name,
			X:     append([]float64(nil), g.Summary.CumulativeKm...),
			Y:     make([]float64, len(g.Summary.Elevations)),
			Color: spec.Style.color(i),
		}
		for j, e := range g.Summary.Elevations {
			line.Y[j] = value(e)
		}
		if o.AnnotateEnd {
			line.EndLabel = endLabel(line.X, line.Y, g.Name)
		}
		spec.Series = append(spec.Series, line)
		days = append(days, g.Summary)
	}

	if o.Annotate && len(groups) > 0 {
		total := summary.Totals(days...)
		text := annotation(total.TotalDistanceM, total.AscentM, total.DescentM, total.Duration, o)
		spec.Annotation = &text
	}

	return spec
}

func value(e *float64) float64 {
	if e == nil {
		return math.NaN()
	}
	return *e
}

// endLabel picks the last point with a known elevation.
func endLabel(x, y []float64, name string) *EndLabel {
	for i := min(len(x), len(y)) - 1; i >= 0; i-- {
		if !math.IsNaN(y[i]) {
			return &EndLabel{X: x[i], Y: y[i], Text: name}
		}
	}
	return nil
}

func annotation(distance, ascent, descent float64, duration time.Duration, o Options) string {
	text := o.Text
	if text == (Text{}) {
		text = DefaultText()
	}
	lang := o.Lang
	if lang == language.Und {
		lang = language.English
	}
	p := message.NewPrinter(lang)

	lines := []string{
		p.Sprintf("%s: %.0fm", text.Distance, distance),
		p.Sprintf("%s: %.0f", text.Ascent, ascent),
		p.Sprintf("%s: %.0f", text.Descent, descent),
	}
	if duration > 0 {
		lines = append(lines, p.Sprintf("%s: %s", text.Duration, formatDuration(duration)))
	}

	return strings.Join(lines, "\n")
}

// formatDuration renders d as "5h07m", or "42m" under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
