// Package render turns a finished chart.Spec into an image or HTML page.
// Renderers never compute metrics; everything they draw comes from the chart.Spec.
package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/planbiir/gtrack/internal/chart"
)

// Output formats
const (
	PNG  = "png"
	SVG  = "svg"
	PDF  = "pdf"
	HTML = "html"
)

// ValidFormats contains all supported output formats
var ValidFormats = []string{PNG, SVG, PDF, HTML}

// Renderer writes one chart to w.
type Renderer interface {
	Render(w io.Writer, s chart.Spec) error
}

// IsValid checks if the given format is supported
func IsValid(format string) bool {
	for _, f := range ValidFormats {
		if format == f {
			return true
		}
	}
	return false
}

// New returns the renderer for format.
func New(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case PNG, SVG, PDF:
		return Plot{Format: strings.ToLower(format)}, nil
	case HTML:
		return ECharts{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (valid: %s)", format, strings.Join(ValidFormats, ", "))
	}
}

// showLegend reports whether lines need a legend: several lines and no end
// labels naming them.
func showLegend(lines []chart.Series) bool {
	if len(lines) < 2 {
		return false
	}
	for _, l := range lines {
		if l.EndLabel != nil || l.Name == "" {
			return false
		}
	}
	return true
}

// parseHex converts "#RRGGBB" to a colour. Malformed input yields opaque black;
// styles are checked with chart.Style.Validate before rendering.
func parseHex(s string) color.RGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil || len(strings.TrimPrefix(s, "#")) != 6 {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
