package chart

import (
	"errors"
	"fmt"
)

// ErrInvalidColor is returned by Style.Validate for a colour that is not "#RRGGBB".
var ErrInvalidColor = errors.New("invalid colour")

// Style is the presentation configuration handed to renderers.
type Style struct {
	Width  int // pixels
	Height int // pixels

	FontFamily string
	TitleSize  float64 // points
	TickSize   float64
	AxisSize   float64
	FontSize   float64

	// Hex colours, "#RRGGBB"
	Primary   string
	Secondary string
	Grey      string
	LightGrey string
	Colorway  []string

	// Distance in meters between y axis ticks, 0 lets the renderer decide
	YTickStep float64
}

// DefaultStyle returns the palette and sizes used for daily elevation charts.
func DefaultStyle() Style {
	return Style{
		Width:      800,
		Height:     400,
		FontFamily: "Arial",
		TitleSize:  14,
		TickSize:   10,
		AxisSize:   10,
		FontSize:   10,
		Primary:    "#1C4C38",
		Secondary:  "#005288",
		Grey:       "#C4C4C4",
		LightGrey:  "#f9f9f9",
		Colorway: []string{
			"#005288",
			"#1C4C38",
			"#01B2B3",
			"#DD663C",
			"#A899A5",
			"#492a42",
			"#d8eded",
			"#bdd7e5",
		},
		YTickStep: 200,
	}
}

// clone returns s with its own Colorway backing array.
func (s Style) clone() Style {
	s.Colorway = append([]string(nil), s.Colorway...)
	return s
}

// Validate checks every colour of s. Grey, LightGrey and Colorway may be empty.
func (s Style) Validate() error {
	named := []struct {
		name, value string
		optional    bool
	}{
		{"primary", s.Primary, false},
		{"secondary", s.Secondary, false},
		{"grey", s.Grey, true},
		{"light grey", s.LightGrey, true},
	}
	for _, c := range named {
		if c.optional && c.value == "" {
			continue
		}
		if !IsHexColor(c.value) {
			return fmt.Errorf("%w: %s %q", ErrInvalidColor, c.name, c.value)
		}
	}
	for i, c := range s.Colorway {
		if !IsHexColor(c) {
			return fmt.Errorf("%w: colorway[%d] %q", ErrInvalidColor, i, c)
		}
	}
	return nil
}

// color returns the colorway entry for line i, or Primary without a colorway.
func (s Style) color(i int) string {
	if len(s.Colorway) == 0 {
		return s.Primary
	}
	return s.Colorway[i%len(s.Colorway)]
}

// IsHexColor reports whether c has the form "#RRGGBB".
func IsHexColor(c string) bool {
	if len(c) != 7 || c[0] != '#' {
		return false
	}
	for _, r := range c[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
