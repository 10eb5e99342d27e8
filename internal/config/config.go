// Package config loads gtrack settings from an optional file and GTRACK_*
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kkyr/fig"
	"golang.org/x/text/language"

	"github.com/planbiir/gtrack/internal/chart"
	"github.com/planbiir/gtrack/internal/clean"
	"github.com/planbiir/gtrack/internal/render"
)

const configEnv = "GTRACK"

// Config represents the application's configuration structure.
type Config struct {
	LogLevel slog.Level `fig:"loglevel" default:"0"`

	// 0 uses one worker per CPU
	Workers  int  `fig:"workers"`
	FailFast bool `fig:"fail_fast"`

	Output struct {
		Dir string `fig:"dir" default:"charts"`
		// Allowed values: png, svg, pdf, html
		Format string `fig:"format" default:"png"`
	} `fig:"output"`

	Chart struct {
		DayPrefix    string `fig:"day_prefix" default:"Day"`
		XLabel       string `fig:"x_label" default:"Distance (km)"`
		YLabel       string `fig:"y_label" default:"Elevation (m)"`
		HideEndLabel bool   `fig:"hide_end_label"`
		HideStats    bool   `fig:"hide_stats"`
		HideOverview bool   `fig:"hide_overview"`
		// Title of the chart overlaying all days
		OverviewTitle string `fig:"overview_title" default:"All days"`
		// BCP 47 tag used for thousands separators
		Language string `fig:"language" default:"en"`

		Text struct {
			Distance string `fig:"distance" default:"Distance"`
			Ascent   string `fig:"ascent" default:"Ascent"`
			Descent  string `fig:"descent" default:"Descent"`
			Duration string `fig:"duration" default:"Duration"`
		} `fig:"text"`
	} `fig:"chart"`

	Style struct {
		Width     int      `fig:"width" default:"800"`
		Height    int      `fig:"height" default:"400"`
		Primary   string   `fig:"primary" default:"#1C4C38"`
		Secondary string   `fig:"secondary" default:"#005288"`
		Colorway  []string `fig:"colorway"`
		// 0 lets the renderer pick the ticks
		TickStep float64 `fig:"tick_step"`
	} `fig:"style"`

	// Zero is meaningful for these, so their defaults come from defaults()
	// rather than default tags.
	Clean struct {
		Enabled bool `fig:"enabled"`
		// 0 or 1 disables smoothing
		ElevationWindow int     `fig:"elevation_window"`
		MaxSpeed        float64 `fig:"max_speed"`
		// 0 disables the teleport check
		TeleportMeters float64 `fig:"teleport_meters"`
	} `fig:"clean"`

	Store struct {
		// Empty disables the trip log
		Path string `fig:"path"`
	} `fig:"store"`

	Routes []Route `fig:"routes"`
}

// Route names the endpoints of one day.
type Route struct {
	Day   int    `fig:"day"`
	Start string `fig:"start"`
	End   string `fig:"end"`
}

// defaults returns a Config holding the values fig cannot default because
// an explicit 0 must survive loading.
func defaults() *Config {
	conf := new(Config)
	conf.Style.TickStep = 200
	conf.Clean.ElevationWindow = 7
	conf.Clean.TeleportMeters = 120
	return conf
}

// NewFromFile loads file from dir, then applies environment overrides.
func NewFromFile(dir, file string) (*Config, error) {
	conf := defaults()
	_, err := os.Stat(filepath.Join(dir, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(dir), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, conf.Validate()
}

// New loads defaults and environment overrides only.
func New() (*Config, error) {
	conf := defaults()
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load config: %w", err)
	}

	return conf, conf.Validate()
}

// Validate checks value ranges and fills derived defaults.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	c.Output.Format = strings.ToLower(c.Output.Format)
	if !render.IsValid(c.Output.Format) {
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}
	if _, err := language.Parse(c.Chart.Language); err != nil {
		return fmt.Errorf("invalid chart language %q: %w", c.Chart.Language, err)
	}
	if c.Style.Width <= 0 || c.Style.Height <= 0 {
		return fmt.Errorf("invalid chart size: %dx%d", c.Style.Width, c.Style.Height)
	}
	if err := c.ChartStyle().Validate(); err != nil {
		return fmt.Errorf("invalid style: %w", err)
	}
	if c.Style.TickStep < 0 {
		return fmt.Errorf("invalid tick step: %f", c.Style.TickStep)
	}
	if c.Clean.ElevationWindow < 0 || c.Clean.MaxSpeed < 0 || c.Clean.TeleportMeters < 0 {
		return fmt.Errorf("invalid clean settings: window=%d max_speed=%f teleport=%f",
			c.Clean.ElevationWindow, c.Clean.MaxSpeed, c.Clean.TeleportMeters)
	}

	seen := make(map[int]bool, len(c.Routes))
	for _, r := range c.Routes {
		if r.Day <= 0 {
			return fmt.Errorf("invalid route day: %d", r.Day)
		}
		if seen[r.Day] {
			return fmt.Errorf("duplicate route for day %d", r.Day)
		}
		seen[r.Day] = true
	}

	return nil
}

// Language returns the parsed chart language.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Chart.Language)
	if err != nil {
		return language.English
	}
	return tag
}

// ChartStyle returns the default style with the configured overrides.
func (c *Config) ChartStyle() chart.Style {
	s := chart.DefaultStyle()
	s.Width = c.Style.Width
	s.Height = c.Style.Height
	s.Primary = c.Style.Primary
	s.Secondary = c.Style.Secondary
	if len(c.Style.Colorway) > 0 {
		s.Colorway = append([]string(nil), c.Style.Colorway...)
	}
	s.YTickStep = c.Style.TickStep
	return s
}

// ChartText returns the annotation captions.
func (c *Config) ChartText() chart.Text {
	return chart.Text{
		Distance: c.Chart.Text.Distance,
		Ascent:   c.Chart.Text.Ascent,
		Descent:  c.Chart.Text.Descent,
		Duration: c.Chart.Text.Duration,
	}
}

// ChartRoutes indexes the configured routes by day.
func (c *Config) ChartRoutes() chart.Routes {
	routes := make(chart.Routes, len(c.Routes))
	for _, r := range c.Routes {
		routes[r.Day] = chart.Route{Start: r.Start, End: r.End}
	}
	return routes
}

// CleanConfig returns the cleaner parameters, starting from its defaults.
func (c *Config) CleanConfig() clean.Config {
	cc := clean.DefaultConfig()
	cc.ElevationWindow = c.Clean.ElevationWindow
	cc.MaxSpeed = c.Clean.MaxSpeed
	cc.TeleportMeters = c.Clean.TeleportMeters
	return cc
}
