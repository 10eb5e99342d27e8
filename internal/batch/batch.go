// Package batch runs the metrics pipeline over a set of recordings, one per
// day, and writes a chart for each.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/planbiir/gtrack/internal/chart"
	"github.com/planbiir/gtrack/internal/clean"
	"github.com/planbiir/gtrack/internal/gpx"
	"github.com/planbiir/gtrack/internal/logger"
	"github.com/planbiir/gtrack/internal/render"
	"github.com/planbiir/gtrack/internal/summary"
)

// Options configures a batch run.
type Options struct {
	OutputDir string
	Format    string
	DryRun    bool // compute metrics but write nothing

	Workers  int // < 1 runs sequentially
	FailFast bool

	Clean       bool
	CleanConfig clean.Config

	DayPrefix   string
	XLabel      string
	YLabel      string
	AnnotateEnd bool
	Annotate    bool
	Text        chart.Text
	Lang        language.Tag
	Style       chart.Style
	Routes      chart.Routes

	// Overview overlays every successful day on one extra chart once at
	// least two days succeeded.
	Overview      bool
	OverviewTitle string

	Logger *logger.Logger
}

// Result is the outcome of one day.
type Result struct {
	Day   int    `json:"day"`
	File  string `json:"file"`
	Title string `json:"title"`

	Summary    summary.Summary `json:"summary"`
	CleanStats *clean.Stats    `json:"clean,omitempty"`

	Output         string        `json:"output,omitempty"`
	ProcessingTime time.Duration `json:"processing_time_ns"`
	Err            error         `json:"-"`
}

// Report is the outcome of a batch run.
type Report struct {
	Days []Result `json:"days"`

	// Overview is the path of the overlay chart, empty when none was written.
	Overview string `json:"overview,omitempty"`
}

// overviewName is the base name of the overlay chart in OutputDir.
const overviewName = "overview"

// Files returns the GPX files in dir sorted by name; the position in the
// returned slice is the day index.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".gpx") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no GPX files in %s", dir)
	}
	return files, nil
}

// Run processes files[i] as day i+1. Report.Days is in day order.
//
// With FailFast the first failing day cancels the days not yet started and
// its error is returned. Otherwise failures are only reported in Result.Err.
// The overview chart is skipped when the run is cancelled or fails fast.
func Run(ctx context.Context, files []string, opts Options) (Report, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	renderer, err := render.New(opts.Format)
	if err != nil {
		return Report{}, err
	}
	opts.Format = strings.ToLower(opts.Format)

	if err := opts.Style.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid chart style: %w", err)
	}

	if !opts.DryRun {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return Report{}, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Workers, 1))

	for i, file := range files {
		day := i + 1
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Day: day, File: file, Err: err}
				return nil
			}

			results[i] = processDay(day, file, renderer, opts)
			if err := results[i].Err; err != nil {
				log.Error("day failed", slog.Int("day", day), slog.String("file", file), logger.Err(err))
				if opts.FailFast {
					return fmt.Errorf("day %d: %w", day, err)
				}
				return nil
			}

			log.Info("day processed",
				slog.Int("day", day),
				slog.String("file", file),
				slog.Float64("distance_m", results[i].Summary.TotalDistanceM),
				slog.Float64("ascent_m", results[i].Summary.AscentM),
				slog.Float64("descent_m", results[i].Summary.DescentM),
				slog.String("output", results[i].Output),
			)
			return nil
		})
	}

	report := Report{Days: results}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if !opts.Overview {
		return report, nil
	}
	spec, ok := overview(results, opts)
	if !ok || opts.DryRun {
		return report, nil
	}
	path := filepath.Join(opts.OutputDir, overviewName+"."+opts.Format)
	for _, r := range results {
		if r.Output == path {
			return report, fmt.Errorf("overview would overwrite the chart of day %d", r.Day)
		}
	}
	if err := writeChart(path, renderer, spec); err != nil {
		log.Error("overview failed", logger.Err(err))
		return report, fmt.Errorf("overview: %w", err)
	}
	log.Info("overview written", slog.Int("days", len(spec.Series)), slog.String("output", path))
	report.Overview = path
	return report, nil
}

// overview overlays the successful days. It reports false when fewer than
// two days succeeded.
func overview(results []Result, opts Options) (chart.Spec, bool) {
	var groups []chart.Group
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		groups = append(groups, chart.Group{
			Name:    strings.TrimSpace(fmt.Sprintf("%s %d", opts.DayPrefix, r.Day)),
			Summary: r.Summary,
		})
	}
	if len(groups) < 2 {
		return chart.Spec{}, false
	}

	return chart.BuildGrouped(groups, chart.Options{
		Title:       opts.OverviewTitle,
		XLabel:      opts.XLabel,
		YLabel:      opts.YLabel,
		AnnotateEnd: opts.AnnotateEnd,
		Annotate:    opts.Annotate,
		Text:        opts.Text,
		Lang:        opts.Lang,
		Style:       opts.Style,
	}), true
}

func processDay(day int, file string, renderer render.Renderer, opts Options) (res Result) {
	start := time.Now()
	res = Result{Day: day, File: file}
	defer func() { res.ProcessingTime = time.Since(start) }()

	t, rec, err := gpx.Load(file)
	if err != nil {
		res.Err = err
		return res
	}

	if opts.Clean {
		cleaned, err := clean.Clean(t, opts.CleanConfig)
		if err != nil {
			res.Err = fmt.Errorf("failed to clean %s: %w", file, err)
			return res
		}
		t = cleaned.Track
		res.CleanStats = &cleaned.Stats
	}

	s, err := summary.Build(t)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", file, err)
		return res
	}
	res.Summary = s

	res.Title = opts.Routes.Title(day, opts.DayPrefix)
	endName := opts.Routes.EndName(day)
	if endName == "" {
		endName = rec.Name
	}

	spec := chart.Build(s, chart.Options{
		Title:       res.Title,
		XLabel:      opts.XLabel,
		YLabel:      opts.YLabel,
		AnnotateEnd: opts.AnnotateEnd,
		EndName:     endName,
		Annotate:    opts.Annotate,
		Text:        opts.Text,
		Lang:        opts.Lang,
		Style:       opts.Style,
	})

	if opts.DryRun {
		return res
	}

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + "." + opts.Format
	res.Output = filepath.Join(opts.OutputDir, name)
	if err := writeChart(res.Output, renderer, spec); err != nil {
		res.Err = err
		res.Output = ""
	}
	return res
}

func writeChart(path string, renderer render.Renderer, spec chart.Spec) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := renderer.Render(f, spec); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}
