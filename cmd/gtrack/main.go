package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/planbiir/gtrack/internal/batch"
	"github.com/planbiir/gtrack/internal/config"
	"github.com/planbiir/gtrack/internal/logger"
	"github.com/planbiir/gtrack/internal/store"
)

// recordTimeout bounds trip log writes after the batch has finished.
const recordTimeout = 10 * time.Second

func main() {
	var (
		inputDir   = flag.String("d", "", "Directory of GPX files, one per day, sorted by name")
		inputFile  = flag.String("i", "", "Single GPX file")
		outputDir  = flag.String("o", "", "Output directory for charts (default: charts)")
		format     = flag.String("format", "", "Chart format: png, svg, pdf, html (default: png)")
		configFile = flag.String("config", "", "Config file (yaml, json or toml)")
		workers    = flag.Int("workers", 0, "Days processed in parallel (default: one per CPU)")
		failFast   = flag.Bool("fail-fast", false, "Stop at the first failing day")
		cleanTrack = flag.Bool("clean", false, "Remove GPS spikes and smooth elevation before computing metrics")
		dbPath     = flag.String("db", "", "SQLite trip log to record the run in")
		listLog    = flag.Bool("runs", false, "List the runs recorded in the trip log and exit")
		dryRun     = flag.Bool("dry-run", false, "Compute metrics without writing charts")
		statsJSON  = flag.Bool("stats-json", false, "Output per-day statistics as JSON")
		version    = flag.Bool("version", false, "Show version information")
	)

	flag.Usage = func() {
		fmt.Printf("gtrack - Elevation charts and trip metrics from GPX tracks\n\n")
		fmt.Printf("usage: gtrack -d /path/to/days/ | -i /path/to/file.gpx | -db trips.db -runs\n\n")
		fmt.Printf("examples:\n")
		fmt.Printf("  gtrack -d tmb/\n")
		fmt.Printf("  gtrack -d tmb/ -format html -o charts/\n")
		fmt.Printf("  gtrack -i \"Day 3.gpx\" -clean -dry-run -stats-json\n")
		fmt.Printf("  gtrack -db trips.db -runs\n\n")
		fmt.Printf("options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println("gtrack v0.3.0 - GPS track metrics")
		fmt.Println("https://github.com/planbiir/gtrack")
		os.Exit(0)
	}

	if !*listLog && (*inputDir == "") == (*inputFile == "") {
		flag.Usage()
		os.Exit(2)
	}

	conf, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags win over config values
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			conf.Output.Dir = *outputDir
		case "format":
			conf.Output.Format = *format
		case "workers":
			conf.Workers = *workers
		case "fail-fast":
			conf.FailFast = *failFast
		case "clean":
			conf.Clean.Enabled = *cleanTrack
		case "db":
			conf.Store.Path = *dbPath
		}
	})
	if err := conf.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in options: %v\n", err)
		os.Exit(2)
	}

	log := logger.New(conf.LogLevel)

	if *listLog {
		if conf.Store.Path == "" {
			fmt.Fprintf(os.Stderr, "Error: -runs needs a trip log (-db or store.path)\n")
			os.Exit(2)
		}
		if err := listRuns(context.Background(), os.Stdout, conf.Store.Path); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading trip log: %v\n", err)
			os.Exit(1)
		}
		return
	}

	files := []string{*inputFile}
	if *inputDir != "" {
		fmt.Printf("📖 Reading GPX directory: %s\n", *inputDir)
		files, err = batch.Files(*inputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading GPX files: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("📊 %d day(s) to process with %d worker(s)\n", len(files), conf.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, runErr := batch.Run(ctx, files, batch.Options{
		OutputDir:   conf.Output.Dir,
		Format:      conf.Output.Format,
		DryRun:      *dryRun,
		Workers:     conf.Workers,
		FailFast:    conf.FailFast,
		Clean:       conf.Clean.Enabled,
		CleanConfig: conf.CleanConfig(),
		DayPrefix:   conf.Chart.DayPrefix,
		XLabel:      conf.Chart.XLabel,
		YLabel:      conf.Chart.YLabel,
		AnnotateEnd: !conf.Chart.HideEndLabel,
		Annotate:    !conf.Chart.HideStats,
		Text:        conf.ChartText(),
		Lang:        conf.Language(),
		Style:       conf.ChartStyle(),
		Routes:      conf.ChartRoutes(),

		Overview:      !conf.Chart.HideOverview,
		OverviewTitle: conf.Chart.OverviewTitle,

		Logger: log,
	})
	results := report.Days

	if conf.Store.Path != "" && results != nil {
		source := *inputDir
		if source == "" {
			source = *inputFile
		}
		if err := recordRun(ctx, conf.Store.Path, source, conf, results); err != nil {
			log.Error("failed to record run", logger.Err(err))
		}
	}

	if *statsJSON {
		if err := printJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling stats: %v\n", err)
			os.Exit(1)
		}
	} else {
		for _, r := range results {
			printDay(r)
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
	if failed > 0 {
		fmt.Printf("❌ %d of %d day(s) failed\n", failed, len(results))
		os.Exit(1)
	}

	if *dryRun {
		fmt.Printf("🔍 Dry run completed - no files written\n")
		return
	}
	if report.Overview != "" {
		fmt.Printf("🗺️  Overview: %s\n", report.Overview)
	}
	fmt.Printf("✅ %d chart(s) written to %s\n", len(results), conf.Output.Dir)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.New()
	}
	return config.NewFromFile(filepath.Dir(path), filepath.Base(path))
}

// recordRun logs results even when ctx was cancelled by an interrupt, so the
// days processed before it are kept.
func recordRun(ctx context.Context, path, source string, conf *config.Config, results []batch.Result) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	run := &store.Run{Source: source, Format: conf.Output.Format, Cleaned: conf.Clean.Enabled}
	if err := s.BeginRun(ctx, run); err != nil {
		return err
	}

	for _, r := range results {
		d := store.NewDay(run.RunID, r.Day, r.File, r.Summary)
		d.Title = r.Title
		d.Output = r.Output
		if r.Err != nil {
			d.Error = r.Err.Error()
		}
		if err := s.RecordDay(ctx, d); err != nil {
			return err
		}
	}

	fmt.Printf("🗄️  Run %s recorded in %s\n", run.RunID, path)
	return nil
}

// listRuns prints every run in the trip log at path with its days.
func listRuns(ctx context.Context, w io.Writer, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to open trip log: %w", err)
	}
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs recorded in %s\n", path)
		return nil
	}

	for _, r := range runs {
		days, err := s.Days(ctx, r.RunID)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\n🗄️  %s  %s  %s (%s", r.RunID, r.CreatedAt.Format(time.DateTime), r.Source, r.Format)
		if r.Cleaned {
			fmt.Fprintf(w, ", cleaned")
		}
		fmt.Fprintf(w, ")\n")

		var total float64
		for _, d := range days {
			if d.Error != "" {
				fmt.Fprintf(w, "   ❌ Day %d: %s: %s\n", d.Day, filepath.Base(d.File), d.Error)
				continue
			}
			total += d.TotalDistanceM
			fmt.Fprintf(w, "   📍 Day %d: %.2f km, +%.0f m, -%.0f m  %s\n",
				d.Day, d.TotalDistanceM/1000, d.AscentM, d.DescentM, d.Title)
		}
		fmt.Fprintf(w, "   📏 Total: %.2f km over %d day(s)\n", total/1000, len(days))
	}
	return nil
}

type dayJSON struct {
	batch.Result
	Error string `json:"error,omitempty"`
}

func printJSON(results []batch.Result) error {
	out := make([]dayJSON, len(results))
	for i, r := range results {
		out[i] = dayJSON{Result: r}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}

	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonData))
	return nil
}

func printDay(r batch.Result) {
	fmt.Printf("\n📍 Day %d: %s\n", r.Day, filepath.Base(r.File))
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	if r.Err != nil {
		fmt.Printf("❌ %v\n", r.Err)
		return
	}
	if r.Title != "" {
		fmt.Printf("🏷️  %s\n", r.Title)
	}

	s := r.Summary
	fmt.Printf("📏 Distance: %.2f km (%d points)\n", s.TotalDistanceM/1000, s.Samples)
	fmt.Printf("⛰️  Ascent: %.0f m, Descent: %.0f m\n", s.AscentM, s.DescentM)
	if s.MinElevationM != nil && s.MaxElevationM != nil {
		fmt.Printf("📐 Elevation: %.0f → %.0f m\n", *s.MinElevationM, *s.MaxElevationM)
	}
	if s.Duration > 0 {
		fmt.Printf("⏱️  Duration: %v\n", s.Duration)
	}
	if c := r.CleanStats; c != nil {
		fmt.Printf("🧹 Cleaning: %d → %d points (%s, P95=%.1f m/s), %d smoothed\n",
			c.OriginalPoints, c.FinalPoints, c.ActivityType, c.P95Speed, c.SmoothedPoints)
		if c.SafetyOverride {
			fmt.Printf("   ⚠️  Spike filter skipped: it would remove over the safety limit\n")
		}
	}
	if r.Output != "" {
		fmt.Printf("💾 Chart: %s\n", r.Output)
	}
}
