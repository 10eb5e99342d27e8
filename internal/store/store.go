// Package store keeps a SQLite log of processed trips: one run per CLI
// invocation and one row per day within it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/planbiir/gtrack/internal/summary"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	source     TEXT NOT NULL,
	format     TEXT NOT NULL,
	cleaned    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS days (
	run_id           TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	day              INTEGER NOT NULL,
	file             TEXT NOT NULL,
	title            TEXT NOT NULL DEFAULT '',
	samples          INTEGER NOT NULL DEFAULT 0,
	total_distance_m REAL NOT NULL DEFAULT 0,
	ascent_m         REAL NOT NULL DEFAULT 0,
	descent_m        REAL NOT NULL DEFAULT 0,
	min_elevation_m  REAL,
	max_elevation_m  REAL,
	duration_ns      INTEGER NOT NULL DEFAULT 0,
	output           TEXT,
	error            TEXT,
	PRIMARY KEY (run_id, day)
);
`

// Store is a trip log backed by a SQLite file.
type Store struct {
	db *sql.DB
}

// Run is one batch invocation.
type Run struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
	Format    string    `json:"format"`
	Cleaned   bool      `json:"cleaned"`
}

// Day is the logged outcome of one recording.
type Day struct {
	RunID          string        `json:"run_id"`
	Day            int           `json:"day"`
	File           string        `json:"file"`
	Title          string        `json:"title"`
	Samples        int           `json:"samples"`
	TotalDistanceM float64       `json:"total_distance_m"`
	AscentM        float64       `json:"ascent_m"`
	DescentM       float64       `json:"descent_m"`
	MinElevationM  *float64      `json:"min_elevation_m,omitempty"`
	MaxElevationM  *float64      `json:"max_elevation_m,omitempty"`
	Duration       time.Duration `json:"duration_ns"`
	Output         string        `json:"output,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// NewDay fills the metric columns of a Day from s.
func NewDay(runID string, day int, file string, s summary.Summary) *Day {
	return &Day{
		RunID:          runID,
		Day:            day,
		File:           file,
		Samples:        s.Samples,
		TotalDistanceM: s.TotalDistanceM,
		AscentM:        s.AscentM,
		DescentM:       s.DescentM,
		MinElevationM:  s.MinElevationM,
		MaxElevationM:  s.MaxElevationM,
		Duration:       s.Duration,
	}
}

// Open opens or creates the log at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trip log %s: %w", path, err)
	}
	// PRAGMAs are per connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun inserts r. An empty RunID is replaced by a new UUID and a zero
// CreatedAt by the current time.
func (s *Store) BeginRun(ctx context.Context, r *Run) error {
	if r.RunID == "" {
		r.RunID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, source, format, cleaned) VALUES (?, ?, ?, ?, ?)`,
		r.RunID, r.CreatedAt.UnixNano(), r.Source, r.Format, r.Cleaned,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordDay inserts or replaces the row for d.Day within d.RunID.
func (s *Store) RecordDay(ctx context.Context, d *Day) error {
	query := `
		INSERT OR REPLACE INTO days (
			run_id, day, file, title, samples,
			total_distance_m, ascent_m, descent_m,
			min_elevation_m, max_elevation_m, duration_ns,
			output, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		d.RunID, d.Day, d.File, d.Title, d.Samples,
		d.TotalDistanceM, d.AscentM, d.DescentM,
		nullFloat64(d.MinElevationM), nullFloat64(d.MaxElevationM), int64(d.Duration),
		nullString(d.Output), nullString(d.Error),
	)
	if err != nil {
		return fmt.Errorf("insert day %d: %w", d.Day, err)
	}
	return nil
}

// Days returns the logged days of runID in day order.
func (s *Store) Days(ctx context.Context, runID string) ([]*Day, error) {
	query := `
		SELECT run_id, day, file, title, samples,
		       total_distance_m, ascent_m, descent_m,
		       min_elevation_m, max_elevation_m, duration_ns,
		       output, error
		FROM days
		WHERE run_id = ?
		ORDER BY day
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var days []*Day
	for rows.Next() {
		d := &Day{}
		var minEle, maxEle sql.NullFloat64
		var output, errText sql.NullString
		var durationNs int64

		err := rows.Scan(
			&d.RunID, &d.Day, &d.File, &d.Title, &d.Samples,
			&d.TotalDistanceM, &d.AscentM, &d.DescentM,
			&minEle, &maxEle, &durationNs,
			&output, &errText,
		)
		if err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}

		if minEle.Valid {
			d.MinElevationM = &minEle.Float64
		}
		if maxEle.Valid {
			d.MaxElevationM = &maxEle.Float64
		}
		d.Duration = time.Duration(durationNs)
		d.Output = output.String
		d.Error = errText.String
		days = append(days, d)
	}
	return days, rows.Err()
}

// Runs returns all runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, created_at, source, format, cleaned FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var createdAt int64
		if err := rows.Scan(&r.RunID, &createdAt, &r.Source, &r.Format, &r.Cleaned); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
