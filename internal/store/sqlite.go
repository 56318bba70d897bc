// Package store persists analysis runs and per-zone metrics in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/urbanmetrics/transitgap/internal/model"
)

// Store wraps a SQLite database holding analysis history.
type Store struct {
	db *sql.DB
}

// Params records the configuration an analysis ran with.
type Params struct {
	SourceCRS         string  `json:"source_crs"`
	TargetCRS         string  `json:"target_crs"`
	MinAreaKm2        float64 `json:"min_area_km2"`
	DensityThreshold  float64 `json:"density_threshold"`
	DistanceThreshold float64 `json:"distance_threshold"`
}

// Analysis is one persisted run.
type Analysis struct {
	ID            string
	CreatedAt     time.Time
	Params        Params
	Zones         int
	Stops         int
	Dropped       int
	HighPotential int
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS analyses (
	id             TEXT PRIMARY KEY,
	created_at     DATETIME NOT NULL,
	params         TEXT NOT NULL,
	zones          INTEGER NOT NULL,
	stops          INTEGER NOT NULL,
	dropped        INTEGER NOT NULL,
	high_potential INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS zone_metrics (
	analysis_id    TEXT NOT NULL REFERENCES analyses(id),
	zone_id        TEXT NOT NULL,
	population     INTEGER NOT NULL,
	area_km2       REAL NOT NULL,
	density        REAL NOT NULL,
	centroid_x     REAL NOT NULL,
	centroid_y     REAL NOT NULL,
	distance_m     REAL,
	high_density   INTEGER NOT NULL,
	low_access     INTEGER NOT NULL,
	high_potential INTEGER NOT NULL,
	attractiveness REAL NOT NULL,
	PRIMARY KEY (analysis_id, zone_id)
);

CREATE INDEX IF NOT EXISTS idx_zone_metrics_potential
	ON zone_metrics(analysis_id, high_potential, attractiveness);
`

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, migration); err != nil {
		return eris.Wrap(err, "store: migrate")
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAnalysis persists one analysis run and all its zone metrics in a
// single transaction, returning the new analysis ID. A distance of +Inf
// (no coverage) is stored as NULL.
func (s *Store) SaveAnalysis(ctx context.Context, params Params, stops int, drops model.DropStats, metrics []model.ZoneMetrics) (string, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", eris.Wrap(err, "store: marshal params")
	}

	highPotential := 0
	for _, m := range metrics {
		if m.HighPotential {
			highPotential++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "store: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO analyses (id, created_at, params, zones, stops, dropped, high_potential) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, now, string(paramsJSON), len(metrics), stops, drops.Total(), highPotential,
	)
	if err != nil {
		return "", eris.Wrap(err, "store: insert analysis")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO zone_metrics (
			analysis_id, zone_id, population, area_km2, density,
			centroid_x, centroid_y, distance_m,
			high_density, low_access, high_potential, attractiveness
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", eris.Wrap(err, "store: prepare zone insert")
	}
	defer stmt.Close()

	for _, m := range metrics {
		var dist sql.NullFloat64
		if !math.IsInf(m.DistanceM, 1) {
			dist = sql.NullFloat64{Float64: m.DistanceM, Valid: true}
		}
		_, err = stmt.ExecContext(ctx,
			id, m.ZoneID, m.Population, m.AreaKm2, m.Density,
			m.CentroidX, m.CentroidY, dist,
			m.HighDensity, m.LowAccess, m.HighPotential, m.Attractiveness,
		)
		if err != nil {
			return "", eris.Wrapf(err, "store: insert zone %s", m.ZoneID)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "store: commit")
	}
	return id, nil
}

// LatestAnalysis returns the most recently saved analysis, or nil if none
// exist.
func (s *Store) LatestAnalysis(ctx context.Context) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, params, zones, stops, dropped, high_potential
		FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT 1`)

	var a Analysis
	var paramsJSON string
	err := row.Scan(&a.ID, &a.CreatedAt, &paramsJSON, &a.Zones, &a.Stops, &a.Dropped, &a.HighPotential)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan analysis")
	}
	if err := json.Unmarshal([]byte(paramsJSON), &a.Params); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal params")
	}
	return &a, nil
}

// ZoneMetrics returns all zone metrics of an analysis. NULL distances are
// restored as +Inf.
func (s *Store) ZoneMetrics(ctx context.Context, analysisID string) ([]model.ZoneMetrics, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT zone_id, population, area_km2, density, centroid_x, centroid_y,
		       distance_m, high_density, low_access, high_potential, attractiveness
		FROM zone_metrics WHERE analysis_id = ? ORDER BY zone_id`, analysisID)
	if err != nil {
		return nil, eris.Wrap(err, "store: query zone metrics")
	}
	defer rows.Close()

	var metrics []model.ZoneMetrics
	for rows.Next() {
		var m model.ZoneMetrics
		var dist sql.NullFloat64
		if err := rows.Scan(
			&m.ZoneID, &m.Population, &m.AreaKm2, &m.Density, &m.CentroidX, &m.CentroidY,
			&dist, &m.HighDensity, &m.LowAccess, &m.HighPotential, &m.Attractiveness,
		); err != nil {
			return nil, eris.Wrap(err, "store: scan zone metrics row")
		}
		if dist.Valid {
			m.DistanceM = dist.Float64
		} else {
			m.DistanceM = math.Inf(1)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
