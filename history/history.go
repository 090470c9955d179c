// Package history persists probe results so past latency measurements can
// be reviewed without re-probing the whole server list.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dagrha/piactl/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS probes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	probed_at  TEXT    NOT NULL,
	profile    TEXT    NOT NULL,
	target     TEXT    NOT NULL,
	latency_ms REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_probes_probed_at ON probes (probed_at);
`

// Entry is a single persisted measurement.
type Entry struct {
	ProbedAt  time.Time
	Profile   string
	Target    string
	LatencyMS float64
}

// Store keeps probe results in a SQLite database under the data directory.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database.
func Open() (*Store, error) {
	dataDir, err := common.GetDataDir()
	if err != nil {
		return nil, err
	}
	return OpenPath(filepath.Join(dataDir, common.HistoryFileName))
}

// OpenPath opens the history database at an explicit path.
func OpenPath(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "opening history database")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, common.WrapError(err, "initializing history schema")
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// runResult is the view of a probe run that history persists. Satisfied
// by probe.Result.
type runResult interface {
	Targets() []string
	Latency(target string) (float64, bool)
}

// RecordRun persists every successful measurement from a probe run. All
// rows share the same timestamp so a run can be read back as a unit.
func (s *Store) RecordRun(ctx context.Context, result runResult, cat catalogLookup) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "starting history transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO probes (probed_at, profile, target, latency_ms) VALUES (?, ?, ?, ?)")
	if err != nil {
		return common.WrapError(err, "preparing history insert")
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, target := range result.Targets() {
		ms, ok := result.Latency(target)
		if !ok {
			continue
		}
		profile, ok := cat.ProfileFor(target)
		if !ok {
			profile = target
		}
		if _, err := stmt.ExecContext(ctx, now, profile, target, ms); err != nil {
			return common.WrapError(err, "inserting history row")
		}
	}

	return tx.Commit()
}

// catalogLookup resolves a probe target back to its profile name.
type catalogLookup interface {
	ProfileFor(target string) (string, bool)
}

// Recent returns the most recent entries, newest first, capped at limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT probed_at, profile, target, latency_ms FROM probes ORDER BY probed_at DESC, id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, common.WrapError(err, "querying history")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var probedAt string
		if err := rows.Scan(&probedAt, &e.Profile, &e.Target, &e.LatencyMS); err != nil {
			return nil, common.WrapError(err, "scanning history row")
		}
		t, err := time.Parse(time.RFC3339, probedAt)
		if err != nil {
			return nil, common.WrapError(err, fmt.Sprintf("bad timestamp %q", probedAt))
		}
		e.ProbedAt = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// BestPerProfile aggregates all stored measurements and returns the lowest
// latency seen for each profile, sorted ascending by latency.
func (s *Store) BestPerProfile(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT profile, target, MIN(latency_ms) FROM probes GROUP BY profile")
	if err != nil {
		return nil, common.WrapError(err, "querying history aggregate")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Profile, &e.Target, &e.LatencyMS); err != nil {
			return nil, common.WrapError(err, "scanning aggregate row")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LatencyMS < entries[j].LatencyMS
	})
	return entries, nil
}
