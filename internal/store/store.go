// Package store persists discovery run artifacts in SQLite so past runs can
// be listed and compared without re-reading the output directory.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/dwsmith1983/forewarn/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS discovery_runs (
	run_id       TEXT PRIMARY KEY,
	created_at   TEXT NOT NULL,
	record_count INTEGER NOT NULL,
	node_count   INTEGER NOT NULL,
	edge_count   INTEGER NOT NULL,
	failure_count INTEGER NOT NULL,
	path_count   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sequences (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	sequence   TEXT NOT NULL,
	frequency  INTEGER NOT NULL,
	machines   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES discovery_runs(run_id)
);

CREATE TABLE IF NOT EXISTS warning_signs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	pattern    TEXT NOT NULL,
	score      REAL NOT NULL,
	frequency  INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES discovery_runs(run_id)
);
`

// RunSummary captures the headline numbers of one discovery run.
type RunSummary struct {
	RunID        string
	CreatedAt    time.Time
	RecordCount  int
	NodeCount    int
	EdgeCount    int
	FailureCount int
	PathCount    int
}

// Store persists discovery runs in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the run database and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists one run's summary, sequences, and warning signs in a
// single transaction and returns the generated run ID.
func (s *Store) SaveRun(summary RunSummary, sequences []types.FailureSequence, signs []types.WarningSign) (string, error) {
	runID := summary.RunID
	if runID == "" {
		runID = ulid.Make().String()
	}
	createdAt := summary.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO discovery_runs (run_id, created_at, record_count, node_count, edge_count, failure_count, path_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, createdAt.Format(time.RFC3339Nano),
		summary.RecordCount, summary.NodeCount, summary.EdgeCount, summary.FailureCount, summary.PathCount,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, seq := range sequences {
		keys := make([]string, len(seq.Sequence))
		for i, state := range seq.Sequence {
			keys[i] = state.Key()
		}
		seqJSON, err := json.Marshal(keys)
		if err != nil {
			return "", fmt.Errorf("marshal sequence: %w", err)
		}
		machinesJSON, err := json.Marshal(seq.Machines)
		if err != nil {
			return "", fmt.Errorf("marshal machines: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO sequences (run_id, sequence, frequency, machines) VALUES (?, ?, ?, ?)`,
			runID, string(seqJSON), seq.Frequency, string(machinesJSON),
		)
		if err != nil {
			return "", fmt.Errorf("insert sequence: %w", err)
		}
	}

	for _, sign := range signs {
		_, err = tx.Exec(
			`INSERT INTO warning_signs (run_id, pattern, score, frequency) VALUES (?, ?, ?, ?)`,
			runID, sign.Pattern, sign.PredictiveScore, sign.Frequency,
		)
		if err != nil {
			return "", fmt.Errorf("insert warning sign: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns run summaries, newest first.
func (s *Store) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(
		`SELECT run_id, created_at, record_count, node_count, edge_count, failure_count, path_count
		 FROM discovery_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			summary   RunSummary
			createdAt string
		)
		if err := rows.Scan(&summary.RunID, &createdAt, &summary.RecordCount,
			&summary.NodeCount, &summary.EdgeCount, &summary.FailureCount, &summary.PathCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summary.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		runs = append(runs, summary)
	}
	return runs, rows.Err()
}

// WarningSigns returns the persisted warning signs of one run, in stored
// (ranked) order.
func (s *Store) WarningSigns(runID string) ([]types.WarningSign, error) {
	rows, err := s.db.Query(
		`SELECT pattern, score, frequency FROM warning_signs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query warning signs: %w", err)
	}
	defer rows.Close()

	var signs []types.WarningSign
	for rows.Next() {
		var sign types.WarningSign
		if err := rows.Scan(&sign.Pattern, &sign.PredictiveScore, &sign.Frequency); err != nil {
			return nil, fmt.Errorf("scan warning sign: %w", err)
		}
		signs = append(signs, sign)
	}
	return signs, rows.Err()
}
