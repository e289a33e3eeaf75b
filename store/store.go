// ════════════════════════════════════════════════════════════════════════════════════════════════
// 🗄️ RESULTS STORE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Case-Insensitive Map Benchmark Harness
// Component: SQLite Persistence of Runs and Results
//
// Description:
//   Every finished run is stored with its configuration, a digest of that configuration, and one
//   row per result. Runs with equal digests were measured under identical settings and can be
//   compared directly.
//
// Schema:
//   - runs:    id, started_at (unix ns), digest, config (JSON), result count, failure count
//   - results: run_id, ordinal, benchmark, mode, score, error, unit, failed, body (JSON)
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package store

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cimapbench/bench"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sugawarayuuta/sonnet"
	"golang.org/x/crypto/sha3"
)

// ErrRunNotFound is returned for a run id the store does not hold.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at INTEGER NOT NULL,
	digest     TEXT    NOT NULL,
	config     TEXT    NOT NULL,
	results    INTEGER NOT NULL,
	failures   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id    INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	ordinal   INTEGER NOT NULL,
	benchmark TEXT    NOT NULL,
	mode      TEXT    NOT NULL,
	score     REAL    NOT NULL,
	error     REAL    NOT NULL,
	unit      TEXT    NOT NULL,
	failed    INTEGER NOT NULL,
	body      TEXT    NOT NULL,
	PRIMARY KEY (run_id, ordinal)
);
CREATE INDEX IF NOT EXISTS runs_digest ON runs(digest);
`

// Run is one stored run.
type Run struct {
	ID        int64
	StartedAt time.Time
	Digest    string
	Config    bench.Config
	Results   int
	Failures  int
}

// Store persists runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" opens a private
// in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps an in-memory database alive and shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// ConfigDigest fingerprints cfg as the hex SHA3-256 of its JSON encoding.
func ConfigDigest(cfg bench.Config) (string, error) {
	data, err := sonnet.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// WRITES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// SaveRun stores cfg and results in one transaction and returns the new
// run id.
func (s *Store) SaveRun(cfg bench.Config, startedAt time.Time, results []bench.Result) (int64, error) {
	digest, err := ConfigDigest(cfg)
	if err != nil {
		return 0, err
	}
	cfgJSON, err := sonnet.Marshal(cfg)
	if err != nil {
		return 0, fmt.Errorf("encode config: %w", err)
	}
	failures := 0
	for _, r := range results {
		if r.Failed {
			failures++
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (started_at, digest, config, results, failures) VALUES (?, ?, ?, ?, ?)`,
		startedAt.UnixNano(), digest, string(cfgJSON), len(results), failures)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO results
		(run_id, ordinal, benchmark, mode, score, error, unit, failed, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, r := range results {
		body, err := sonnet.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("encode result %s %s: %w", r.Benchmark, r.Mode, err)
		}
		if _, err := stmt.Exec(id, i, r.Benchmark, r.Mode.String(), r.Stats.Mean, r.Stats.Error,
			r.Unit, r.Failed, string(body)); err != nil {
			return 0, fmt.Errorf("insert result %s %s: %w", r.Benchmark, r.Mode, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// READS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Runs lists up to limit runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, digest, config, results, failures FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns one run.
func (s *Store) Run(id int64) (Run, error) {
	row := s.db.QueryRow(
		`SELECT id, started_at, digest, config, results, failures FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return r, err
}

// Results returns the results of run id in their original order.
func (s *Store) Results(id int64) ([]bench.Result, error) {
	if _, err := s.Run(id); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT body FROM results WHERE run_id = ? ORDER BY ordinal`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []bench.Result
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var r bench.Result
		if err := sonnet.Unmarshal([]byte(body), &r); err != nil {
			return nil, fmt.Errorf("decode result of run %d: %w", id, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r       Run
		started int64
		cfg     string
	)
	if err := sc.Scan(&r.ID, &started, &r.Digest, &cfg, &r.Results, &r.Failures); err != nil {
		return Run{}, err
	}
	r.StartedAt = time.Unix(0, started)
	if err := sonnet.Unmarshal([]byte(cfg), &r.Config); err != nil {
		return Run{}, fmt.Errorf("decode config of run %d: %w", r.ID, err)
	}
	return r, nil
}
