// Package store persists recorded simulation runs in SQLite so they can be
// browsed from the CLI and replayed in the dashboard after the process
// that produced them has exited.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"fairmatch/internal/engine"

	_ "modernc.org/sqlite"
)

// Run is one persisted simulation.
type Run struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Origin    string             `json:"origin"`
	Config    engine.Config      `json:"config"`
	Matches   []engine.GameState `json:"matches"`
	Stats     engine.Stats       `json:"stats"`
	StepCount int                `json:"step_count"`
	Steps     []engine.Step      `json:"steps,omitempty"` // loaded on demand
}

// RunStore wraps the SQLite database holding runs.
type RunStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open initializes the database at the given path, creating directories
// and tables as needed.
func Open(path string) (*RunStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &RunStore{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		origin TEXT NOT NULL,
		config TEXT NOT NULL,
		matches TEXT NOT NULL,
		stats TEXT NOT NULL,
		step_count INTEGER NOT NULL,
		steps TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_runs_origin ON runs(origin);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *RunStore) Close() error { return s.db.Close() }

// Save persists a run and returns its generated ID.
func (s *RunStore) Save(origin string, cfg engine.Config, matches []engine.GameState, stats engine.Stats, steps []engine.Step) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	matchesJSON, err := json.Marshal(matches)
	if err != nil {
		return "", fmt.Errorf("encoding matches: %w", err)
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("encoding stats: %w", err)
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("encoding steps: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, created_at, origin, config, matches, stats, step_count, steps)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC(), origin, string(cfgJSON), string(matchesJSON),
		string(statsJSON), len(steps), string(stepsJSON),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// List returns run summaries (no step timelines), newest first.
func (s *RunStore) List() ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, created_at, origin, config, matches, stats, step_count
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns one run including its step timeline.
func (s *RunStore) Get(id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(
		`SELECT id, created_at, origin, config, matches, stats, step_count, steps
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row.Scan, true)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	return run, err
}

// Delete removes a run. Reports whether it existed.
func (s *RunStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting run: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func scanRun(scan func(...any) error, withSteps bool) (*Run, error) {
	var (
		run                                    Run
		cfgJSON, matchesJSON, statsJSON, steps string
	)
	dest := []any{&run.ID, &run.CreatedAt, &run.Origin, &cfgJSON, &matchesJSON, &statsJSON, &run.StepCount}
	if withSteps {
		dest = append(dest, &steps)
	}
	if err := scan(dest...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := json.Unmarshal([]byte(matchesJSON), &run.Matches); err != nil {
		return nil, fmt.Errorf("decoding matches: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
		return nil, fmt.Errorf("decoding stats: %w", err)
	}
	if withSteps {
		if err := json.Unmarshal([]byte(steps), &run.Steps); err != nil {
			return nil, fmt.Errorf("decoding steps: %w", err)
		}
	}
	return &run, nil
}
