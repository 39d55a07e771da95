package results

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// Store is the sqlite catalog of runs, generated results and counter
// states.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) initSchema() error {
	schema := GetSchema()

	lines := strings.Split(schema, "\n")
	var cleanLines []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "--") && trimmed != "" {
			cleanLines = append(cleanLines, line)
		}
	}
	cleanSchema := strings.Join(cleanLines, "\n")

	if _, err := s.db.Exec(cleanSchema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	_, _ = s.db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, GetSchemaVersion())
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateRun(panorama string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`INSERT INTO runs (panorama) VALUES (?)`, panorama)
	if err != nil {
		return 0, fmt.Errorf("create run: %w", err)
	}
	return result.LastInsertId()
}

func (s *Store) RecordResult(r *Result) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Status == "" {
		r.Status = StatusPending
	}

	result, err := s.db.Exec(`
		INSERT INTO results (run_id, mask_path, output_path, state, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.RunID, r.MaskPath, nullable(r.OutputPath), nullable(r.State), r.Status, nullable(r.ErrorMessage))

	if err != nil {
		return 0, fmt.Errorf("record result: %w", err)
	}
	return result.LastInsertId()
}

func (s *Store) UpdateResultStatus(id int64, status ResultStatus, outputPath, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		UPDATE results SET status = ?, output_path = ?, error_message = ? WHERE id = ?
	`, status, nullable(outputPath), nullable(errorMessage), id)
	if err != nil {
		return fmt.Errorf("update result %d: %w", id, err)
	}
	return nil
}

func (s *Store) RecentResults(limit int) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, run_id, mask_path, output_path, state, status, error_message, created_at
		FROM results ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var outputPath, state, errorMsg sql.NullString
		var createdAt sql.NullTime

		if err := rows.Scan(&r.ID, &r.RunID, &r.MaskPath, &outputPath, &state, &r.Status, &errorMsg, &createdAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}

		r.OutputPath = outputPath.String
		r.State = state.String
		r.ErrorMessage = errorMsg.String
		if createdAt.Valid {
			r.CreatedAt = createdAt.Time
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// LogState appends a counter state to the run's history unless it
// matches the most recent entry.
func (s *Store) LogState(runID int64, counters []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := json.Marshal(counters)
	if err != nil {
		return err
	}

	var last sql.NullString
	err = s.db.QueryRow(`
		SELECT state FROM state_log WHERE run_id = ? ORDER BY id DESC LIMIT 1
	`, runID).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("last state: %w", err)
	}

	if last.Valid && last.String == string(encoded) {
		return nil
	}

	if _, err := s.db.Exec(`INSERT INTO state_log (run_id, state) VALUES (?, ?)`, runID, string(encoded)); err != nil {
		return fmt.Errorf("log state: %w", err)
	}
	return nil
}

func (s *Store) StateHistory(runID int64) ([][]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT state FROM state_log WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("state history: %w", err)
	}
	defer rows.Close()

	var history [][]int
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var state []int
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return nil, fmt.Errorf("decode state: %w", err)
		}
		history = append(history, state)
	}
	return history, rows.Err()
}

func (s *Store) Stats() (*StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &StoreStats{}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&stats.TotalRuns); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&stats.TotalResults); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM results WHERE status = ?`, StatusRendered).Scan(&stats.RenderedResults); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM results WHERE status = ?`, StatusFailed).Scan(&stats.FailedResults); err != nil {
		return nil, err
	}

	var lastAt sql.NullTime
	if err := s.db.QueryRow(`SELECT MAX(created_at) FROM results`).Scan(&lastAt); err == nil && lastAt.Valid {
		stats.LastResultAt = lastAt.Time
	}

	return stats, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
