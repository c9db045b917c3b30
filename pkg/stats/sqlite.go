//go:build sqlite

package stats

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// SQLite persists every recorded value into a stats table.
type SQLite struct {
	path string
	log  *zap.Logger

	mu sync.Mutex
	db *sql.DB
}

func NewSQLite(path string, log *zap.Logger) *SQLite {
	if log == nil {
		log = zap.NewNop()
	}
	return &SQLite{path: path, log: log}
}

func (s *SQLite) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			metric TEXT NOT NULL,
			value REAL NOT NULL,
			recorded_at TEXT NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLite) Record(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		s.log.Warn("sqlite stats recorder used before Init", zap.String("metric", name))
		return
	}
	_, err := s.db.Exec(
		`INSERT INTO stats (metric, value, recorded_at) VALUES (?, ?, ?)`,
		name, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		s.log.Warn("failed to persist stat", zap.String("metric", name), zap.Error(err))
	}
}

// Series reads back every value recorded under name, oldest first.
func (s *SQLite) Series(ctx context.Context, name string) ([]float64, error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, errors.New("sqlite stats recorder is not initialized")
	}

	rows, err := db.QueryContext(ctx, `SELECT value FROM stats WHERE metric = ? ORDER BY id`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
