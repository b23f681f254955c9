package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/antiplagiat/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS check_results (
    task_id    TEXT PRIMARY KEY,
    status     TEXT NOT NULL,
    record     TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    expires_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_check_results_expires ON check_results(expires_at);
`

// SQLiteStore keeps records in a local SQLite file
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLiteStore opens (or creates) the database at dsn and applies the schema
func NewSQLiteStore(ctx context.Context, dsn string, ttl time.Duration) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "antiplagiat.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, ttl: ttl}, nil
}

// Save upserts rec
func (s *SQLiteStore) Save(ctx context.Context, rec *model.CheckRecord) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}

	var expires any
	if t := expiry(s.ttl); t != nil {
		expires = t.UnixNano()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO check_results (task_id, status, record, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET
			status = excluded.status,
			record = excluded.record,
			expires_at = excluded.expires_at
	`, rec.TaskID, string(rec.Status), string(data), rec.CreatedAt.UnixNano(), expires)
	if err != nil {
		return fmt.Errorf("sqlite upsert: %w", err)
	}
	return nil
}

// Get returns an unexpired record
func (s *SQLiteStore) Get(ctx context.Context, taskID string) (*model.CheckRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM check_results
		WHERE task_id = ? AND (expires_at IS NULL OR expires_at > ?)
	`, taskID, time.Now().UnixNano()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	return decode([]byte(data))
}

// Delete removes the record
func (s *SQLiteStore) Delete(ctx context.Context, taskID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM check_results WHERE task_id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CleanupExpired removes expired rows and returns how many were deleted
func (s *SQLiteStore) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM check_results WHERE expires_at IS NOT NULL AND expires_at <= ?`, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("cleanup failed: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
