package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppiankov/antiplagiat/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS check_results (
    task_id    VARCHAR(64) PRIMARY KEY,
    status     VARCHAR(16) NOT NULL,
    record     JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_check_results_expires ON check_results(expires_at);
`

// PostgresStore keeps records in a check_results table with a JSONB payload
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresStore connects to connStr and applies the schema
func NewPostgresStore(ctx context.Context, connStr string, ttl time.Duration) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool, ttl: ttl}, nil
}

// Save upserts rec
func (p *PostgresStore) Save(ctx context.Context, rec *model.CheckRecord) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO check_results (task_id, status, record, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (task_id) DO UPDATE SET
			status = EXCLUDED.status,
			record = EXCLUDED.record,
			expires_at = EXCLUDED.expires_at
	`, rec.TaskID, string(rec.Status), data, rec.CreatedAt, expiry(p.ttl))
	if err != nil {
		return fmt.Errorf("postgres upsert failed: %w", err)
	}
	return nil
}

// Get returns an unexpired record
func (p *PostgresStore) Get(ctx context.Context, taskID string) (*model.CheckRecord, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `
		SELECT record FROM check_results
		WHERE task_id = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`, taskID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres query failed: %w", err)
	}
	return decode(data)
}

// Delete removes the record
func (p *PostgresStore) Delete(ctx context.Context, taskID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM check_results WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("postgres delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CleanupExpired removes expired rows and returns how many were deleted
func (p *PostgresStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM check_results WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("cleanup failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close closes the pool
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
