// Package store persists check records keyed by task id.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/antiplagiat/internal/logger"
	"github.com/ppiankov/antiplagiat/internal/model"
)

// ErrNotFound is returned when a task id is unknown or expired
var ErrNotFound = errors.New("check record not found")

// Store is a key-value repository of check records
type Store interface {
	// Save inserts or replaces the record under its task id
	Save(ctx context.Context, rec *model.CheckRecord) error

	// Get returns the record or ErrNotFound
	Get(ctx context.Context, taskID string) (*model.CheckRecord, error)

	// Delete removes the record. Deleting an unknown id returns ErrNotFound.
	Delete(ctx context.Context, taskID string) error

	Close() error
}

// New opens the backend selected by cfg.Backend
func New(ctx context.Context, cfg model.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemoryStore(cfg.TTL), nil
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.SQLiteDSN, cfg.TTL)
	case "postgres", "postgresql":
		if cfg.PGDSN == "" {
			return nil, fmt.Errorf("postgres store requires a DSN (DATABASE_URL)")
		}
		return NewPostgresStore(ctx, cfg.PGDSN, cfg.TTL)
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: memory, sqlite, postgres, redis)", cfg.Backend)
	}
}

// Sweeper is implemented by backends whose expired rows must be removed
// explicitly. Memory and redis expire entries on their own.
type Sweeper interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// RunCleanup sweeps expired records every interval until ctx is done.
// It returns at once when st does not need sweeping.
func RunCleanup(ctx context.Context, st Store, interval time.Duration) {
	sw, ok := st.(Sweeper)
	if !ok || interval <= 0 {
		return
	}
	log := logger.GetLogger().WithField("component", "store")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sw.CleanupExpired(ctx)
			if err != nil {
				log.Warnf("Cleanup expired records: %v", err)
				continue
			}
			if n > 0 {
				log.Debugf("Removed %d expired records", n)
			}
		}
	}
}

func encode(rec *model.CheckRecord) ([]byte, error) {
	if rec == nil || rec.TaskID == "" {
		return nil, errors.New("record has no task id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*model.CheckRecord, error) {
	var rec model.CheckRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// expiry returns the absolute expiry for a ttl; zero ttl never expires
func expiry(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	t := time.Now().Add(ttl).UTC()
	return &t
}
