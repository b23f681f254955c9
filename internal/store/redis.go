package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ppiankov/antiplagiat/internal/model"
)

const redisKeyPrefix = "antiplagiat:check:"

// RedisStore keeps each record as a JSON string with a TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to addr and pings it
func NewRedisStore(ctx context.Context, addr string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func redisKey(taskID string) string {
	return redisKeyPrefix + taskID
}

// Save writes rec, resetting its TTL
func (r *RedisStore) Save(ctx context.Context, rec *model.CheckRecord) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, redisKey(rec.TaskID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

// Get returns the record
func (r *RedisStore) Get(ctx context.Context, taskID string) (*model.CheckRecord, error) {
	data, err := r.client.Get(ctx, redisKey(taskID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}
	return decode(data)
}

// Delete removes the record
func (r *RedisStore) Delete(ctx context.Context, taskID string) error {
	n, err := r.client.Del(ctx, redisKey(taskID)).Result()
	if err != nil {
		return fmt.Errorf("redis DEL failed: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the client
func (r *RedisStore) Close() error {
	return r.client.Close()
}
