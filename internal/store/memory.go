package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/antiplagiat/internal/model"
)

// MemoryStore keeps records in process with a TTL
type MemoryStore struct {
	records *gocache.Cache
}

// NewMemoryStore creates an in-memory store; ttl <= 0 keeps records forever
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{records: gocache.New(ttl, 10*time.Minute)}
}

// Save stores a copy of rec
func (s *MemoryStore) Save(_ context.Context, rec *model.CheckRecord) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	s.records.SetDefault(rec.TaskID, data)
	return nil
}

// Get returns a copy of the stored record
func (s *MemoryStore) Get(_ context.Context, taskID string) (*model.CheckRecord, error) {
	v, ok := s.records.Get(taskID)
	if !ok {
		return nil, ErrNotFound
	}
	return decode(v.([]byte))
}

// Delete removes the record
func (s *MemoryStore) Delete(_ context.Context, taskID string) error {
	if _, ok := s.records.Get(taskID); !ok {
		return ErrNotFound
	}
	s.records.Delete(taskID)
	return nil
}

// Close drops every record
func (s *MemoryStore) Close() error {
	s.records.Flush()
	return nil
}

// Len returns the number of unexpired records
func (s *MemoryStore) Len() int {
	return s.records.ItemCount()
}
