package idempotency

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/cleanmart/internal/domain/errors"
	"github.com/polkiloo/cleanmart/internal/domain/model"
)

// MemoryStore keeps idempotency entries in process memory. It is only safe for a
// single instance deployment.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]model.IdempotencyEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]model.IdempotencyEntry), now: time.Now}
}

// Get returns the live entry stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (*model.IdempotencyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || entry.Expired(s.now()) {
		return nil, domainErrors.ErrNotFound
	}
	return &entry, nil
}

// Save stores entry unless a live one already exists, in which case the existing entry wins.
func (s *MemoryStore) Save(_ context.Context, entry *model.IdempotencyEntry) (*model.IdempotencyEntry, error) {
	if entry == nil || entry.Key == "" {
		return nil, domainErrors.ErrInvalidPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[entry.Key]; ok && !existing.Expired(s.now()) {
		return &existing, nil
	}
	s.entries[entry.Key] = *entry
	stored := *entry
	return &stored, nil
}

// Sweep drops expired entries and reports how many were removed.
func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if entry.Expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
