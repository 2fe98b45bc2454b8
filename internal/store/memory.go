package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("memory store closed")
)

// entry holds one value and its expiry; a zero expiresAt never expires.
type entry struct {
	value     string
	storedAt  time.Time
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is a concurrency-safe in-process key-value store with per-key
// expiry. It backs the cache when no Redis server is configured.
type MemoryStore struct {
	mu sync.RWMutex

	data   map[string]entry
	closed bool

	// retention configuration
	maxEntries int // max number of keys (0 = unlimited)
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Get returns the live value for key.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", false, ErrClosed
	}
	e, ok := s.data[key]
	if !ok || e.expired(s.now()) {
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value under key and enforces retention.
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	now := s.now()
	e := entry{value: value, storedAt: now}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	s.data[key] = e

	s.evictLocked(now)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	delete(s.data, key)
	return nil
}

// Ping reports whether the store is usable.
func (s *MemoryStore) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close drops all entries; later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.data = nil
	return nil
}

// size returns the number of stored keys, expired ones included.
func (s *MemoryStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// evictLocked drops expired entries, then the oldest ones while over maxEntries.
func (s *MemoryStore) evictLocked(now time.Time) {
	// Enforce retention by age.
	for k, e := range s.data {
		if e.expired(now) {
			delete(s.data, k)
		}
	}

	// Enforce retention by count.
	for s.maxEntries > 0 && len(s.data) > s.maxEntries {
		var (
			oldestKey string
			oldestAt  time.Time
			found     bool
		)
		for k, e := range s.data {
			if !found || e.storedAt.Before(oldestAt) {
				oldestKey, oldestAt, found = k, e.storedAt, true
			}
		}
		delete(s.data, oldestKey)
	}
}
