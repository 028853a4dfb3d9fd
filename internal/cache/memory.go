package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	entry     *Entry
	expiresAt time.Time
}

// MemoryStore is the default in-process store. Expired entries are evicted
// lazily on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	stats   *Stats
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		stats:   &Stats{},
		now:     time.Now,
	}
}

// Get returns a fresh entry, evicting it first if its TTL has elapsed.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool) {
	s.mu.RLock()
	me, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		s.stats.miss()
		return nil, false
	}
	if s.now().After(me.expiresAt) {
		s.mu.Lock()
		// re-check under the write lock; a concurrent Set may have refreshed it
		if cur, still := s.entries[key]; still && s.now().After(cur.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		s.stats.miss()
		return nil, false
	}

	s.stats.hit()
	return me.entry, true
}

// Set stores the entry for ttl.
func (s *MemoryStore) Set(_ context.Context, key string, entry *Entry, ttl time.Duration) error {
	s.mu.Lock()
	s.entries[key] = memoryEntry{entry: entry, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	s.stats.set()
	return nil
}

// Stats exposes the hit/miss counters.
func (s *MemoryStore) Stats() *Stats { return s.stats }

// Len reports the number of resident entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
