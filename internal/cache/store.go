// Package cache provides the TTL stores used by the data service. Entries
// record their origin (live or mock) so cache hits report their source
// truthfully.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Entry is one cached payload with its provenance.
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	Source    string          `json:"source"`
	Message   string          `json:"message,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Store is the cache contract the data service depends on. Implementations
// must tolerate concurrent access; racing writers for the same key may
// last-write-win because entries are idempotent snapshots.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, bool)
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error
}

// Stats tracks cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.Mutex
}

func (s *Stats) hit()  { s.mu.Lock(); s.Hits++; s.mu.Unlock() }
func (s *Stats) miss() { s.mu.Lock(); s.Misses++; s.mu.Unlock() }
func (s *Stats) set()  { s.mu.Lock(); s.Sets++; s.mu.Unlock() }

// Snapshot returns a copy of the counters.
func (s *Stats) Snapshot() (hits, misses, sets int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Hits, s.Misses, s.Sets
}
