package cache

import (
	"sync"
	"time"
)

// DefaultTTL matches the short window the song/verse data is treated as fresh.
const DefaultTTL = 5 * time.Minute

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Store is a process-wide read-through cache for idempotent metadata reads.
// Entries expire on read; there is no background sweep, and failed fetches
// are never stored.
type Store struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]entry

	// clock is injectable for testing; defaults to time.Now.
	clock func() time.Time
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
		clock:   time.Now,
	}
}

// Get returns the live cached payload for key, or runs fetch and stores the
// result. A fetch error passes through and leaves the cache untouched, so a
// transient failure never poisons later reads. Concurrent callers for the
// same key are not coalesced; each runs its own fetch and the writes are
// identical.
func (s *Store) Get(key string, fetch func() ([]byte, error)) ([]byte, error) {
	now := s.clock()

	s.mu.Lock()
	if hit, ok := s.entries[key]; ok {
		if hit.expiresAt.After(now) {
			s.mu.Unlock()
			return hit.payload, nil
		}
		delete(s.entries, key)
	}
	s.mu.Unlock()

	payload, err := fetch()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[key] = entry{payload: payload, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()
	return payload, nil
}

// Clear drops every entry. Used between sessions in tests.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}

// Len reports the number of stored entries, live or expired.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
