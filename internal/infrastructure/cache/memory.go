package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pentol/backend/internal/domain/shared"
)

// sweepThreshold is the number of claims between sweeps of expired keys
const sweepThreshold = 256

// MemoryStore keeps idempotency claims in process memory. Claims are not
// visible to other replicas.
type MemoryStore struct {
	mu      sync.Mutex
	claims  map[string]time.Time
	writes  int
	now     func() time.Time
	expired func(deadline, now time.Time) bool
}

// NewMemoryStore returns an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		claims:  make(map[string]time.Time),
		now:     time.Now,
		expired: func(deadline, now time.Time) bool { return !now.Before(deadline) },
	}
}

func (s *MemoryStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if deadline, ok := s.claims[key]; ok && !s.expired(deadline, now) {
		return false, nil
	}
	s.claims[key] = now.Add(ttl)

	s.writes++
	if s.writes >= sweepThreshold {
		s.sweepLocked(now)
	}
	return true, nil
}

func (s *MemoryStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline, ok := s.claims[key]
	if ok && s.expired(deadline, s.now()) {
		delete(s.claims, key)
		ok = false
	}
	return ok, nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.claims, key)
	s.mu.Unlock()
	return nil
}

// Close drops every claim
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	clear(s.claims)
	s.mu.Unlock()
	return nil
}

// Sweep removes expired claims and reports how many remain
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
	return len(s.claims)
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	for key, deadline := range s.claims {
		if s.expired(deadline, now) {
			delete(s.claims, key)
		}
	}
	s.writes = 0
}

// Size counts held claims, including expired ones not yet swept
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims)
}

var _ shared.IdempotencyStore = (*MemoryStore)(nil)
