package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const DefaultSweepProbability = 0.01

// MemoryStore holds hits in process memory. State is per process and lost on
// restart; use RedisStore when several replicas serve the same clients.
type MemoryStore struct {
	mu               sync.Mutex
	hits             map[string][]time.Time
	sweepProbability float64
	rnd              func() float64
}

func NewMemoryStore(sweepProbability float64) *MemoryStore {
	if sweepProbability < 0 {
		sweepProbability = 0
	}
	return &MemoryStore{
		hits:             make(map[string][]time.Time),
		sweepProbability: sweepProbability,
		rnd:              rand.Float64,
	}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Hit(_ context.Context, key string, now time.Time, window time.Duration, limit int) (Decision, error) {
	cutoff := now.Add(-window)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := pruneBefore(s.hits[key], cutoff)
	var d Decision
	if len(kept) >= limit {
		d = Decision{Allowed: false, RetryAfter: kept[0].Add(window).Sub(now)}
	} else {
		kept = append(kept, now)
		d = Decision{Allowed: true, Remaining: limit - len(kept)}
	}
	if len(kept) == 0 {
		delete(s.hits, key)
	} else {
		s.hits[key] = kept
	}

	if s.sweepProbability > 0 && s.rnd() < s.sweepProbability {
		s.sweepLocked(cutoff)
	}
	return d, nil
}

// Sweep drops hits older than window from every key and forgets empty keys.
func (s *MemoryStore) Sweep(now time.Time, window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now.Add(-window))
}

func (s *MemoryStore) sweepLocked(cutoff time.Time) {
	for key, ts := range s.hits {
		kept := pruneBefore(ts, cutoff)
		if len(kept) == 0 {
			delete(s.hits, key)
			continue
		}
		s.hits[key] = kept
	}
}

// Keys returns the number of tracked keys.
func (s *MemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}

// pruneBefore keeps the timestamps strictly after cutoff. ts is ascending.
func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append([]time.Time(nil), ts[i:]...)
}
