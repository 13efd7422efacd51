package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	data      T
	timestamp time.Time
}

// Store is a mutex-guarded map of timestamped values. An entry is valid while
// now - timestamp <= ttl; expired entries are evicted when read or swept.
type Store[T any] struct {
	mu    sync.Mutex
	m     map[string]entry[T]
	ttl   time.Duration
	clock Clock
}

// NewStore creates a Store.
func NewStore[T any](ttl time.Duration, clock Clock) *Store[T] {
	if clock == nil {
		clock = SystemClock
	}
	return &Store[T]{
		m:     make(map[string]entry[T]),
		ttl:   ttl,
		clock: clock,
	}
}

// Get returns the value for key if it is still fresh.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[key]
	if !ok {
		var zero T
		return zero, false
	}
	if s.clock.Now().Sub(e.timestamp) > s.ttl {
		delete(s.m, key)
		var zero T
		return zero, false
	}
	return e.data, true
}

// Set stores v under key, stamped with the current time.
func (s *Store[T]) Set(key string, v T) {
	s.mu.Lock()
	s.m[key] = entry[T]{data: v, timestamp: s.clock.Now()}
	s.mu.Unlock()
}

// Sweep drops every expired entry and returns how many were removed.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for k, e := range s.m {
		if now.Sub(e.timestamp) > s.ttl {
			delete(s.m, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, fresh or not.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
