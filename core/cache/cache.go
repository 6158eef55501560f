package cache

import (
	"sync"
	"time"
)

// State describes what a read found.
type State int

const (
	// StateMissing means no entry exists for the key.
	StateMissing State = iota
	// StateStale means an entry exists but its TTL has elapsed.
	StateStale
	// StateFresh means an entry exists and is within its TTL.
	StateFresh
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "missing"
	}
}

// Entry is a cached value with its fetch time and time-to-live.
type Entry[T any] struct {
	Data      T
	FetchedAt time.Time
	TTL       time.Duration
}

func (e Entry[T]) fresh(now time.Time) bool {
	return now.Sub(e.FetchedAt) < e.TTL
}

// Option configures a Store.
type Option func(*config)

type config struct {
	now func() time.Time
}

// WithNow overrides the clock (used by tests).
func WithNow(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// Store is the process-wide reference-data cache. All methods are safe for
// concurrent use; each write is a single assignment under the lock, so a
// reader sees either the old entry or the new one, never a mix.
type Store[T any] struct {
	mu      sync.RWMutex
	now     func() time.Time
	records map[string]map[string]Entry[T]
	lists   map[string]Entry[[]T]
}

// New creates an empty Store.
func New[T any](opts ...Option) *Store[T] {
	cfg := &config{now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Store[T]{
		now:     cfg.now,
		records: make(map[string]map[string]Entry[T]),
		lists:   make(map[string]Entry[[]T]),
	}
}

// GetRecord reads the per-record cache. The returned State tells the caller
// whether the value is usable and whether it needs revalidation.
func (s *Store[T]) GetRecord(resource, id string) (out T, state State) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.records[resource][id]
	if !ok {
		return out, StateMissing
	}
	if e.fresh(s.now()) {
		return e.Data, StateFresh
	}
	return e.Data, StateStale
}

// GetList reads the per-list cache.
func (s *Store[T]) GetList(resource string) ([]T, State) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.lists[resource]
	if !ok {
		return nil, StateMissing
	}
	out := make([]T, len(e.Data))
	copy(out, e.Data)
	if e.fresh(s.now()) {
		return out, StateFresh
	}
	return out, StateStale
}

// PutRecord writes one record entry, replacing any previous entry.
func (s *Store[T]) PutRecord(resource, id string, data T, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.records[resource]
	if !ok {
		byID = make(map[string]Entry[T])
		s.records[resource] = byID
	}
	byID[id] = Entry[T]{Data: data, FetchedAt: s.now(), TTL: ttl}
}

// PutList writes the list entry for a resource.
func (s *Store[T]) PutList(resource string, data []T, ttl time.Duration) {
	cp := make([]T, len(data))
	copy(cp, data)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[resource] = Entry[[]T]{Data: cp, FetchedAt: s.now(), TTL: ttl}
}

// Clear removes all cached entries of one resource, record and list alike.
// Other resources are untouched. Clearing an unknown resource is a no-op.
func (s *Store[T]) Clear(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, resource)
	delete(s.lists, resource)
}

// Reset drops every entry.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]map[string]Entry[T])
	s.lists = make(map[string]Entry[[]T])
}

// Len returns the number of cached record entries for a resource.
func (s *Store[T]) Len(resource string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[resource])
}
