// Package memory provides the default in-process store: a plain map with no
// TTL, no eviction and no size bound. Entries live for the life of the
// process, so memory use grows monotonically with the number of distinct
// keys. Use a bounded store (ristretto, bigcache) when that matters.
package memory

import (
	"context"
	"sync"

	st "github.com/unkn0wn-root/resilite/store"
)

type Store struct {
	mu sync.RWMutex
	m  map[string][]byte
}

var _ st.Store = (*Store)(nil)

func New() *Store {
	return &Store{m: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	// copy so callers cannot mutate the stored entry
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) (bool, error) {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	s.m[key] = v
	s.mu.Unlock()
	return true, nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Close(context.Context) error { return nil }

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
