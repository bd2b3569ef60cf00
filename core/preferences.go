package core

import (
	"context"
	"sync"
)

// MemoryPreferenceStore keeps preferences in process memory. It is the
// default store and a convenient double in tests.
type MemoryPreferenceStore struct {
	mu      sync.RWMutex
	values  map[string]bool
	writes  int
	flushes int
}

func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{values: map[string]bool{}}
}

func (s *MemoryPreferenceStore) Bool(_ context.Context, key string) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryPreferenceStore) SetBool(_ context.Context, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes++
	return nil
}

func (s *MemoryPreferenceStore) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

// Writes returns how many SetBool calls the store has seen.
func (s *MemoryPreferenceStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemoryPreferenceStore) Flushes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flushes
}
