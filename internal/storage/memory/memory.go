package memory

import (
	"context"
	"maps"
	"sync"

	"budgetly/internal/storage"
)

// Store keeps every key in a map. It backs the memory backend and doubles as
// the fake substrate in tests.
type Store struct {
	mu       sync.Mutex
	values   map[string]string
	writes   int
	writeErr error
	readErr  error
}

var _ storage.KV = (*Store)(nil)

// New creates a store pre-populated with seed, which is copied.
func New(seed map[string]string) *Store {
	values := make(map[string]string, len(seed))
	maps.Copy(values, seed)
	return &Store{values: values}
}

func (s *Store) Read(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, storage.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return "", false, s.readErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Write(_ context.Context, key, value string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.values[key] = value
	s.writes++
	return nil
}

// Writes returns how many successful writes the store has seen.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// FailWrites makes every following Write return err; nil restores normal behaviour.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// FailReads makes every following Read return err; nil restores normal behaviour.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// Snapshot returns a copy of all stored values.
func (s *Store) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}
