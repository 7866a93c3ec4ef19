package testutil

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory repository.CollectionStore that records how it
// was used. Set FailWrites to make every Write return that error.
type MemoryStore struct {
	mu         sync.Mutex
	records    map[string][]byte
	reads      int
	writes     int
	FailWrites error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (s *MemoryStore) Read(_ context.Context, scopeKey string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	data, ok := s.records[scopeKey]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *MemoryStore) Write(_ context.Context, scopeKey string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.records[scopeKey] = append([]byte(nil), data...)
	return nil
}

// Put seeds a record without counting it as a write.
func (s *MemoryStore) Put(scopeKey string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[scopeKey] = append([]byte(nil), data...)
}

// Record returns the stored bytes for scopeKey.
func (s *MemoryStore) Record(scopeKey string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.records[scopeKey]
	return data, ok
}

func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *MemoryStore) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
