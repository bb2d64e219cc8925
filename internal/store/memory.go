package store

import (
	"context"
	"sync"
)

// Compile-time check: *MemoryBackend must satisfy Backend.
var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps snapshots in process memory.
type MemoryBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	saves   int
	SaveErr error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.data[key]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.data[key] = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves returns the number of successful writes.
func (m *MemoryBackend) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryBackend) Close() {}
