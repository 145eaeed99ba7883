package store

import (
	"context"
	"sync"
)

type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, userID, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.docs[userID][key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *Memory) Put(_ context.Context, userID, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[userID] == nil {
		m.docs[userID] = make(map[string][]byte)
	}
	m.docs[userID][key] = stored
	return nil
}

func (m *Memory) Delete(_ context.Context, userID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[userID], key)
	return nil
}
