package store

import (
	"context"
	"sync"

	"github.com/mcdev12/basehaptic/go/internal/wearsync/events"
)

// Memory keeps values in a map guarded by a mutex
type Memory struct {
	mu     sync.RWMutex
	values map[string]events.DataMap
	closed bool
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]events.DataMap)}
}

func (m *Memory) Get(ctx context.Context, key string) (events.DataMap, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return v.Clone(), true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value events.DataMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.values[key] = value.Clone()
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
