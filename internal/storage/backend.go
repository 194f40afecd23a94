// Package storage holds the profile's entity store: whole collections persisted
// under named slots of a key-value backend and kept in memory as id-keyed tables.
package storage

import (
	"context"
	"slices"
	"sync"

	"communityhub/internal/observability"
)

// Backend persists raw bytes under named slots.
// Get reports ok=false for an absent slot; an absent slot is not an error.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Name() string
	Close() error
}

// MemoryBackend keeps slots in process memory. It is the default backend and the
// one used by tests.
type MemoryBackend struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	done := observability.TrackSlot("get", m.Name())
	m.mu.RLock()
	v, ok := m.slots[key]
	m.mu.RUnlock()
	done(nil)
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	done := observability.TrackSlot("set", m.Name())
	m.mu.Lock()
	m.slots[key] = slices.Clone(value)
	m.mu.Unlock()
	done(nil)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	done := observability.TrackSlot("delete", m.Name())
	m.mu.Lock()
	delete(m.slots, key)
	m.mu.Unlock()
	done(nil)
	return nil
}

// Keys returns the slot names currently held, in no particular order.
func (m *MemoryBackend) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.slots))
	for k := range m.slots {
		keys = append(keys, k)
	}
	return keys
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Close() error { return nil }
