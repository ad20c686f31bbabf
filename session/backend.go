package session

import (
	"context"
	"sync"
)

const (
	// KeyToken is the storage key holding the bearer token.
	KeyToken = "authToken"
	// KeyUser is the storage key holding the JSON user snapshot.
	KeyUser = "user"
)

// Backend is durable key/value storage scoped to one client profile.
//
// GetAll returns only the keys that exist. SetAll and DeleteAll must be atomic: a
// concurrent GetAll observes all of the writes or none of them.
//
// SetAllIf and DeleteAllIf apply only while guardKey holds guardValue, and the check
// and the write happen as one atomic step. They report whether the write was applied.
type Backend interface {
	Available() bool
	GetAll(ctx context.Context, keys ...string) (map[string]string, error)
	SetAll(ctx context.Context, values map[string]string) error
	DeleteAll(ctx context.Context, keys ...string) error
	SetAllIf(ctx context.Context, guardKey, guardValue string, values map[string]string) (bool, error)
	DeleteAllIf(ctx context.Context, guardKey, guardValue string, keys ...string) (bool, error)
}

// MemoryBackend keeps values in process memory. It is available but not durable.
// The zero value is ready to use.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty in-process backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Available() bool { return m != nil }

func (m *MemoryBackend) GetAll(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MemoryBackend) SetAll(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setLocked(values)
	return nil
}

func (m *MemoryBackend) SetAllIf(_ context.Context, guardKey, guardValue string, values map[string]string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.values[guardKey]; !ok || v != guardValue {
		return false, nil
	}
	m.setLocked(values)
	return true, nil
}

// setLocked writes values. m.mu must be held.
func (m *MemoryBackend) setLocked(values map[string]string) {
	if m.values == nil {
		m.values = make(map[string]string, len(values))
	}
	for k, v := range values {
		m.values[k] = v
	}
}

func (m *MemoryBackend) DeleteAll(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *MemoryBackend) DeleteAllIf(_ context.Context, guardKey, guardValue string, keys ...string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.values[guardKey]; !ok || v != guardValue {
		return false, nil
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	return true, nil
}

// Put writes a single raw value, bypassing the paired write path. Tests use it to
// seed corrupt or half-written state.
func (m *MemoryBackend) Put(key, value string) {
	m.mu.Lock()
	m.setLocked(map[string]string{key: value})
	m.mu.Unlock()
}
