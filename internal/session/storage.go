// Package session holds per-browser durable state: the storage capability
// interface, its in-memory implementation and the selection container.
package session

import (
	"context"
	"sync"

	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

// Storage is the durable key/value capability backing a browser session.
// Implementations must return ErrNotFound for absent keys.
type Storage interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error
}

// MemoryStorage is a process-local Storage used in tests and as a fallback
// when no database is configured.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryStorage constructs an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]map[string][]byte)}
}

// Get returns the stored value or ErrNotFound.
func (m *MemoryStorage) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if values, ok := m.data[sessionID]; ok {
		if value, ok := values[key]; ok {
			out := make([]byte, len(value))
			copy(out, value)
			return out, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "session key not found")
}

// Set stores the value under the session and key.
func (m *MemoryStorage) Set(_ context.Context, sessionID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	values, ok := m.data[sessionID]
	if !ok {
		values = make(map[string][]byte)
		m.data[sessionID] = values
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	values[key] = stored
	return nil
}

// Delete removes the key. Missing keys are not an error.
func (m *MemoryStorage) Delete(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if values, ok := m.data[sessionID]; ok {
		delete(values, key)
	}
	return nil
}
