package cart

import (
	"context"
	"sync"
)

// Storage is the durable byte store the cart persists its snapshot to.
// The production implementation is a localstate slot backed by SQLite;
// tests use MemoryStorage.
type Storage interface {
	// Load returns the previously saved snapshot bytes, or nil when
	// nothing was saved yet.
	Load(ctx context.Context) ([]byte, error)

	// Save overwrites the stored snapshot.
	Save(ctx context.Context, data []byte) error
}

// MemoryStorage is an in-process Storage for ephemeral carts and tests.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStorage) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}
