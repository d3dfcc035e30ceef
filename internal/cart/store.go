package cart

import (
	"context"
	"sync"
)

// Store persists carts by session id. A missing cart loads as an empty one.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps carts in process memory. Used when Redis is not configured
// and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Snapshot)}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return FromSnapshot(m.carts[sessionID]), nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, c *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Len() == 0 {
		delete(m.carts, sessionID)
		return nil
	}
	m.carts[sessionID] = c.Snapshot()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}
