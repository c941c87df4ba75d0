package history

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory. It is the fallback when no
// Redis address is configured and the store used by tests.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	profile *Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Newest first, matching ListAll order.
	m.records = append([]Record{rec}, m.records...)
	return nil
}

func (m *MemoryStore) ListAll(_ context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MemoryStore) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

func (m *MemoryStore) SaveProfile(_ context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.profile = &cp
	return nil
}

func (m *MemoryStore) LoadProfile(_ context.Context) (Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return Profile{}, ErrNoProfile
	}
	return *m.profile, nil
}

func (m *MemoryStore) ClearProfile(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
