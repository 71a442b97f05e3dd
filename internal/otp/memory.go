package otp

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	hash      string
	expiresAt time.Time
}

// MemoryStore is a process-local CodeStore. Expired entries are dropped
// lazily when read; there are no background timers.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty store on the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

// SetClock overrides the time source, for tests.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// SaveOTP stores hash for phone until ttl elapses.
func (m *MemoryStore) SaveOTP(_ context.Context, phone, hash string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[phone] = entry{hash: hash, expiresAt: m.now().Add(ttl)}
	return nil
}

// GetOTP returns the live hash for phone.
func (m *MemoryStore) GetOTP(_ context.Context, phone string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[phone]
	if !ok {
		return "", false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, phone)
		return "", false, nil
	}
	return e.hash, true, nil
}

// ConsumeOTP deletes the entry for phone if it is live and still holds hash.
func (m *MemoryStore) ConsumeOTP(_ context.Context, phone, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[phone]
	if !ok || e.hash != hash {
		return false, nil
	}
	delete(m.entries, phone)
	return m.now().Before(e.expiresAt), nil
}

// Len reports how many entries are held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
