package cache

import (
	"context"
	"sync"
	"time"

	"RSIWatch/internal/model"
)

type memoryEntry struct {
	bars      []model.OHLCV
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Expired entries are evicted on read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]model.OHLCV, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return cloneBars(e.bars), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, bars []model.OHLCV, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{bars: cloneBars(bars), expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoryEntry)
	return nil
}

// Len reports the number of entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// callers own the returned slice
func cloneBars(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	return out
}
