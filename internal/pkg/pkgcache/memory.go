package pkgcache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a process-local Cache with per-entry TTL and lazy expiry.
//
// Entries are dropped when a Get finds them expired; there is no background
// sweeper. The working set here is tiny (one entry per recently fetched
// video), so leaking a few expired entries until the next read is fine.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an in-memory cache. now may be nil, in which case
// time.Now is used; tests inject it to control expiry.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}

	return &Memory{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Name identifies the backend in logs and metrics.
func (m *Memory) Name() string {
	return "memory"
}

// Get returns the cached value for key, or ok=false on a miss.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	ent, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if m.now().After(ent.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()

		return nil, false
	}

	return ent.value, true
}

// Set stores value under key for ttl.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
}

// Close drops all entries.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()

	return nil
}
