package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is the fallback when no REDIS_URL is configured. It lives as long as
// the process.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	prefix  string
	now     func() time.Time
}

func NewMemory(prefix string) *Memory {
	return &Memory{entries: make(map[string]memoryEntry), prefix: prefix, now: time.Now}
}

func (m *Memory) Key(parts ...string) string {
	return joinKey(m.prefix, parts)
}

func (m *Memory) GetBytes(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

func (m *Memory) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}
