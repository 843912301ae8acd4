package adapter

import (
	"context"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/xiaoxin-go/webchat/internal/infrastructure/cache/port"
)

// MemoryCache is an in-process port.Cache used by tests and local runs
// without a Redis backend. Expiry is checked lazily against nowFn, which
// tests may override to simulate the passage of time.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	nowFn   func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiration
}

func NewMemoryAdapter() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		nowFn:   time.Now,
	}
}

// Ensure interface compliance at compile time
var _ port.Cache = (*MemoryCache)(nil)

// SetNow overrides the clock used for expiry checks.
func (m *MemoryCache) SetNow(fn func() time.Time) {
	m.mu.Lock()
	m.nowFn = fn
	m.mu.Unlock()
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok || m.expired(e) {
		return "", port.ErrMiss
	}
	return e.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	var expires time.Time
	m.mu.Lock()
	if ttl > 0 {
		expires = m.nowFn().Add(ttl)
	}
	m.entries[key] = memoryEntry{value: value, expiresAt: expires}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Del(_ context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if e, ok := m.entries[key]; ok {
			delete(m.entries, key)
			if !m.expired(e) {
				removed++
			}
		}
	}
	return removed, nil
}

func (m *MemoryCache) DelIfEquals(_ context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || m.expired(e) || e.value != value {
		return false, nil
	}
	delete(m.entries, key)
	return true, nil
}

func (m *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var current int64
	if e, ok := m.entries[key]; ok && !m.expired(e) {
		n, err := strconv.ParseInt(e.value, 10, 64)
		if err != nil {
			return 0, err
		}
		current = n
	}
	current++
	m.entries[key] = memoryEntry{value: strconv.FormatInt(current, 10)}
	return current, nil
}

func (m *MemoryCache) Scan(_ context.Context, pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for key, e := range m.entries {
		if m.expired(e) {
			continue
		}
		if ok, err := path.Match(pattern, key); err != nil {
			return nil, err
		} else if ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryCache) MGet(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make(map[string]string, len(keys))
	for _, key := range keys {
		if e, ok := m.entries[key]; ok && !m.expired(e) {
			res[key] = e.value
		}
	}
	return res, nil
}

func (m *MemoryCache) Ping(context.Context) error { return nil }

func (m *MemoryCache) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// expired must be called with at least a read lock held.
func (m *MemoryCache) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.nowFn().Before(e.expiresAt)
}
