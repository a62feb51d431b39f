package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"podcast-catalog/pkg/cache"
)

// MemoryCache là cache.Cache in-memory cho test, giữ JSON giống Redis
type MemoryCache struct {
	mu      sync.Mutex
	items   map[string]memoryItem
	now     func() time.Time
	FailAll error // khi khác nil mọi thao tác trả lỗi này (giả lập Redis down)
}

type memoryItem struct {
	data      []byte
	counter   int64
	isCounter bool
	expiresAt time.Time
}

var _ cache.Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem), now: time.Now}
}

// ErrCacheDown giả lập lỗi kết nối Redis
var ErrCacheDown = errors.New("cache unavailable")

func (m *MemoryCache) load(key string) (memoryItem, bool) {
	item, ok := m.items[key]
	if !ok {
		return memoryItem{}, false
	}
	if !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		delete(m.items, key)
		return memoryItem{}, false
	}
	return item, true
}

func (m *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll != nil {
		return false, m.FailAll
	}

	item, ok := m.load(key)
	if !ok {
		return false, nil
	}
	// Redis GET trên counter trả về số dạng text
	if item.isCounter {
		return true, json.Unmarshal([]byte(strconv.FormatInt(item.counter, 10)), dest)
	}
	return true, json.Unmarshal(item.data, dest)
}

func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll != nil {
		return m.FailAll
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	item := memoryItem{data: data}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}
	m.items[key] = item
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll != nil {
		return m.FailAll
	}
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

func (m *MemoryCache) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FailAll
}

func (m *MemoryCache) Increment(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll != nil {
		return 0, m.FailAll
	}

	item, _ := m.load(key)
	item.isCounter = true
	item.counter++
	m.items[key] = item
	return item.counter, nil
}

func (m *MemoryCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll != nil {
		return m.FailAll
	}

	if item, ok := m.load(key); ok {
		item.expiresAt = m.now().Add(ttl)
		m.items[key] = item
	}
	return nil
}

// TTL theo quy ước Redis: -2 khi key không tồn tại, -1 khi không có expiry
func (m *MemoryCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll != nil {
		return 0, m.FailAll
	}

	item, ok := m.load(key)
	switch {
	case !ok:
		return -2, nil
	case item.expiresAt.IsZero():
		return -1, nil
	default:
		return item.expiresAt.Sub(m.now()), nil
	}
}

// Has báo key còn sống hay không
func (m *MemoryCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.load(key)
	return ok
}

// Advance dời đồng hồ nội bộ để test expiry
func (m *MemoryCache) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := m.now()
	m.now = func() time.Time { return base.Add(d) }
}

// SetFailure bật/tắt giả lập Redis down
func (m *MemoryCache) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailAll = err
}
