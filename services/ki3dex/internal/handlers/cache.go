package handlers

import (
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Cache is the minimal read/write interface for the page cache.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, v any)
}

// Subscriber is the part of *nats.Conn the cache needs for invalidation.
type Subscriber interface {
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

type cacheItem struct {
	val       any
	expiresAt time.Time
}

// TTLCache is an in-memory Cache with per-entry expiry and optional NATS invalidation.
type TTLCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
	ttl   time.Duration
	now   func() time.Time
}

// NewTTLCache creates a TTLCache and wires up key-level invalidation on subj
// when sub is non-nil. A message body of "" or "ALL" drops every entry.
func NewTTLCache(ttl time.Duration, sub Subscriber, subj string) (*TTLCache, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &TTLCache{
		items: make(map[string]cacheItem),
		ttl:   ttl,
		now:   time.Now,
	}
	if sub != nil && subj != "" {
		if _, err := sub.Subscribe(subj, func(m *nats.Msg) { c.Invalidate(string(m.Data)) }); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(it.expiresAt) {
		c.mu.Lock()
		if cur, ok2 := c.items[key]; ok2 && c.now().After(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return it.val, true
}

func (c *TTLCache) Set(key string, v any) {
	c.mu.Lock()
	c.items[key] = cacheItem{val: v, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops key, or everything for "" and "ALL".
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key == "" || strings.EqualFold(key, "ALL") {
		c.items = make(map[string]cacheItem)
		return
	}
	delete(c.items, key)
}
