package analysis

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// Cache holds validated model answers keyed by the analyzed input. Entries
// expire after ttl and the least recently used entry is evicted once
// capacity is reached. A nil *Cache is a valid, always-empty cache.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	order    *list.List
	items    map[string]*list.Element
}

type cacheItem struct {
	key     string
	answer  string
	expires time.Time
}

func NewCache(capacity int, ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:      ttl,
		capacity: capacity,
		now:      now,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (c *Cache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	item := el.Value.(*cacheItem)
	if !c.now().Before(item.expires) {
		c.order.Remove(el)
		delete(c.items, key)
		return "", false
	}
	c.order.MoveToFront(el)
	return item.answer, true
}

func (c *Cache) Put(key, answer string) {
	if c == nil || c.capacity <= 0 || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		item := el.Value.(*cacheItem)
		item.answer = answer
		item.expires = expires
		c.order.MoveToFront(el)
		return
	}
	for c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheItem).key)
	}
	c.items[key] = c.order.PushFront(&cacheItem{key: key, answer: answer, expires: expires})
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CacheKey fingerprints entry text together with the metrics derived from it.
func CacheKey(entries []NormalizedEntry) string {
	type keyed struct {
		NormalizedEntry
		Stress   string   `json:"stress"`
		Energy   string   `json:"energy"`
		Symptoms []string `json:"symptoms"`
	}
	rows := make([]keyed, len(entries))
	for i, e := range entries {
		rows[i] = keyed{
			NormalizedEntry: e,
			Stress:          string(e.Raw.Stress),
			Energy:          string(e.Raw.Energy),
			Symptoms:        e.Raw.Symptoms,
		}
	}
	raw, _ := json.Marshal(rows)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
