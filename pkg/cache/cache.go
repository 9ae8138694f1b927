// Package cache provides a process-wide TTL cache for ranked leaderboard
// pages, keyed by deterministic strings and invalidated by granularity tag.
package cache

import (
	"sort"
	"strings"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Default TTL per granularity. Shorter windows churn faster and tolerate a
// shorter cache life.
var defaultTTLs = map[string]time.Duration{
	"day":      30 * time.Second,
	"week":     2 * time.Minute,
	"month":    5 * time.Minute,
	"all_time": 15 * time.Minute,
}

const fallbackTTL = 60 * time.Second

type entry[V any] struct {
	value       V
	granularity string
	expiresAt   time.Time
}

// TTLCache is a concurrency-safe in-memory cache. Entries expire lazily on
// lookup; there is no background sweep. A Set race is last-write-wins, which
// is acceptable because entries hold derived, recomputable data.
type TTLCache[V any] struct {
	entries  cmap.ConcurrentMap[string, entry[V]]
	override time.Duration
	now      func() time.Time
}

// New creates a TTLCache. A non-zero override replaces the per-granularity
// TTL table with a single duration for every entry.
func New[V any](override time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		entries:  cmap.New[entry[V]](),
		override: override,
		now:      time.Now,
	}
}

// BuildKey produces a deterministic cache key from field/value pairs. Fields
// are sorted by name so logically identical requests always collide on the
// same slot regardless of argument order.
func BuildKey(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+fields[name])
	}
	return strings.Join(parts, "|")
}

// Get returns the cached value for key, or false on a miss. An expired entry
// is evicted and reported as a miss.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.entries.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the TTL derived from granularity.
func (c *TTLCache[V]) Set(key, granularity string, value V) {
	c.entries.Set(key, entry[V]{
		value:       value,
		granularity: granularity,
		expiresAt:   c.now().Add(c.ttlFor(granularity)),
	})
}

// Invalidate removes all entries whose granularity matches one of the given
// tags. With no tags it clears the whole cache.
func (c *TTLCache[V]) Invalidate(tags ...string) {
	if len(tags) == 0 {
		c.entries.Clear()
		return
	}

	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}

	for item := range c.entries.IterBuffered() {
		if _, ok := tagSet[item.Val.granularity]; ok {
			c.entries.Remove(item.Key)
		}
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *TTLCache[V]) Len() int {
	return c.entries.Count()
}

func (c *TTLCache[V]) ttlFor(granularity string) time.Duration {
	if c.override > 0 {
		return c.override
	}
	if ttl, ok := defaultTTLs[granularity]; ok {
		return ttl
	}
	return fallbackTTL
}
