package route

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/Hari1275/sdp-sub002/internal/shared/geo"
	"github.com/Hari1275/sdp-sub002/internal/shared/polyline"
)

const (
	// cacheKeyPrecision rounds endpoints to 4 decimal places (~11 m) so
	// near-identical trips share an entry despite GPS jitter.
	cacheKeyPrecision = 4

	defaultCacheTTL      = 24 * time.Hour
	defaultCacheCapacity = 1000
)

type cacheEntry struct {
	origin      geo.Point
	destination geo.Point
	result      Result
	createdAt   time.Time
	seq         uint64
}

// Cache is the process-wide store of computed routes. It is an explicit
// dependency rather than a package global so tests can inject a fake clock
// and engines never share hidden state. Entries expire after the TTL and the
// oldest-inserted entries are dropped once capacity is exceeded.
//
// Lifetime is the process lifetime; nothing survives a restart, and separate
// instances of a horizontally scaled deployment do not see each other's
// entries.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	capacity int
	ttl      time.Duration
	now      func() time.Time
	seq      uint64
}

// NewCache returns a cache with the given capacity and the standard 24 h TTL.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	return &Cache{
		entries:  make(map[string]*cacheEntry),
		capacity: capacity,
		ttl:      defaultCacheTTL,
		now:      time.Now,
	}
}

// Key derives the cache key from the rounded endpoints and point count.
func Key(origin, dest geo.Point, count int) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.*f,%.*f|%.*f,%.*f|%d",
		cacheKeyPrecision, origin.Lat, cacheKeyPrecision, origin.Lng,
		cacheKeyPrecision, dest.Lat, cacheKeyPrecision, dest.Lng, count)
	return fmt.Sprintf("%x", h.Sum64())
}

// Get returns a cached result when a fresh entry exists for the key.
func (c *Cache) Get(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.createdAt) >= c.ttl {
		return Result{}, false
	}

	result := entry.result
	result.CacheHit = true
	result.Method = MethodCachedRoute
	result.APICalls = 0
	return result, true
}

// Put stores a computed result, evicting oldest-inserted entries once the
// capacity is exceeded.
func (c *Cache) Put(key string, origin, dest geo.Point, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.entries[key] = &cacheEntry{
		origin:      origin,
		destination: dest,
		result:      result,
		createdAt:   c.now(),
		seq:         c.seq,
	}

	for len(c.entries) > c.capacity {
		var oldestKey string
		var oldestSeq uint64
		for k, e := range c.entries {
			if oldestKey == "" || e.seq < oldestSeq {
				oldestKey, oldestSeq = k, e.seq
			}
		}
		delete(c.entries, oldestKey)
	}
}

// ReverseMatch looks for a fresh entry whose endpoints mirror the requested
// trip within jitter tolerance and synthesizes a response by reversing the
// cached geometry. This assumes route symmetry, which one-way streets can
// violate; the approximation is accepted to avoid a paid call on every
// return journey.
func (c *Cache) ReverseMatch(origin, dest geo.Point) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, entry := range c.entries {
		if c.now().Sub(entry.createdAt) >= c.ttl {
			continue
		}
		if geo.DistanceKm(entry.destination, origin)*1000 > JitterToleranceM {
			continue
		}
		if geo.DistanceKm(entry.origin, dest)*1000 > JitterToleranceM {
			continue
		}

		result := entry.result
		result.CacheHit = true
		result.Method = MethodCachedRoute
		result.APICalls = 0
		if len(entry.result.Polyline.Geometry) > 0 {
			reversed := polyline.Reverse(entry.result.Polyline.Geometry)
			result.Polyline = polyline.Data{
				EncodedPolyline: polyline.Encode(reversed),
				Geometry:        reversed,
				Method:          entry.result.Polyline.Method,
				AccuracyClass:   entry.result.Polyline.AccuracyClass,
			}
		}
		result.Warnings = append(append([]string(nil), entry.result.Warnings...),
			"distance reused from the reverse journey; assumes route symmetry")
		return result, true
	}
	return Result{}, false
}

// Len reports the number of stored entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
