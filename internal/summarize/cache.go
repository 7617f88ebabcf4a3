package summarize

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"quicky/internal/domain"
)

// DefaultCacheTTL mirrors the backend's own summary cache window.
const DefaultCacheTTL = 24 * time.Hour

// Cache is a client-side TTL cache of successful summaries, with
// singleflight so concurrent identical requests collapse into one call.
type Cache struct {
	store *gocache.Cache
	group singleflight.Group
}

// NewCache creates a summary cache with the given entry lifetime.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Cache{
		store: gocache.New(ttl, 10*time.Minute),
	}
}

// Key derives the cache key from content and requested format.
func Key(content string, format domain.Format) string {
	sum := sha256.Sum256([]byte(content + string(format)))
	return hex.EncodeToString(sum[:])
}

// GetOrCompute returns the cached summary for key, or runs compute once
// (even under concurrent callers) and caches its successful result.
func (c *Cache) GetOrCompute(key string, compute func() (domain.Summary, error)) (domain.Summary, error) {
	if hit, found := c.store.Get(key); found {
		summary := hit.(domain.Summary)
		summary.Cached = true
		return summary, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		if hit, found := c.store.Get(key); found {
			summary := hit.(domain.Summary)
			summary.Cached = true
			return summary, nil
		}

		summary, err := compute()
		if err != nil {
			return domain.Summary{}, err
		}
		c.store.Set(key, summary, gocache.DefaultExpiration)
		return summary, nil
	})
	if err != nil {
		return domain.Summary{}, err
	}
	return value.(domain.Summary), nil
}
