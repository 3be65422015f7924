package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bbernstein/chargeroute/backend-go/internal/config"
	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

type clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// candidateEntry wraps cached candidates with their expiry
type candidateEntry struct {
	Stations  []models.Station
	ExpiresAt time.Time
}

// CandidateCache keeps recently fetched bounding-box station lists in memory
type CandidateCache struct {
	lru    *lru.Cache[string, *candidateEntry]
	ttl    time.Duration
	clock  clock
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewCandidateCache(cfg *config.StoreConfig) (*CandidateCache, error) {
	lruCache, err := lru.New[string, *candidateEntry](cfg.CandidateLRUSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &CandidateCache{
		lru:   lruCache,
		ttl:   cfg.GetCandidateTTL(),
		clock: realClock{},
	}, nil
}

// boundsKey rounds to roughly 100 m so nearby searches share an entry
func boundsKey(b models.Bounds) string {
	return fmt.Sprintf("%.3f:%.3f:%.3f:%.3f", b.MinLat, b.MaxLat, b.MinLng, b.MaxLng)
}

// Get returns a copy of the cached candidates for b
func (c *CandidateCache) Get(b models.Bounds) ([]models.Station, bool) {
	key := boundsKey(b)
	if entry, ok := c.lru.Get(key); ok {
		if c.clock.Now().Before(entry.ExpiresAt) {
			c.hits.Add(1)
			stations := make([]models.Station, len(entry.Stations))
			copy(stations, entry.Stations)
			return stations, true
		}
		c.lru.Remove(key)
	}
	c.misses.Add(1)
	return nil, false
}

func (c *CandidateCache) Add(b models.Bounds, stations []models.Station) {
	stored := make([]models.Station, len(stations))
	copy(stored, stations)
	c.lru.Add(boundsKey(b), &candidateEntry{
		Stations:  stored,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
}

// GetCacheStats returns statistics about cache hits and misses
func (c *CandidateCache) GetCacheStats() map[string]uint64 {
	return map[string]uint64{
		"lru_hits":   c.hits.Load(),
		"lru_misses": c.misses.Load(),
	}
}

// Clear removes all entries from the LRU cache
func (c *CandidateCache) Clear() {
	c.lru.Purge()
}
