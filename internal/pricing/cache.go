package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is the storefront's campaign freshness window: a cached
// campaign set is reused for five minutes before the repository is re-queried.
const DefaultCacheTTL = 5 * time.Minute

// CampaignRepository lists campaigns whose status is active. The status
// filter is the repository's; date-range filtering happens at resolution
// time against the resolver's clock.
type CampaignRepository interface {
	ListActive(ctx context.Context) ([]Campaign, error)
}

// CampaignCache is a TTL snapshot cache in front of a CampaignRepository.
// Snapshots are replaced whole, concurrent misses collapse into a single
// repository query via singleflight, and admin mutations call Invalidate so
// stale discounts are never shown past one invalidation plus natural expiry.
type CampaignCache struct {
	repo        CampaignRepository
	ttl         time.Duration
	loadTimeout time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	snapshot []Campaign
	expiry   time.Time
	loaded   bool

	sf     singleflight.Group
	logger zerolog.Logger
}

// NewCampaignCache creates a cache over repo. A non-positive ttl falls back
// to DefaultCacheTTL; a nil clock defaults to time.Now. The clock is
// injectable so tests control expiry deterministically.
func NewCampaignCache(repo CampaignRepository, ttl time.Duration, now func() time.Time) *CampaignCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &CampaignCache{
		repo:        repo,
		ttl:         ttl,
		loadTimeout: 10 * time.Second,
		now:         now,
		logger:      log.With().Str("component", "campaign_cache").Logger(),
	}
}

// ActiveCampaigns returns the cached campaign set, refreshing it from the
// repository when the snapshot has expired. When a refresh fails and a
// previous snapshot exists, the stale snapshot is served instead of failing
// the caller; with no snapshot at all the error is returned and the resolver
// degrades to the list price.
func (c *CampaignCache) ActiveCampaigns(ctx context.Context) ([]Campaign, error) {
	c.mu.RLock()
	if c.loaded && c.now().Before(c.expiry) {
		snap := c.snapshot
		c.mu.RUnlock()
		recordCacheHit()
		return snap, nil
	}
	c.mu.RUnlock()

	recordCacheMiss()
	v, err, _ := c.sf.Do("campaigns", func() (interface{}, error) {
		return c.refresh()
	})
	if err != nil {
		c.mu.RLock()
		snap, loaded := c.snapshot, c.loaded
		c.mu.RUnlock()
		if loaded {
			c.logger.Warn().Err(err).Msg("Campaign refresh failed, serving stale snapshot")
			return snap, nil
		}
		return nil, err
	}
	return v.([]Campaign), nil
}

// refresh queries the repository with a dedicated load context so one
// cancelled request does not fail the other singleflight waiters.
func (c *CampaignCache) refresh() ([]Campaign, error) {
	start := time.Now()
	loadCtx, cancel := context.WithTimeout(context.Background(), c.loadTimeout)
	defer cancel()

	campaigns, err := c.repo.ListActive(loadCtx)
	if err != nil {
		recordCacheLoadError()
		return nil, fmt.Errorf("list active campaigns: %w", err)
	}

	c.mu.Lock()
	c.snapshot = campaigns
	c.expiry = c.now().Add(c.ttl)
	c.loaded = true
	c.mu.Unlock()

	recordCacheLoad(time.Since(start))
	c.logger.Debug().
		Int("campaigns", len(campaigns)).
		Dur("duration", time.Since(start)).
		Msg("Refreshed campaign snapshot")

	return campaigns, nil
}

// Invalidate drops the cached snapshot so the next read re-queries the
// repository. Called after every admin campaign mutation.
func (c *CampaignCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.expiry = time.Time{}
	c.loaded = false
	c.mu.Unlock()
	recordCacheInvalidation()
}
