package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepo counts repository queries and can be flipped to fail.
type stubRepo struct {
	campaigns []Campaign
	err       error
	calls     int
}

func (r *stubRepo) ListActive(ctx context.Context) ([]Campaign, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.campaigns, nil
}

// testClock is a manually advanced clock for cache expiry tests.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCacheReusesSnapshotWithinTTL(t *testing.T) {
	repo := &stubRepo{campaigns: []Campaign{campaignFor("c1", KindPercentage, 10, "p")}}
	clock := &testClock{now: testNow}
	cache := NewCampaignCache(repo, DefaultCacheTTL, clock.Now)

	ctx := context.Background()
	_, err := cache.ActiveCampaigns(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	clock.Advance(4 * time.Minute)
	snap, err := cache.ActiveCampaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "within the TTL the repository must not be re-queried")
	assert.Len(t, snap, 1)
}

func TestCacheRefreshesAfterExpiry(t *testing.T) {
	repo := &stubRepo{}
	clock := &testClock{now: testNow}
	cache := NewCampaignCache(repo, DefaultCacheTTL, clock.Now)

	ctx := context.Background()
	_, err := cache.ActiveCampaigns(ctx)
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Second)
	_, err = cache.ActiveCampaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestCacheInvalidateForcesRefresh(t *testing.T) {
	repo := &stubRepo{}
	clock := &testClock{now: testNow}
	cache := NewCampaignCache(repo, DefaultCacheTTL, clock.Now)

	ctx := context.Background()
	_, err := cache.ActiveCampaigns(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	cache.Invalidate()

	_, err = cache.ActiveCampaigns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestCacheServesStaleOnRefreshFailure(t *testing.T) {
	repo := &stubRepo{campaigns: []Campaign{campaignFor("c1", KindPercentage, 10, "p")}}
	clock := &testClock{now: testNow}
	cache := NewCampaignCache(repo, DefaultCacheTTL, clock.Now)

	ctx := context.Background()
	_, err := cache.ActiveCampaigns(ctx)
	require.NoError(t, err)

	repo.err = errors.New("repository unavailable")
	clock.Advance(10 * time.Minute)

	snap, err := cache.ActiveCampaigns(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 1, "expired snapshot is still better than no prices")
}

func TestCacheErrorsWithNoSnapshot(t *testing.T) {
	repo := &stubRepo{err: errors.New("repository unavailable")}
	cache := NewCampaignCache(repo, DefaultCacheTTL, nil)

	_, err := cache.ActiveCampaigns(context.Background())
	require.Error(t, err)
}

func TestCacheIdempotentAcrossRefetch(t *testing.T) {
	// Resolving with identical inputs yields the same outcome before and
	// after a cache expiry re-fetch, given unchanged repository state.
	repo := &stubRepo{campaigns: []Campaign{campaignFor("c1", KindPercentage, 20, "hammer")}}
	clock := &testClock{now: testNow}
	cache := NewCampaignCache(repo, DefaultCacheTTL, clock.Now)
	resolver := NewResolver(cache, func() time.Time { return testNow })

	ctx := context.Background()
	first, err := resolver.Resolve(ctx, "hammer", 3000)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	second, err := resolver.Resolve(ctx, "hammer", 3000)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls)
	assert.Equal(t, first, second)
}
