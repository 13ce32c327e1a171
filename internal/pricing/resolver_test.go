package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// campaignFor builds an in-effect campaign covering the given product.
func campaignFor(id string, kind DiscountKind, value float64, productIDs ...string) Campaign {
	return Campaign{
		ID:         id,
		Name:       "Campaign " + id,
		Kind:       kind,
		Value:      value,
		Status:     StatusActive,
		StartTime:  testNow.Add(-24 * time.Hour),
		EndTime:    testNow.Add(24 * time.Hour),
		ProductIDs: productIDs,
	}
}

func TestResolveNoCampaigns(t *testing.T) {
	out, err := ResolvePrice("hammer", 1299, nil, testNow)
	require.NoError(t, err)

	assert.False(t, out.HasDiscount)
	assert.Equal(t, int64(1299), out.OriginalPrice)
	assert.Equal(t, int64(1299), out.FinalPrice)
	assert.Equal(t, int64(0), out.DiscountAmount)
	assert.Empty(t, out.CampaignID)
}

func TestResolveNegativeListPrice(t *testing.T) {
	_, err := ResolvePrice("hammer", -1, nil, testNow)
	require.Error(t, err)

	var invalid ErrInvalidInput
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "listPrice", invalid.Field)
}

func TestResolveSinglePercentageCampaign(t *testing.T) {
	campaigns := []Campaign{campaignFor("c1", KindPercentage, 20, "hammer")}

	// 20% off a £30.00 item.
	out, err := ResolvePrice("hammer", 3000, campaigns, testNow)
	require.NoError(t, err)

	assert.True(t, out.HasDiscount)
	assert.Equal(t, int64(2400), out.FinalPrice)
	assert.Equal(t, int64(600), out.DiscountAmount)
	assert.Equal(t, "c1", out.CampaignID)
	assert.Equal(t, KindPercentage, out.Kind)
}

func TestResolveFixedAmountClampsAtZero(t *testing.T) {
	// £5.00 off a £3.50 item must floor at zero, and the discount amount
	// must equal originalPrice - finalPrice after the clamp.
	campaigns := []Campaign{campaignFor("c1", KindFixedAmount, 500, "washers")}

	out, err := ResolvePrice("washers", 350, campaigns, testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(0), out.FinalPrice)
	assert.Equal(t, int64(350), out.DiscountAmount)
	assert.Equal(t, out.OriginalPrice-out.FinalPrice, out.DiscountAmount)
}

func TestResolvePercentageBeatsFixed(t *testing.T) {
	// 20% and £5.00 off a £30.00 item: the percentage campaign wins even
	// though the fixed discount is worth more in absolute terms here.
	campaigns := []Campaign{
		campaignFor("fixed", KindFixedAmount, 500, "drill"),
		campaignFor("percent", KindPercentage, 20, "drill"),
	}

	out, err := ResolvePrice("drill", 3000, campaigns, testNow)
	require.NoError(t, err)

	assert.Equal(t, "percent", out.CampaignID)
	assert.Equal(t, int64(2400), out.FinalPrice)
}

func TestResolveLargerValueWinsSameKind(t *testing.T) {
	// 10% vs 15% off a £50.00 item: 15% wins.
	campaigns := []Campaign{
		campaignFor("ten", KindPercentage, 10, "saw"),
		campaignFor("fifteen", KindPercentage, 15, "saw"),
	}

	out, err := ResolvePrice("saw", 5000, campaigns, testNow)
	require.NoError(t, err)

	assert.Equal(t, "fifteen", out.CampaignID)
	assert.Equal(t, int64(4250), out.FinalPrice)
}

func TestResolveLowestIDBreaksExactTie(t *testing.T) {
	campaigns := []Campaign{
		campaignFor("bbb", KindPercentage, 10, "saw"),
		campaignFor("aaa", KindPercentage, 10, "saw"),
	}

	out, err := ResolvePrice("saw", 5000, campaigns, testNow)
	require.NoError(t, err)
	assert.Equal(t, "aaa", out.CampaignID)

	// Input order must not change the result.
	campaigns[0], campaigns[1] = campaigns[1], campaigns[0]
	again, err := ResolvePrice("saw", 5000, campaigns, testNow)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestResolveWindowExcludesCampaigns(t *testing.T) {
	future := campaignFor("future", KindPercentage, 50, "saw")
	future.StartTime = testNow.Add(time.Hour)
	future.EndTime = testNow.Add(48 * time.Hour)

	past := campaignFor("past", KindPercentage, 50, "saw")
	past.StartTime = testNow.Add(-48 * time.Hour)
	past.EndTime = testNow.Add(-time.Hour)

	inactive := campaignFor("inactive", KindPercentage, 50, "saw")
	inactive.Status = StatusInactive

	out, err := ResolvePrice("saw", 5000, []Campaign{future, past, inactive}, testNow)
	require.NoError(t, err)
	assert.False(t, out.HasDiscount)
	assert.Equal(t, int64(5000), out.FinalPrice)
}

func TestResolveWindowBoundsInclusive(t *testing.T) {
	c := campaignFor("edge", KindPercentage, 10, "saw")
	c.StartTime = testNow
	c.EndTime = testNow

	out, err := ResolvePrice("saw", 5000, []Campaign{c}, testNow)
	require.NoError(t, err)
	assert.True(t, out.HasDiscount)
}

func TestResolveMalformedCampaignsExcluded(t *testing.T) {
	negative := campaignFor("neg", KindFixedAmount, -200, "saw")
	overPercent := campaignFor("big", KindPercentage, 120, "saw")
	unknownKind := campaignFor("odd", DiscountKind(9), 10, "saw")

	out, err := ResolvePrice("saw", 5000, []Campaign{negative, overPercent, unknownKind}, testNow)
	require.NoError(t, err)
	assert.False(t, out.HasDiscount)
	assert.Equal(t, int64(5000), out.FinalPrice)
}

func TestResolveOtherProductsUnaffected(t *testing.T) {
	campaigns := []Campaign{campaignFor("c1", KindPercentage, 50, "drill")}

	out, err := ResolvePrice("saw", 5000, campaigns, testNow)
	require.NoError(t, err)
	assert.False(t, out.HasDiscount)
}

func TestResolveOutcomeBounds(t *testing.T) {
	// finalPrice stays within [0, listPrice] and the amount invariant holds
	// across kinds, values and list prices.
	prices := []int64{0, 1, 99, 350, 3000, 123456}
	campaignSets := [][]Campaign{
		nil,
		{campaignFor("a", KindPercentage, 100, "p")},
		{campaignFor("b", KindPercentage, 33.3, "p")},
		{campaignFor("c", KindFixedAmount, 1, "p")},
		{campaignFor("d", KindFixedAmount, 999999, "p")},
		{campaignFor("e", KindPercentage, 15, "p"), campaignFor("f", KindFixedAmount, 500, "p")},
	}

	for _, price := range prices {
		for _, set := range campaignSets {
			out, err := ResolvePrice("p", price, set, testNow)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, out.FinalPrice, int64(0))
			assert.LessOrEqual(t, out.FinalPrice, price)
			assert.Equal(t, out.OriginalPrice-out.FinalPrice, out.DiscountAmount)
		}
	}
}

// stubSource is a CampaignSource returning a fixed set or error.
type stubSource struct {
	campaigns []Campaign
	err       error
	calls     int
}

func (s *stubSource) ActiveCampaigns(ctx context.Context) ([]Campaign, error) {
	s.calls++
	return s.campaigns, s.err
}

func TestResolverFallsBackOnSourceFailure(t *testing.T) {
	source := &stubSource{err: errors.New("repository unavailable")}
	resolver := NewResolver(source, func() time.Time { return testNow })

	out, err := resolver.Resolve(context.Background(), "hammer", 1299)
	require.NoError(t, err)
	assert.False(t, out.HasDiscount)
	assert.Equal(t, int64(1299), out.FinalPrice)
}

func TestResolverRejectsNegativePriceBeforeFetch(t *testing.T) {
	source := &stubSource{}
	resolver := NewResolver(source, func() time.Time { return testNow })

	_, err := resolver.Resolve(context.Background(), "hammer", -50)
	require.Error(t, err)
	assert.Zero(t, source.calls)
}

func TestResolverIdempotent(t *testing.T) {
	source := &stubSource{campaigns: []Campaign{campaignFor("c1", KindPercentage, 20, "hammer")}}
	resolver := NewResolver(source, func() time.Time { return testNow })

	first, err := resolver.Resolve(context.Background(), "hammer", 3000)
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), "hammer", 3000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
