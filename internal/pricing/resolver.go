package pricing

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Outcome describes the resolved sell price for a product.
// DiscountAmount always equals OriginalPrice - FinalPrice exactly.
type Outcome struct {
	HasDiscount    bool
	OriginalPrice  int64
	FinalPrice     int64
	DiscountAmount int64
	CampaignID     string
	CampaignName   string
	Kind           DiscountKind
}

// tieBreakRules order campaign preference when several qualify for the same
// product. Rules run in order until one returns a non-zero preference:
// percentage beats fixed-amount, then the larger value, then the lowest ID
// so resolution is deterministic for the same input set.
var tieBreakRules = []func(a, b *Campaign) int{
	preferPercentage,
	preferLargerValue,
	preferLowerID,
}

func preferPercentage(a, b *Campaign) int {
	if a.Kind == b.Kind {
		return 0
	}
	if a.Kind == KindPercentage {
		return -1
	}
	if b.Kind == KindPercentage {
		return 1
	}
	return 0
}

func preferLargerValue(a, b *Campaign) int {
	switch {
	case a.Value > b.Value:
		return -1
	case b.Value > a.Value:
		return 1
	default:
		return 0
	}
}

func preferLowerID(a, b *Campaign) int {
	switch {
	case a.ID < b.ID:
		return -1
	case b.ID < a.ID:
		return 1
	default:
		return 0
	}
}

// prefer reports whether candidate a should win over current best b.
func prefer(a, b *Campaign) bool {
	for _, rule := range tieBreakRules {
		if cmp := rule(a, b); cmp != 0 {
			return cmp < 0
		}
	}
	return false
}

// ResolvePrice computes the discounted price for a product given the campaign
// set and the current instant. It is a pure function of its inputs: no
// campaign fetch, no clock reads. Campaigns not in effect at now are excluded
// even if a caller cached them as active.
func ResolvePrice(productID string, listPrice int64, campaigns []Campaign, now time.Time) (Outcome, error) {
	if listPrice < 0 {
		return Outcome{}, ErrInvalidInput{Field: "listPrice", Reason: "cannot be negative"}
	}

	var winner *Campaign
	for i := range campaigns {
		c := &campaigns[i]
		if !c.InEffect(now) || !c.AppliesTo(productID) || !c.wellFormed() {
			continue
		}
		if winner == nil || prefer(c, winner) {
			winner = c
		}
	}

	if winner == nil {
		return Outcome{
			OriginalPrice: listPrice,
			FinalPrice:    listPrice,
		}, nil
	}

	return applyCampaign(winner, listPrice), nil
}

// applyCampaign computes the outcome for the selected campaign. The discount
// amount is recomputed from the clamped final price so the
// DiscountAmount == OriginalPrice - FinalPrice invariant holds exactly even
// when a fixed discount exceeds the list price.
func applyCampaign(c *Campaign, listPrice int64) Outcome {
	var amount int64
	switch c.Kind {
	case KindPercentage:
		amount = int64(math.Round(float64(listPrice) * c.Value / 100))
	case KindFixedAmount:
		amount = int64(math.Round(c.Value))
	}

	finalPrice := listPrice - amount
	if finalPrice < 0 {
		finalPrice = 0
	}

	return Outcome{
		HasDiscount:    true,
		OriginalPrice:  listPrice,
		FinalPrice:     finalPrice,
		DiscountAmount: listPrice - finalPrice,
		CampaignID:     c.ID,
		CampaignName:   c.Name,
		Kind:           c.Kind,
	}
}

// CampaignSource supplies the campaign set a Resolver considers.
// In production this is the CampaignCache.
type CampaignSource interface {
	ActiveCampaigns(ctx context.Context) ([]Campaign, error)
}

// Resolver resolves storefront sell prices against a campaign source and a
// clock.
type Resolver struct {
	source CampaignSource
	now    func() time.Time
	logger zerolog.Logger
}

// NewResolver creates a resolver. A nil clock defaults to time.Now.
func NewResolver(source CampaignSource, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		source: source,
		now:    now,
		logger: log.With().Str("component", "discount_resolver").Logger(),
	}
}

// Resolve fetches the current campaign set and resolves the sell price for
// the product. A campaign source failure degrades to the undiscounted list
// price: logged, never surfaced to the shopper as a hard failure.
func (r *Resolver) Resolve(ctx context.Context, productID string, listPrice int64) (Outcome, error) {
	start := time.Now()
	defer func() {
		recordResolveDuration(time.Since(start))
	}()

	if listPrice < 0 {
		return Outcome{}, ErrInvalidInput{Field: "listPrice", Reason: "cannot be negative"}
	}

	campaigns, err := r.source.ActiveCampaigns(ctx)
	if err != nil {
		r.logger.Error().Err(err).Str("product", productID).Msg("Campaign fetch failed, serving list price")
		recordResolveFallback()
		return Outcome{OriginalPrice: listPrice, FinalPrice: listPrice}, nil
	}

	return ResolvePrice(productID, listPrice, campaigns, r.now())
}
