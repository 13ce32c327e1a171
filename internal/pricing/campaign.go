package pricing

import (
	"fmt"
	"time"
)

// DiscountKind identifies how a campaign's value is interpreted.
// Campaigns with a kind outside this set never qualify for a discount.
type DiscountKind int

const (
	// KindPercentage discounts by Value percent of the list price.
	KindPercentage DiscountKind = iota + 1
	// KindFixedAmount discounts by Value minor units.
	KindFixedAmount
)

// String returns the stored label for the kind.
func (k DiscountKind) String() string {
	switch k {
	case KindPercentage:
		return "percentage"
	case KindFixedAmount:
		return "fixed"
	default:
		return "unknown"
	}
}

// ParseDiscountKind maps a stored kind label to its DiscountKind.
func ParseDiscountKind(s string) (DiscountKind, error) {
	switch s {
	case "percentage":
		return KindPercentage, nil
	case "fixed":
		return KindFixedAmount, nil
	default:
		return 0, ErrInvalidInput{Field: "kind", Reason: fmt.Sprintf("unknown discount kind %q", s)}
	}
}

// CampaignStatus is the admin-controlled on/off switch for a campaign.
// A campaign must also be inside its time window to take effect.
type CampaignStatus string

const (
	StatusActive   CampaignStatus = "active"
	StatusInactive CampaignStatus = "inactive"
)

// Campaign is a time-bounded promotional discount scoped to a set of products.
type Campaign struct {
	ID   string
	Name string
	Kind DiscountKind

	// Value is a percent in [0,100] for KindPercentage and an amount in
	// minor units for KindFixedAmount.
	Value float64

	Status     CampaignStatus
	StartTime  time.Time
	EndTime    time.Time
	ProductIDs []string
}

// InEffect reports whether the campaign applies at instant t: status active
// and StartTime <= t <= EndTime. A cached "active" status does not qualify a
// campaign whose window has passed.
func (c *Campaign) InEffect(t time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	return !t.Before(c.StartTime) && !t.After(c.EndTime)
}

// AppliesTo reports whether the campaign covers the given product.
func (c *Campaign) AppliesTo(productID string) bool {
	for _, id := range c.ProductIDs {
		if id == productID {
			return true
		}
	}
	return false
}

// wellFormed reports whether the campaign may be considered for resolution.
// Malformed campaigns are excluded rather than rejected: a negative value
// must never increase a price, and an unknown kind has no defined amount.
func (c *Campaign) wellFormed() bool {
	if c.Kind != KindPercentage && c.Kind != KindFixedAmount {
		return false
	}
	if c.Value < 0 {
		return false
	}
	if c.Kind == KindPercentage && c.Value > 100 {
		return false
	}
	return !c.EndTime.Before(c.StartTime)
}

// Validate returns an error describing why the campaign cannot be stored.
// Used by the admin API and the bulk importer before a write.
func (c *Campaign) Validate() error {
	if c.Name == "" {
		return ErrInvalidInput{Field: "name", Reason: "cannot be empty"}
	}
	if c.Kind != KindPercentage && c.Kind != KindFixedAmount {
		return ErrInvalidInput{Field: "kind", Reason: "must be percentage or fixed"}
	}
	if c.Value < 0 {
		return ErrInvalidInput{Field: "value", Reason: "cannot be negative"}
	}
	if c.Kind == KindPercentage && c.Value > 100 {
		return ErrInvalidInput{Field: "value", Reason: "percentage cannot exceed 100"}
	}
	if c.Status != StatusActive && c.Status != StatusInactive {
		return ErrInvalidInput{Field: "status", Reason: "must be active or inactive"}
	}
	if c.EndTime.Before(c.StartTime) {
		return ErrInvalidInput{Field: "endTime", Reason: "cannot be before startTime"}
	}
	if len(c.ProductIDs) == 0 {
		return ErrInvalidInput{Field: "productIds", Reason: "must cover at least one product"}
	}
	return nil
}
