package pricing

// PriceRange returns the minimum and maximum sell price across a product's
// variant combination prices, displayed before a variant is chosen. Callers
// render a single price when min == max. A variant-bearing product must
// always expose at least one priced combination, so an empty input is an
// InvalidInput error rather than a zero range.
func PriceRange(prices []int64) (min, max int64, err error) {
	if len(prices) == 0 {
		return 0, 0, ErrInvalidInput{Field: "prices", Reason: "must contain at least one combination price"}
	}

	min, max = prices[0], prices[0]
	for _, p := range prices {
		if p < 0 {
			return 0, 0, ErrInvalidInput{Field: "prices", Reason: "cannot be negative"}
		}
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return min, max, nil
}
