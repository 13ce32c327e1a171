// Package cart implements the storefront cart: an ordered list of line
// items kept in the session, reconciled against a per-identity remote
// document when the shopper authenticates, and mirrored back to it on every
// mutation afterwards.
package cart

// Item is one cart line: a product at the unit price it carried when added.
type Item struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Items is an ordered cart, unique by product ID.
type Items []Item

// Add merges the item into the cart and returns the result: an existing
// product ID has its quantity incremented, a new one is appended. A
// non-positive quantity defaults to 1.
func (items Items) Add(item Item) Items {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

// Remove returns the cart without the given product.
func (items Items) Remove(productID string) Items {
	out := make(Items, 0, len(items))
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}

// SetQuantity returns the cart with the product's quantity replaced.
// A quantity of zero or less removes the line.
func (items Items) SetQuantity(productID string, quantity int) Items {
	if quantity <= 0 {
		return items.Remove(productID)
	}
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			break
		}
	}
	return items
}

// Total returns the cart total in minor units.
func (items Items) Total() int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// Count returns the number of units across all lines.
func (items Items) Count() int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

// Clone returns an independent copy of the cart.
func (items Items) Clone() Items {
	out := make(Items, len(items))
	copy(out, items)
	return out
}
