package database

import (
	"time"
)

// Product represents a catalog product
type Product struct {
	ID          string    `json:"id"`           // CUID2 with prd_ prefix
	Name        string    `json:"name"`         // Display name
	Description *string   `json:"description"`  // Optional long description
	ImageURL    *string   `json:"image_url"`    // Optional image URL
	ListPrice   int64     `json:"list_price"`   // Base price in minor units (pence)
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductVariant represents one sellable combination of a product's options
// (e.g. "red / large") with its own price
type ProductVariant struct {
	ID          string    `json:"id"`          // CUID2 with var_ prefix
	ProductID   string    `json:"product_id"`  // FK to products.id
	Combination string    `json:"combination"` // Option combination label, e.g. "red/large"
	Price       int64     `json:"price"`       // Price in minor units
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductPricing bundles everything the pricing endpoint needs for one product
type ProductPricing struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ListPrice     int64   `json:"list_price"`
	VariantPrices []int64 `json:"variant_prices"` // Per-combination prices, may be empty
}

// CartDocument is the stored cart for one authenticated identity.
// One document per identity, whole-document overwrites.
type CartDocument struct {
	Identity  string    `json:"identity"`   // Account identifier
	Items     []byte    `json:"items"`      // JSONB line items
	UpdatedAt time.Time `json:"updated_at"`
}
