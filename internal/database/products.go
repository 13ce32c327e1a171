package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetProduct retrieves a product by its ID
func GetProduct(ctx context.Context, id string) (*Product, error) {
	pool := Pool()

	var p Product
	err := pool.QueryRow(ctx, `
		SELECT id, name, description, image_url, list_price, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.ListPrice,
		&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("error querying product %s: %w", id, err)
	}
	return &p, nil
}

// GetProductPricing retrieves the product's list price together with every
// variant combination price, for the pricing endpoint
func GetProductPricing(ctx context.Context, id string) (*ProductPricing, error) {
	pool := Pool()

	var pricing ProductPricing
	err := pool.QueryRow(ctx, `
		SELECT id, name, list_price
		FROM products
		WHERE id = $1
	`, id).Scan(&pricing.ID, &pricing.Name, &pricing.ListPrice)
	if err != nil {
		return nil, fmt.Errorf("error querying product %s: %w", id, err)
	}

	rows, err := pool.Query(ctx, `
		SELECT price
		FROM product_variants
		WHERE product_id = $1
		ORDER BY combination
	`, id)
	if err != nil {
		return nil, fmt.Errorf("error querying variant prices for %s: %w", id, err)
	}
	defer rows.Close()

	pricing.VariantPrices = make([]int64, 0)
	for rows.Next() {
		var price int64
		if err := rows.Scan(&price); err != nil {
			return nil, fmt.Errorf("error scanning variant price: %w", err)
		}
		pricing.VariantPrices = append(pricing.VariantPrices, price)
	}
	return &pricing, rows.Err()
}

// UpsertProduct inserts or updates a product row
func UpsertProduct(ctx context.Context, p *Product) error {
	pool := Pool()

	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, description, image_url, list_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			list_price = EXCLUDED.list_price,
			updated_at = NOW()
	`, p.ID, p.Name, p.Description, p.ImageURL, p.ListPrice)

	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// UpsertProductVariant inserts or updates one variant combination price
func UpsertProductVariant(ctx context.Context, v *ProductVariant) error {
	pool := Pool()

	_, err := pool.Exec(ctx, `
		INSERT INTO product_variants (id, product_id, combination, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (product_id, combination) DO UPDATE SET
			price = EXCLUDED.price,
			updated_at = NOW()
	`, v.ID, v.ProductID, v.Combination, v.Price)

	if err != nil {
		return fmt.Errorf("failed to upsert product variant: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a no-rows lookup miss
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
