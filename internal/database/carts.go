package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/khighway/storefront-service/internal/cart"
)

// GetCart reads the stored cart for an identity. The bool reports whether a
// cart document exists at all; an existing empty cart returns (empty, true).
func GetCart(ctx context.Context, identity string) (cart.Items, bool, error) {
	pool := Pool()

	var raw []byte
	err := pool.QueryRow(ctx, `
		SELECT items
		FROM carts
		WHERE identity = $1
	`, identity).Scan(&raw)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error querying cart for %s: %w", identity, err)
	}

	items := cart.Items{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false, fmt.Errorf("error decoding cart for %s: %w", identity, err)
		}
	}
	return items, true, nil
}

// PutCart overwrites the identity's cart document with the given items.
// Whole-document replace, last writer wins.
func PutCart(ctx context.Context, identity string, items cart.Items) error {
	pool := Pool()

	if items == nil {
		items = cart.Items{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("error encoding cart for %s: %w", identity, err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO carts (identity, items, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (identity) DO UPDATE SET
			items = EXCLUDED.items,
			updated_at = NOW()
	`, identity, raw)

	if err != nil {
		return fmt.Errorf("failed to write cart for %s: %w", identity, err)
	}
	return nil
}

// DeleteCart removes the identity's cart document. Returns whether a
// document existed.
func DeleteCart(ctx context.Context, identity string) (bool, error) {
	pool := Pool()

	result, err := pool.Exec(ctx, `DELETE FROM carts WHERE identity = $1`, identity)
	if err != nil {
		return false, fmt.Errorf("failed to delete cart for %s: %w", identity, err)
	}
	return result.RowsAffected() > 0, nil
}

// DeleteCartsStaleBefore removes cart documents untouched since the cutoff.
// Returns the number of carts deleted.
func DeleteCartsStaleBefore(ctx context.Context, cutoff time.Time) (int, error) {
	pool := Pool()

	result, err := pool.Exec(ctx, `
		DELETE FROM carts
		WHERE updated_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale carts: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// CartDocs adapts the carts table to the cart session's remote store
// interface, backed by the shared pool.
type CartDocs struct{}

func (CartDocs) ReadCart(ctx context.Context, identity string) (cart.Items, bool, error) {
	return GetCart(ctx, identity)
}

func (CartDocs) WriteCart(ctx context.Context, identity string, items cart.Items) error {
	return PutCart(ctx, identity, items)
}
