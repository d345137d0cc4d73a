package repository

import (
	"context"

	"storefront-api/internal/domain/cart"
	"storefront-api/internal/infra"

	"github.com/google/uuid"
)

// CartRepository implements commands.CartRepository and queries.CartReadStore
// over Postgres. One cart_items row is one (user, product, variant) leaf of
// the nested cart document, so every mutation is a single atomic statement —
// the read-modify-write variant this replaces is the lost-update bug class.
type CartRepository struct {
	src PoolSource
}

func NewCartRepository(src PoolSource) *CartRepository {
	return &CartRepository{src: src}
}

const addDeltaSQL = `
INSERT INTO cart_items (user_id, product_id, variant, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, product_id, variant)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`

func (r *CartRepository) AddDelta(ctx context.Context, userID uuid.UUID, productID, variant string, delta int) error {
	pool, err := acquire(ctx, r.src)
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, addDeltaSQL, userID, productID, variant, delta); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to apply cart delta", err)
	}
	return nil
}

const setQuantitySQL = `
INSERT INTO cart_items (user_id, product_id, variant, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, product_id, variant)
DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`

const deleteLeafSQL = `
DELETE FROM cart_items
WHERE user_id = $1 AND product_id = $2 AND variant = $3`

func (r *CartRepository) SetQuantity(ctx context.Context, userID uuid.UUID, productID, variant string, quantity int) error {
	pool, err := acquire(ctx, r.src)
	if err != nil {
		return err
	}
	if quantity == 0 {
		// Removing a leaf that never existed is a successful no-op.
		if _, err := pool.Exec(ctx, deleteLeafSQL, userID, productID, variant); err != nil {
			return infra.WrapRepoErr(infra.KindDBFailure, "failed to remove cart item", err)
		}
		return nil
	}
	if _, err := pool.Exec(ctx, setQuantitySQL, userID, productID, variant, quantity); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to set cart quantity", err)
	}
	return nil
}

const findCartSQL = `
SELECT product_id, variant, quantity
FROM cart_items
WHERE user_id = $1`

// FindCart assembles the nested document from rows. Empty product entries
// cannot occur by construction: a product key exists only while at least one
// of its variant rows does.
func (r *CartRepository) FindCart(ctx context.Context, userID uuid.UUID) (cart.Document, error) {
	pool, err := acquire(ctx, r.src)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, findCartSQL, userID)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to query cart", err)
	}
	defer rows.Close()

	doc := cart.New()
	for rows.Next() {
		var productID, variant string
		var quantity int
		if err := rows.Scan(&productID, &variant, &quantity); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan cart row", err)
		}
		doc.Set(productID, variant, quantity)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to read cart rows", err)
	}
	return doc, nil
}
