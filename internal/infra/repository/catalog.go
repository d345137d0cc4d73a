package repository

import (
	"context"
	"errors"
	"time"

	"storefront-api/internal/infra"
	"storefront-api/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CatalogRepository implements queries.CatalogReadStore over Postgres.
type CatalogRepository struct {
	src PoolSource
}

func NewCatalogRepository(src PoolSource) *CatalogRepository {
	return &CatalogRepository{src: src}
}

const findProductsSQL = `
SELECT id, name, description, price, discount, image, sizes, category, sub_category, bestseller, created_at, updated_at
FROM products
ORDER BY created_at DESC`

func (r *CatalogRepository) FindProducts(ctx context.Context) ([]*queries.ProductView, error) {
	pool, err := acquire(ctx, r.src)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, findProductsSQL)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to query products", err)
	}
	defer rows.Close()

	var products []*queries.ProductView
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan product row", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to read product rows", err)
	}
	return products, nil
}

const findProductByIDSQL = `
SELECT id, name, description, price, discount, image, sizes, category, sub_category, bestseller, created_at, updated_at
FROM products
WHERE id = $1`

func (r *CatalogRepository) FindProductByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	pool, err := acquire(ctx, r.src)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, findProductByIDSQL, id)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to query product", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to read product row", err)
		}
		return nil, infra.WrapRepoErr(infra.KindNotFound, "product not found", pgx.ErrNoRows)
	}
	p, err := scanProduct(rows)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan product row", err)
	}
	return p, nil
}

const findCategoriesSQL = `
SELECT id, name, subcategories, created_at, updated_at
FROM categories
ORDER BY name`

func (r *CatalogRepository) FindCategories(ctx context.Context) ([]*queries.CategoryView, error) {
	pool, err := acquire(ctx, r.src)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, findCategoriesSQL)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to query categories", err)
	}
	defer rows.Close()

	var categories []*queries.CategoryView
	for rows.Next() {
		var c queries.CategoryView
		if err := rows.Scan(&c.ID, &c.Name, &c.Subcategories, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan category row", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to read category rows", err)
	}
	return categories, nil
}

func (r *CatalogRepository) ProductsFingerprint(ctx context.Context) (*queries.CollectionMeta, error) {
	return r.fingerprint(ctx, "products")
}

func (r *CatalogRepository) CategoriesFingerprint(ctx context.Context) (*queries.CollectionMeta, error) {
	return r.fingerprint(ctx, "categories")
}

// fingerprint computes the freshness handshake without materializing the
// collection: a count plus a single-row, projected, sorted-and-limited
// timestamp query. updated_at is preferred; created_at covers rows written
// before updated_at existed.
func (r *CatalogRepository) fingerprint(ctx context.Context, table string) (*queries.CollectionMeta, error) {
	pool, err := acquire(ctx, r.src)
	if err != nil {
		return nil, err
	}

	meta := &queries.CollectionMeta{}
	// table is one of two compile-time constants, never caller input.
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM `+table).Scan(&meta.Count); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to count "+table, err)
	}

	var latest time.Time
	err = pool.QueryRow(ctx,
		`SELECT coalesce(updated_at, created_at) FROM `+table+` ORDER BY coalesce(updated_at, created_at) DESC LIMIT 1`,
	).Scan(&latest)
	switch {
	case err == nil:
		meta.LatestUpdatedAt = &latest
	case errors.Is(err, pgx.ErrNoRows):
		// Empty collection: fingerprint carries a null timestamp.
	default:
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to read latest timestamp for "+table, err)
	}
	return meta, nil
}

func scanProduct(rows pgx.Rows) (*queries.ProductView, error) {
	var p queries.ProductView
	err := rows.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Discount,
		&p.Image, &p.Sizes, &p.Category, &p.SubCategory, &p.Bestseller,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
