package queries

import (
	"context"
	"math"
	"time"

	"storefront-api/internal/infra"
	"storefront-api/internal/pkg/errs"

	"github.com/google/uuid"
)

// CollectionMeta is the cheap fingerprint clients use to decide whether a
// full refetch is warranted: record count plus the latest modification
// timestamp. Equality is field-wise; it is a necessary but not sufficient
// condition for payload equality (same-second edits with an unchanged count
// are invisible — an accepted limitation of the protocol, not a bug).
type CollectionMeta struct {
	Count           int64      `json:"count"`
	LatestUpdatedAt *time.Time `json:"latestUpdatedAt"`
}

func (m CollectionMeta) Equal(other CollectionMeta) bool {
	if m.Count != other.Count {
		return false
	}
	if (m.LatestUpdatedAt == nil) != (other.LatestUpdatedAt == nil) {
		return false
	}
	if m.LatestUpdatedAt == nil {
		return true
	}
	return m.LatestUpdatedAt.Equal(*other.LatestUpdatedAt)
}

type ProductView struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Price           float64    `json:"price"`
	Discount        float64    `json:"discount"`
	DiscountedPrice float64    `json:"discountedPrice"`
	HasDiscount     bool       `json:"hasDiscount"`
	Image           []string   `json:"image"`
	Sizes           []string   `json:"sizes"`
	Category        string     `json:"category"`
	SubCategory     string     `json:"subCategory"`
	Bestseller      bool       `json:"bestseller"`
	CreatedAt       time.Time  `json:"date"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

type CategoryView struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Subcategories []string   `json:"subcategories"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// CatalogReadStore is the persistence boundary, implemented by the infra
// repository.
type CatalogReadStore interface {
	FindProducts(ctx context.Context) ([]*ProductView, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
	FindCategories(ctx context.Context) ([]*CategoryView, error)
	ProductsFingerprint(ctx context.Context) (*CollectionMeta, error)
	CategoriesFingerprint(ctx context.Context) (*CollectionMeta, error)
}

type CatalogQueries interface {
	ListProducts(ctx context.Context) ([]*ProductView, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error)
	ListCategories(ctx context.Context) ([]*CategoryView, error)
	ProductMeta(ctx context.Context) (*CollectionMeta, error)
	CategoryMeta(ctx context.Context) (*CollectionMeta, error)
}

type catalogQueriesImpl struct {
	store CatalogReadStore
}

func NewCatalogQueries(store CatalogReadStore) CatalogQueries {
	return &catalogQueriesImpl{store: store}
}

func (q *catalogQueriesImpl) ListProducts(ctx context.Context) ([]*ProductView, error) {
	products, err := q.store.FindProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		applyDiscount(p)
	}
	return products, nil
}

func (q *catalogQueriesImpl) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	p, err := q.store.FindProductByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrProductNotFound)
		}
		return nil, err
	}
	applyDiscount(p)
	return p, nil
}

func (q *catalogQueriesImpl) ListCategories(ctx context.Context) ([]*CategoryView, error) {
	return q.store.FindCategories(ctx)
}

func (q *catalogQueriesImpl) ProductMeta(ctx context.Context) (*CollectionMeta, error) {
	return q.store.ProductsFingerprint(ctx)
}

func (q *catalogQueriesImpl) CategoryMeta(ctx context.Context) (*CollectionMeta, error) {
	return q.store.CategoriesFingerprint(ctx)
}

// applyDiscount derives the display price. Discounts outside (0, 100] are
// ignored rather than rejected; the stored price wins.
func applyDiscount(p *ProductView) {
	p.DiscountedPrice = p.Price
	p.HasDiscount = false
	if p.Discount > 0 && p.Discount <= 100 {
		p.DiscountedPrice = math.Round(p.Price - p.Price*p.Discount/100)
		p.HasDiscount = true
	}
}
