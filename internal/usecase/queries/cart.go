package queries

import (
	"context"

	"storefront-api/internal/domain/cart"

	"github.com/google/uuid"
)

type CartReadStore interface {
	FindCart(ctx context.Context, userID uuid.UUID) (cart.Document, error)
}

type CartQueries interface {
	GetCart(ctx context.Context, userID uuid.UUID) (cart.Document, error)
}

type cartQueriesImpl struct {
	store CartReadStore
}

func NewCartQueries(store CartReadStore) CartQueries {
	return &cartQueriesImpl{store: store}
}

func (q *cartQueriesImpl) GetCart(ctx context.Context, userID uuid.UUID) (cart.Document, error) {
	doc, err := q.store.FindCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = cart.New()
	}
	return doc, nil
}
