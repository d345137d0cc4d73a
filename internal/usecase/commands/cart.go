package commands

import (
	"context"

	"storefront-api/internal/domain/cart"
	"storefront-api/internal/pkg/errs"

	"github.com/google/uuid"
)

// CartRepository is the write-side persistence boundary. Both mutations are
// single atomic statements addressed by the (user, product, variant) path —
// never a fetch/modify/write-back sequence, which is exactly the lost-update
// bug this layer exists to prevent.
type CartRepository interface {
	// AddDelta atomically increments the leaf quantity, treating absent as 0.
	AddDelta(ctx context.Context, userID uuid.UUID, productID, variant string, delta int) error
	// SetQuantity atomically sets the leaf quantity; 0 removes the leaf.
	SetQuantity(ctx context.Context, userID uuid.UUID, productID, variant string, quantity int) error
	// FindCart assembles the authoritative document.
	FindCart(ctx context.Context, userID uuid.UUID) (cart.Document, error)
}

type CartCommands interface {
	// AddItem applies a +1 delta and returns the post-mutation document.
	AddItem(ctx context.Context, userID uuid.UUID, productID, variant string) (cart.Document, error)
	// SetItemQuantity sets an absolute quantity (0 removes) and returns the
	// post-mutation document.
	SetItemQuantity(ctx context.Context, userID uuid.UUID, productID, variant string, quantity int) (cart.Document, error)
}

type cartCommandsImpl struct {
	repo CartRepository
}

func NewCartCommands(repo CartRepository) CartCommands {
	return &cartCommandsImpl{repo: repo}
}

func (c *cartCommandsImpl) AddItem(ctx context.Context, userID uuid.UUID, productID, variant string) (cart.Document, error) {
	if productID == "" || variant == "" {
		return nil, errs.Mark(errs.New("itemId and size are required"), errs.ErrDomainValidation)
	}
	if err := c.repo.AddDelta(ctx, userID, productID, variant, 1); err != nil {
		return nil, err
	}
	return c.authoritative(ctx, userID)
}

func (c *cartCommandsImpl) SetItemQuantity(ctx context.Context, userID uuid.UUID, productID, variant string, quantity int) (cart.Document, error) {
	if productID == "" || variant == "" {
		return nil, errs.Mark(errs.New("itemId and size are required"), errs.ErrDomainValidation)
	}
	if quantity < 0 {
		return nil, errs.Mark(errs.New("quantity must not be negative"), errs.ErrInvalidQuantity)
	}
	if err := c.repo.SetQuantity(ctx, userID, productID, variant, quantity); err != nil {
		return nil, err
	}
	return c.authoritative(ctx, userID)
}

// authoritative re-reads the document after a mutation so the client can
// reconcile an optimistic update that diverged (e.g. a concurrent session
// mutating the same cart).
func (c *cartCommandsImpl) authoritative(ctx context.Context, userID uuid.UUID) (cart.Document, error) {
	doc, err := c.repo.FindCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = cart.New()
	}
	return doc, nil
}
