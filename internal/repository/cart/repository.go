package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores cart and wishlist lines. Every method keeps the
// (customer, product, kind) uniqueness of lines.
type Repository interface {
	// Increment creates the line or adds quantity to it.
	Increment(ctx context.Context, customerID, productID int64, kind domain.Kind, quantity int) (*domain.CartLine, error)
	// InsertIfAbsent creates the line and reports false when it already existed.
	InsertIfAbsent(ctx context.Context, customerID, productID int64, kind domain.Kind, quantity int) (*domain.CartLine, bool, error)
	// ApplyDelta adds a signed delta; a result <= 0 deletes the line and
	// returns it with Quantity 0. domain.ErrNotFound when the line is absent.
	ApplyDelta(ctx context.Context, customerID, productID int64, kind domain.Kind, delta int) (*domain.CartLine, error)
	Delete(ctx context.Context, customerID, productID int64, kind domain.Kind) (bool, error)
	DeleteByID(ctx context.Context, customerID, lineID int64, kind domain.Kind) (*domain.CartLine, error)
	List(ctx context.Context, customerID int64, kind domain.Kind) ([]domain.CartLine, error)
	Clear(ctx context.Context, customerID int64, kind domain.Kind) (int64, error)
}
