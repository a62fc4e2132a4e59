package order

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Place decrements stock for every line, stores the order with its
	// lines and empties the customer's cart in one transaction. It fails
	// with *domain.InsufficientStockError without changing anything when a
	// line cannot be covered.
	Place(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
}
