package review

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, r domain.ProductReview) (*domain.ProductReview, error)
	List(ctx context.Context) ([]domain.ProductReview, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.ProductReview, error)
	Rating(ctx context.Context, productID int64) (domain.ProductRating, error)
}
