package catalog

import (
	"context"
	"strings"

	"storefront/internal/domain"
)

type ReviewInput struct {
	ProductID  int64
	CustomerID int64
	Title      string
	ReviewText string
	Rating     int
}

// SubmitReview stores an approved review after checking the customer and
// the product.
func (s *Service) SubmitReview(ctx context.Context, in ReviewInput) (*domain.ProductReview, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, domain.InvalidInput("rating", "must be between 1 and 5")
	}
	if strings.TrimSpace(in.ReviewText) == "" {
		return nil, domain.InvalidInput("reviewText", "required")
	}
	if in.CustomerID <= 0 {
		return nil, domain.InvalidInput("customerId", "must be positive")
	}
	if _, err := s.identity.Get(ctx, in.CustomerID); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, in.ProductID); err != nil {
		return nil, err
	}
	return s.reviews.Create(ctx, domain.ProductReview{
		ProductID:  in.ProductID,
		CustomerID: in.CustomerID,
		Title:      strings.TrimSpace(in.Title),
		ReviewText: strings.TrimSpace(in.ReviewText),
		Rating:     in.Rating,
		Approved:   true,
	})
}

func (s *Service) ListReviews(ctx context.Context) ([]domain.ProductReview, error) {
	return s.reviews.List(ctx)
}

func (s *Service) ReviewsByProduct(ctx context.Context, productID int64) ([]domain.ProductReview, error) {
	if _, err := s.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.ListByProduct(ctx, productID)
}

// Rating averages approved reviews; a product without any reports 0/0.
func (s *Service) Rating(ctx context.Context, productID int64) (domain.ProductRating, error) {
	if _, err := s.Get(ctx, productID); err != nil {
		return domain.ProductRating{}, err
	}
	r, err := s.reviews.Rating(ctx, productID)
	if err != nil {
		return domain.ProductRating{}, err
	}
	r.ProductID = productID
	return r, nil
}
