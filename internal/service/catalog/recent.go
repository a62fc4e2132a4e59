package catalog

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
)

func (s *Service) RecordView(ctx context.Context, viewer string, productID int64) error {
	viewer = strings.TrimSpace(viewer)
	if viewer == "" {
		return domain.InvalidInput("customerId", "required")
	}
	if _, err := s.Get(ctx, productID); err != nil {
		return err
	}
	return s.recent.Record(ctx, viewer, productID)
}

// RecentlyViewed returns the viewer's latest distinct products, newest
// first. Products that stopped resolving are skipped.
func (s *Service) RecentlyViewed(ctx context.Context, viewer string, count int) ([]domain.Product, error) {
	viewer = strings.TrimSpace(viewer)
	if viewer == "" {
		return nil, domain.InvalidInput("customerId", "required")
	}
	if count <= 0 {
		count = 10
	}
	ids, err := s.recent.List(ctx, viewer, count)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}
