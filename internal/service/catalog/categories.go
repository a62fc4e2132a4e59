package catalog

import (
	"context"

	"storefront/internal/domain"
)

// Tree returns root categories with their children nested, keeping the
// repository's display order at every level. Categories whose parent is not
// published are dropped with it.
func (s *Service) Tree(ctx context.Context) ([]domain.Category, error) {
	flat, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	children := make(map[int64][]domain.Category)
	var roots []domain.Category
	for _, c := range flat {
		c.PictureURL = s.imageURL(c.PictureURL)
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	var attach func(cs []domain.Category, depth int) []domain.Category
	attach = func(cs []domain.Category, depth int) []domain.Category {
		for i := range cs {
			// guards against parent cycles in hand-edited data
			if depth < 16 {
				cs[i].Children = attach(children[cs[i].ID], depth+1)
			}
		}
		return cs
	}
	return attach(roots, 0), nil
}

// WithImages lists categories that have a picture, flat.
func (s *Service) WithImages(ctx context.Context) ([]domain.Category, error) {
	flat, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(flat))
	for _, c := range flat {
		if c.PictureURL == "" {
			continue
		}
		c.PictureURL = s.imageURL(c.PictureURL)
		out = append(out, c)
	}
	return out, nil
}
