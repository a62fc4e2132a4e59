package product

import (
	"context"

	"storefront/internal/domain"
)

// SortOrder names the orderings the filter endpoint accepts.
type SortOrder string

const (
	SortNameAsc   SortOrder = "name_asc"
	SortNameDesc  SortOrder = "name_desc"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortNewest    SortOrder = "newest"
)

// Filter narrows the published catalog. Zero values mean "no constraint".
type Filter struct {
	CategoryID    int64
	MinPriceCents int64
	MaxPriceCents int64
	Query         string
	Sort          SortOrder
	Limit         int
	Offset        int
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	ListHomepage(ctx context.Context) ([]domain.Product, error)
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
