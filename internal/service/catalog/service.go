// Package catalog is the read side of the shop: products, categories,
// reviews and recently viewed products. Only published products are sellable.
package catalog

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logger"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/recent"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	ListHomepage(ctx context.Context) ([]domain.Product, error)
	List(ctx context.Context, f productrepo.Filter) ([]domain.Product, error)
}

type categoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type reviewRepo interface {
	Create(ctx context.Context, r domain.ProductReview) (*domain.ProductReview, error)
	List(ctx context.Context) ([]domain.ProductReview, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.ProductReview, error)
	Rating(ctx context.Context, productID int64) (domain.ProductRating, error)
}

type identity interface {
	Get(ctx context.Context, id int64) (*domain.Customer, error)
}

type Service struct {
	products   productRepo
	categories categoryRepo
	reviews    reviewRepo
	identity   identity
	recent     recent.Store
	imageHost  string
	logger     *zerolog.Logger
}

// Deps groups the collaborators of a Service. Recent defaults to an
// in-memory store keeping ten products per viewer.
type Deps struct {
	Products   productRepo
	Categories categoryRepo
	Reviews    reviewRepo
	Identity   identity
	Recent     recent.Store
	ImageHost  string
	Logger     *zerolog.Logger
}

func New(d Deps) *Service {
	if d.Recent == nil {
		d.Recent = recent.NewMemoryStore(10)
	}
	return &Service{
		products:   d.Products,
		categories: d.Categories,
		reviews:    d.Reviews,
		identity:   d.Identity,
		recent:     d.Recent,
		imageHost:  strings.TrimRight(d.ImageHost, "/"),
		logger:     logger.OrNop(d.Logger),
	}
}

// Get returns a published product. Unknown and unpublished ids both yield
// domain.ErrProductNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.ErrProductNotFound
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	if !p.Published {
		return nil, domain.ErrProductNotFound
	}
	s.resolveImage(p)
	return p, nil
}

// View is Get plus recording the view for viewer when one is given.
func (s *Service) View(ctx context.Context, id int64, viewer string) (*domain.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer = strings.TrimSpace(viewer); viewer != "" {
		if err := s.recent.Record(ctx, viewer, p.ID); err != nil {
			s.logger.Warn().Err(err).Str("viewer", viewer).Int64("product_id", p.ID).Msg("catalog: record view failed")
		}
	}
	return p, nil
}

func (s *Service) Homepage(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.ListHomepage(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveImages(products), nil
}

// Search matches product names case-insensitively.
func (s *Service) Search(ctx context.Context, name string) ([]domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.InvalidInput("name", "required")
	}
	return s.list(ctx, productrepo.Filter{Query: name, Sort: productrepo.SortNameAsc})
}

func (s *Service) ByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	if categoryID <= 0 {
		return nil, domain.InvalidInput("categoryId", "must be positive")
	}
	return s.list(ctx, productrepo.Filter{CategoryID: categoryID, Sort: productrepo.SortNameAsc})
}

// FilterInput is the query of the filter endpoint. Page is 1-based.
type FilterInput struct {
	CategoryID    int64
	MinPriceCents int64
	MaxPriceCents int64
	Sort          string
	Page          int
	PageSize      int
}

func (s *Service) Filter(ctx context.Context, in FilterInput) ([]domain.Product, error) {
	if in.MinPriceCents < 0 || in.MaxPriceCents < 0 {
		return nil, domain.InvalidInput("price", "must not be negative")
	}
	if in.MaxPriceCents > 0 && in.MinPriceCents > in.MaxPriceCents {
		return nil, domain.InvalidInput("price", "minPrice exceeds maxPrice")
	}
	sort, err := parseSort(in.Sort)
	if err != nil {
		return nil, err
	}
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return s.list(ctx, productrepo.Filter{
		CategoryID:    in.CategoryID,
		MinPriceCents: in.MinPriceCents,
		MaxPriceCents: in.MaxPriceCents,
		Sort:          sort,
		Limit:         size,
		Offset:        (page - 1) * size,
	})
}

// Attributes returns the free-form attributes of a published product.
func (s *Service) Attributes(ctx context.Context, id int64) (map[string]interface{}, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Attributes == nil {
		return map[string]interface{}{}, nil
	}
	return p.Attributes, nil
}

func (s *Service) list(ctx context.Context, f productrepo.Filter) ([]domain.Product, error) {
	products, err := s.products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.resolveImages(products), nil
}

func parseSort(v string) (productrepo.SortOrder, error) {
	switch productrepo.SortOrder(strings.ToLower(strings.TrimSpace(v))) {
	case "", productrepo.SortNameAsc:
		return productrepo.SortNameAsc, nil
	case productrepo.SortNameDesc:
		return productrepo.SortNameDesc, nil
	case productrepo.SortPriceAsc:
		return productrepo.SortPriceAsc, nil
	case productrepo.SortPriceDesc:
		return productrepo.SortPriceDesc, nil
	case productrepo.SortNewest:
		return productrepo.SortNewest, nil
	}
	return "", domain.InvalidInput("sort", "unknown sort order")
}

func (s *Service) resolveImages(products []domain.Product) []domain.Product {
	for i := range products {
		s.resolveImage(&products[i])
	}
	return products
}

// resolveImage turns stored relative picture paths into absolute URLs.
func (s *Service) resolveImage(p *domain.Product) {
	p.PictureURL = s.imageURL(p.PictureURL)
}

func (s *Service) imageURL(path string) string {
	if path == "" || s.imageHost == "" || strings.Contains(path, "://") {
		return path
	}
	return s.imageHost + "/" + strings.TrimLeft(path, "/")
}
