package httpserver

import (
	"context"
	"io"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/guestcart"
	"storefront/internal/service/anonymous"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/catalog"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func logDiscard() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type stubCartStore struct {
	line     *domain.CartLine
	items    []domain.CartItem
	err      error
	merge    cartsvc.MergeResult
	mergeErr error
	cleared  int64

	lastKind     domain.Kind
	lastQuantity int
	lastDelta    int
}

func (s *stubCartStore) AddItem(_ context.Context, customerID, productID int64, quantity int, kind domain.Kind) (*domain.CartLine, error) {
	s.lastKind, s.lastQuantity = kind, quantity
	if s.err != nil {
		return nil, s.err
	}
	if s.line != nil {
		return s.line, nil
	}
	return &domain.CartLine{CustomerID: customerID, ProductID: productID, Kind: kind, Quantity: quantity}, nil
}

func (s *stubCartStore) SetQuantity(_ context.Context, customerID, productID int64, kind domain.Kind, delta int) (*domain.CartLine, error) {
	s.lastKind, s.lastDelta = kind, delta
	if s.err != nil {
		return nil, s.err
	}
	return s.line, nil
}

func (s *stubCartStore) RemoveItem(_ context.Context, _, _ int64, kind domain.Kind) error {
	s.lastKind = kind
	return s.err
}

func (s *stubCartStore) RemoveItemByID(_ context.Context, _, _ int64, kind domain.Kind) error {
	s.lastKind = kind
	return s.err
}

func (s *stubCartStore) ListItems(_ context.Context, _ int64, kind domain.Kind) ([]domain.CartItem, error) {
	s.lastKind = kind
	return s.items, s.err
}

func (s *stubCartStore) Clear(_ context.Context, _ int64, kind domain.Kind) (int64, error) {
	s.lastKind = kind
	return s.cleared, s.err
}

// MergeGuestCart drops every entry listed as migrated or skipped from the
// source, like the real store does.
func (s *stubCartStore) MergeGuestCart(ctx context.Context, _ int64, source cartsvc.GuestSource, kind domain.Kind) (cartsvc.MergeResult, error) {
	s.lastKind = kind
	for _, id := range append(append([]int64{}, s.merge.Migrated...), s.merge.Skipped...) {
		_ = source.Remove(ctx, id)
	}
	return s.merge, s.mergeErr
}

type stubGuestCart struct {
	store *guestcart.MemoryStore
}

func newStubGuestCart() *stubGuestCart {
	return &stubGuestCart{store: guestcart.NewMemoryStore()}
}

func (g *stubGuestCart) Add(ctx context.Context, guestID string, productID int64, quantity int) (int, error) {
	return g.store.Add(ctx, guestID, productID, quantity)
}

func (g *stubGuestCart) ApplyDelta(ctx context.Context, guestID string, productID int64, delta int) (int, error) {
	return g.store.Add(ctx, guestID, productID, delta)
}

func (g *stubGuestCart) Remove(ctx context.Context, guestID string, productID int64) error {
	return g.store.Remove(ctx, guestID, productID)
}

func (g *stubGuestCart) Items(ctx context.Context, guestID string) ([]cartsvc.GuestItem, error) {
	entries, err := g.store.Entries(ctx, guestID)
	if err != nil {
		return nil, err
	}
	out := make([]cartsvc.GuestItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, cartsvc.GuestItem{Entry: e, Product: domain.Product{ID: e.ProductID, Name: "Product", PriceCents: 100}})
	}
	return out, nil
}

func (g *stubGuestCart) Source(guestID string, kind domain.Kind) (cartsvc.GuestSource, error) {
	if kind != domain.KindCart {
		return nil, domain.InvalidInput("kind", "guests only keep a stored cart")
	}
	return guestcart.NewSource(g.store, guestID), nil
}

type stubGuestSessions struct {
	guestID string
	err     error
}

func (s *stubGuestSessions) Issue(context.Context) (anonymous.Session, error) {
	return anonymous.Session{GuestID: s.guestID, AccessToken: "guest-access", RefreshToken: "guest-refresh"}, s.err
}

func (s *stubGuestSessions) Refresh(_ context.Context, token string) (anonymous.Session, error) {
	if token != "guest-refresh" {
		return anonymous.Session{}, anonymous.ErrInvalidToken
	}
	return s.Issue(context.Background())
}

func (s *stubGuestSessions) LookupByToken(_ context.Context, token string) (string, error) {
	if token != "guest-access" {
		return "", anonymous.ErrInvalidToken
	}
	return s.guestID, nil
}

func (s *stubGuestSessions) AccessTTLSeconds() int { return 3600 }

type stubOrderService struct {
	order *domain.Order
	err   error
}

func (s *stubOrderService) PlaceOrder(context.Context, int64, int64, int64) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) CreateAddress(_ context.Context, in ordersvc.AddressInput) (*domain.Address, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Address{ID: 11, FirstName: in.FirstName}, nil
}

func (s *stubOrderService) ListAddresses(context.Context, int64) ([]domain.Address, error) {
	return nil, s.err
}

func (s *stubOrderService) GetOrder(context.Context, int64) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) ListOrders(context.Context, int64) ([]domain.Order, error) {
	if s.order == nil {
		return nil, s.err
	}
	return []domain.Order{*s.order}, s.err
}

type stubCustomerService struct {
	customer *domain.Customer
	loginErr error
	signErr  error
	meErr    error
}

func (s *stubCustomerService) Signup(context.Context, customersvc.SignupInput) (*domain.Customer, error) {
	return s.customer, s.signErr
}

func (s *stubCustomerService) Login(context.Context, string, string) (*domain.Customer, string, error) {
	return s.customer, "access", s.loginErr
}

func (s *stubCustomerService) Logout(context.Context, string) error { return nil }

func (s *stubCustomerService) Resolve(context.Context, string) (*domain.Customer, error) {
	return s.customer, s.meErr
}

func (s *stubCustomerService) Get(context.Context, int64) (*domain.Customer, error) {
	if s.customer == nil {
		return nil, domain.ErrCustomerNotFound
	}
	return s.customer, nil
}

func (s *stubCustomerService) GetByEmail(ctx context.Context, _ string) (*domain.Customer, error) {
	return s.Get(ctx, 0)
}

func (s *stubCustomerService) List(context.Context) ([]domain.Customer, error) {
	if s.customer == nil {
		return nil, nil
	}
	return []domain.Customer{*s.customer}, nil
}

func (s *stubCustomerService) AccessTTLSeconds() int { return 3600 }

// stubCatalog serves a fixed product list; only Get and Homepage look at it.
type stubCatalog struct {
	products  []domain.Product
	lastQuery catalog.FilterInput
}

func (s *stubCatalog) Get(_ context.Context, id int64) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (s *stubCatalog) View(ctx context.Context, id int64, _ string) (*domain.Product, error) {
	return s.Get(ctx, id)
}

func (s *stubCatalog) Homepage(context.Context) ([]domain.Product, error) { return s.products, nil }

func (s *stubCatalog) Search(context.Context, string) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) ByCategory(context.Context, int64) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) Filter(_ context.Context, in catalog.FilterInput) ([]domain.Product, error) {
	s.lastQuery = in
	return s.products, nil
}

func (s *stubCatalog) Attributes(ctx context.Context, id int64) (map[string]interface{}, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Attributes, nil
}

func (s *stubCatalog) Tree(context.Context) ([]domain.Category, error)       { return nil, nil }
func (s *stubCatalog) WithImages(context.Context) ([]domain.Category, error) { return nil, nil }

func (s *stubCatalog) SubmitReview(_ context.Context, in catalog.ReviewInput) (*domain.ProductReview, error) {
	return &domain.ProductReview{ID: 1, ProductID: in.ProductID, CustomerID: in.CustomerID, Rating: in.Rating, Approved: true}, nil
}

func (s *stubCatalog) ListReviews(context.Context) ([]domain.ProductReview, error) { return nil, nil }

func (s *stubCatalog) ReviewsByProduct(context.Context, int64) ([]domain.ProductReview, error) {
	return nil, nil
}

func (s *stubCatalog) Rating(_ context.Context, productID int64) (domain.ProductRating, error) {
	return domain.ProductRating{ProductID: productID}, nil
}

func (s *stubCatalog) RecentlyViewed(context.Context, string, int) ([]domain.Product, error) {
	return s.products, nil
}

func testDeps() Deps {
	return Deps{
		CartSvc:     &stubCartStore{},
		GuestCart:   newStubGuestCart(),
		GuestSvc:    &stubGuestSessions{guestID: "guest-1"},
		OrderSvc:    &stubOrderService{},
		CustomerSvc: &stubCustomerService{},
		CatalogSvc:  &stubCatalog{},
		Events:      events.NewBus(),
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps, Options{})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}
