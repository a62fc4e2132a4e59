package order

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultCurrency = "USD"

// Service assembles orders from a customer's cart.
type Service struct {
	orders    orderRepo
	addresses addressRepo
	cart      cartReader
	catalog   catalog
	identity  identity
	events    events.Publisher
	metrics   *metrics.StoreMetrics
	logger    *zerolog.Logger
}

type orderRepo interface {
	Place(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
}

type addressRepo interface {
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	GetByID(ctx context.Context, id int64) (*domain.Address, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error)
}

type cartReader interface {
	ListItems(ctx context.Context, customerID int64, kind domain.Kind) ([]domain.CartItem, error)
}

type catalog interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

type identity interface {
	Get(ctx context.Context, id int64) (*domain.Customer, error)
}

// Deps groups the collaborators of a Service.
type Deps struct {
	Orders    orderRepo
	Addresses addressRepo
	Cart      cartReader
	Catalog   catalog
	Identity  identity
	Events    events.Publisher
	Metrics   *metrics.StoreMetrics
	Logger    *zerolog.Logger
}

func New(d Deps) *Service {
	if d.Events == nil {
		d.Events = events.Discard{}
	}
	return &Service{
		orders:    d.Orders,
		addresses: d.Addresses,
		cart:      d.Cart,
		catalog:   d.Catalog,
		identity:  d.Identity,
		events:    d.Events,
		metrics:   d.Metrics,
		logger:    logger.OrNop(d.Logger),
	}
}

// PlaceOrder turns the customer's cart into a pending order. Every line is
// checked against current stock before anything is written; the stock
// decrement, order rows and cart removal then commit together or not at all.
// The wishlist is never touched.
func (s *Service) PlaceOrder(ctx context.Context, customerID, billingAddressID, shippingAddressID int64) (*domain.Order, error) {
	if customerID <= 0 {
		return nil, domain.InvalidInput("customerId", "must be positive")
	}
	if billingAddressID <= 0 {
		return nil, domain.InvalidInput("billingAddressId", "must be positive")
	}
	if shippingAddressID <= 0 {
		return nil, domain.InvalidInput("shippingAddressId", "must be positive")
	}
	if _, err := s.identity.Get(ctx, customerID); err != nil {
		return nil, err
	}
	for _, id := range []int64{billingAddressID, shippingAddressID} {
		if err := s.checkAddress(ctx, customerID, id); err != nil {
			return nil, err
		}
	}

	items, err := s.cart.ListItems(ctx, customerID, domain.KindCart)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		s.metrics.Order("empty_cart")
		return nil, domain.ErrEmptyCart
	}

	draft := domain.Order{
		GUID:              uuid.NewString(),
		CustomerID:        customerID,
		BillingAddressID:  billingAddressID,
		ShippingAddressID: shippingAddressID,
		Status:            domain.OrderStatusPending,
		Lines:             make([]domain.OrderLine, 0, len(items)),
	}
	for _, it := range items {
		p, err := s.catalog.Get(ctx, it.Line.ProductID)
		if err != nil {
			return nil, err
		}
		if p.Stock < it.Line.Quantity {
			s.metrics.Order("insufficient_stock")
			return nil, &domain.InsufficientStockError{
				ProductID: p.ID,
				Requested: it.Line.Quantity,
				Available: p.Stock,
			}
		}
		currency := strings.ToUpper(strings.TrimSpace(p.Currency))
		if currency == "" {
			currency = defaultCurrency
		}
		if draft.Currency == "" {
			draft.Currency = currency
		} else if draft.Currency != currency {
			return nil, domain.InvalidInput("currency", "cart mixes currencies")
		}
		line := domain.OrderLine{
			GUID:           uuid.NewString(),
			ProductID:      p.ID,
			Quantity:       it.Line.Quantity,
			UnitPriceCents: p.PriceCents,
			TotalCents:     p.PriceCents * int64(it.Line.Quantity),
		}
		draft.TotalCents += line.TotalCents
		draft.Lines = append(draft.Lines, line)
	}

	placed, err := s.orders.Place(ctx, draft)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.metrics.Order("insufficient_stock")
		} else {
			s.metrics.Order("error")
		}
		return nil, err
	}
	s.metrics.Order("placed")
	s.events.Publish(events.Event{
		Type:       events.TypeCartChanged,
		Action:     events.ActionCleared,
		CustomerID: customerID,
	})
	s.logger.Info().
		Int64("order_id", placed.ID).
		Str("order_guid", placed.GUID).
		Int64("customer_id", customerID).
		Int("lines", len(placed.Lines)).
		Msg("order service: order placed")
	return placed, nil
}

func (s *Service) checkAddress(ctx context.Context, customerID, id int64) error {
	a, err := s.addresses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAddressNotFound
		}
		return err
	}
	if a.CustomerID != nil && *a.CustomerID != customerID {
		return domain.ErrAddressNotFound
	}
	return nil
}

// AddressInput captures the fields of a new address.
type AddressInput struct {
	CustomerID    int64
	FirstName     string
	LastName      string
	Email         string
	Country       string
	City          string
	Address1      string
	Address2      string
	ZipPostalCode string
	PhoneNumber   string
}

// CreateAddress stores an address. A zero CustomerID creates a detached address.
func (s *Service) CreateAddress(ctx context.Context, in AddressInput) (*domain.Address, error) {
	required := map[string]string{
		"firstName": in.FirstName,
		"lastName":  in.LastName,
		"email":     in.Email,
		"country":   in.Country,
		"city":      in.City,
		"address1":  in.Address1,
	}
	for _, field := range []string{"firstName", "lastName", "email", "country", "city", "address1"} {
		if strings.TrimSpace(required[field]) == "" {
			return nil, domain.InvalidInput(field, "required")
		}
	}
	a := domain.Address{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         strings.TrimSpace(in.Email),
		Country:       strings.TrimSpace(in.Country),
		City:          strings.TrimSpace(in.City),
		Address1:      strings.TrimSpace(in.Address1),
		Address2:      strings.TrimSpace(in.Address2),
		ZipPostalCode: strings.TrimSpace(in.ZipPostalCode),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
	}
	if in.CustomerID != 0 {
		if _, err := s.identity.Get(ctx, in.CustomerID); err != nil {
			return nil, err
		}
		id := in.CustomerID
		a.CustomerID = &id
	}
	return s.addresses.Create(ctx, a)
}

func (s *Service) ListAddresses(ctx context.Context, customerID int64) ([]domain.Address, error) {
	if _, err := s.identity.Get(ctx, customerID); err != nil {
		return nil, err
	}
	return s.addresses.ListByCustomer(ctx, customerID)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, domain.InvalidInput("orderId", "must be positive")
	}
	o, err := s.orders.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	return o, err
}

func (s *Service) ListOrders(ctx context.Context, customerID int64) ([]domain.Order, error) {
	if _, err := s.identity.Get(ctx, customerID); err != nil {
		return nil, err
	}
	return s.orders.ListByCustomer(ctx, customerID)
}
