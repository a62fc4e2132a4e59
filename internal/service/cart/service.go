package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/guestcart"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	cartrepo "storefront/internal/repository/cart"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// enrichConcurrency bounds the product lookups ListItems runs in parallel.
const enrichConcurrency = 8

// Store owns the cart and wishlist of every signed-in customer.
type Store struct {
	repo     lineRepo
	catalog  catalog
	identity identity
	events   events.Publisher
	metrics  *metrics.StoreMetrics
	logger   *zerolog.Logger
}

type lineRepo interface {
	Increment(ctx context.Context, customerID, productID int64, kind domain.Kind, quantity int) (*domain.CartLine, error)
	InsertIfAbsent(ctx context.Context, customerID, productID int64, kind domain.Kind, quantity int) (*domain.CartLine, bool, error)
	ApplyDelta(ctx context.Context, customerID, productID int64, kind domain.Kind, delta int) (*domain.CartLine, error)
	Delete(ctx context.Context, customerID, productID int64, kind domain.Kind) (bool, error)
	DeleteByID(ctx context.Context, customerID, lineID int64, kind domain.Kind) (*domain.CartLine, error)
	List(ctx context.Context, customerID int64, kind domain.Kind) ([]domain.CartLine, error)
	Clear(ctx context.Context, customerID int64, kind domain.Kind) (int64, error)
}

// catalog resolves sellable products; unknown or unpublished ids yield
// domain.ErrProductNotFound.
type catalog interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

// identity resolves customers; unknown ids yield domain.ErrCustomerNotFound.
type identity interface {
	Get(ctx context.Context, id int64) (*domain.Customer, error)
}

// GuestSource is the guest side of a merge. Remove is called once per
// entry that no longer needs to be kept by the guest.
type GuestSource interface {
	Entries(ctx context.Context) ([]guestcart.Entry, error)
	Remove(ctx context.Context, productID int64) error
}

var _ lineRepo = (cartrepo.Repository)(nil)

// New wires a Store. A nil publisher discards events and a nil logger is silent.
func New(repo lineRepo, catalog catalog, identity identity, publisher events.Publisher, m *metrics.StoreMetrics, log *zerolog.Logger) *Store {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Store{
		repo:     repo,
		catalog:  catalog,
		identity: identity,
		events:   publisher,
		metrics:  m,
		logger:   logger.OrNop(log),
	}
}

// AddItem creates the (customer, product, kind) line or adds quantity to it.
// Wishlist lines are created once; a second add fails with
// domain.ErrDuplicateWishlistItem and leaves the line untouched.
func (s *Store) AddItem(ctx context.Context, customerID, productID int64, quantity int, kind domain.Kind) (*domain.CartLine, error) {
	if err := validateIDs(customerID, productID, kind); err != nil {
		return nil, err
	}
	if kind == domain.KindWishlist && quantity <= 0 {
		quantity = 1
	}
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, customerID, productID); err != nil {
		return nil, err
	}
	return s.add(ctx, customerID, productID, quantity, kind)
}

func (s *Store) add(ctx context.Context, customerID, productID int64, quantity int, kind domain.Kind) (*domain.CartLine, error) {
	if kind == domain.KindWishlist {
		line, created, err := s.repo.InsertIfAbsent(ctx, customerID, productID, kind, quantity)
		if err != nil {
			return nil, err
		}
		if !created {
			return nil, domain.ErrDuplicateWishlistItem
		}
		s.changed(kind, events.ActionAdded, customerID, productID, line.Quantity)
		return line, nil
	}

	line, err := s.repo.Increment(ctx, customerID, productID, kind, quantity)
	if err != nil {
		return nil, err
	}
	s.changed(kind, events.ActionAdded, customerID, productID, line.Quantity)
	return line, nil
}

// SetQuantity applies a signed delta to an existing line. A result <= 0
// deletes the line; the returned line then carries Quantity 0.
func (s *Store) SetQuantity(ctx context.Context, customerID, productID int64, kind domain.Kind, delta int) (*domain.CartLine, error) {
	if err := validateIDs(customerID, productID, kind); err != nil {
		return nil, err
	}
	if kind == domain.KindWishlist {
		return nil, domain.InvalidInput("kind", "wishlist quantities are fixed")
	}
	if err := checkDelta(delta); err != nil {
		return nil, err
	}
	line, err := s.repo.ApplyDelta(ctx, customerID, productID, kind, delta)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	action := events.ActionUpdated
	if line.Quantity == 0 {
		action = events.ActionRemoved
	}
	s.changed(kind, action, customerID, productID, line.Quantity)
	return line, nil
}

// RemoveItem deletes the line if present. Removing an absent line succeeds.
func (s *Store) RemoveItem(ctx context.Context, customerID, productID int64, kind domain.Kind) error {
	if err := validateIDs(customerID, productID, kind); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, customerID, productID, kind)
	if err != nil {
		return err
	}
	if deleted {
		s.changed(kind, events.ActionRemoved, customerID, productID, 0)
	}
	return nil
}

// RemoveItemByID deletes a line by its own id, scoped to the customer and kind.
func (s *Store) RemoveItemByID(ctx context.Context, customerID, lineID int64, kind domain.Kind) error {
	if customerID <= 0 {
		return domain.InvalidInput("customerId", "must be positive")
	}
	if lineID <= 0 {
		return domain.InvalidInput("itemId", "must be positive")
	}
	if !kind.Valid() {
		return domain.InvalidInput("kind", "unknown collection")
	}
	line, err := s.repo.DeleteByID(ctx, customerID, lineID, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrItemNotFound
		}
		return err
	}
	s.changed(kind, events.ActionRemoved, customerID, line.ProductID, 0)
	return nil
}

// ListItems returns the collection oldest first, each line joined with the
// current product. Lines whose product no longer resolves are left out.
func (s *Store) ListItems(ctx context.Context, customerID int64, kind domain.Kind) ([]domain.CartItem, error) {
	if customerID <= 0 {
		return nil, domain.InvalidInput("customerId", "must be positive")
	}
	if !kind.Valid() {
		return nil, domain.InvalidInput("kind", "unknown collection")
	}
	lines, err := s.repo.List(ctx, customerID, kind)
	if err != nil {
		return nil, err
	}

	products := make([]*domain.Product, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i := range lines {
		i := i
		g.Go(func() error {
			p, err := s.catalog.Get(gctx, lines[i].ProductID)
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("resolve product %d: %w", lines[i].ProductID, err)
			}
			products[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]domain.CartItem, 0, len(lines))
	for i, line := range lines {
		if products[i] == nil {
			s.logger.Debug().
				Int64("customer_id", customerID).
				Int64("product_id", line.ProductID).
				Msg("cart store: skip line with unresolved product")
			continue
		}
		items = append(items, domain.CartItem{Line: line, Product: *products[i]})
	}
	return items, nil
}

// Clear removes every line of the kind and reports how many were removed.
func (s *Store) Clear(ctx context.Context, customerID int64, kind domain.Kind) (int64, error) {
	if customerID <= 0 {
		return 0, domain.InvalidInput("customerId", "must be positive")
	}
	if !kind.Valid() {
		return 0, domain.InvalidInput("kind", "unknown collection")
	}
	n, err := s.repo.Clear(ctx, customerID, kind)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.changed(kind, events.ActionCleared, customerID, 0, 0)
	}
	return n, nil
}

// MergeResult lists product ids by outcome. Migrated entries were added,
// Skipped entries were dropped because they can never be added (unknown
// product, wishlist duplicate, quantity out of range) and Failed entries
// stay with the guest.
type MergeResult struct {
	Migrated []int64 `json:"migrated"`
	Skipped  []int64 `json:"skipped"`
	Failed   []int64 `json:"failed"`
}

// MergeGuestCart moves guest entries into the customer's collection. Each
// entry leaves the source as soon as its add is settled, so a retry after a
// partial failure only sees what is still pending.
func (s *Store) MergeGuestCart(ctx context.Context, customerID int64, source GuestSource, kind domain.Kind) (MergeResult, error) {
	res := MergeResult{Migrated: []int64{}, Skipped: []int64{}, Failed: []int64{}}
	if customerID <= 0 {
		return res, domain.InvalidInput("customerId", "must be positive")
	}
	if !kind.Valid() {
		return res, domain.InvalidInput("kind", "unknown collection")
	}
	if source == nil {
		return res, domain.InvalidInput("items", "guest source required")
	}
	if _, err := s.identity.Get(ctx, customerID); err != nil {
		return res, err
	}
	raw, err := source.Entries(ctx)
	if err != nil {
		return res, fmt.Errorf("read guest entries: %w", err)
	}

	var errs error
	for _, e := range Consolidate(raw) {
		_, err := s.addChecked(ctx, customerID, e.ProductID, e.Quantity, kind)
		switch {
		case err == nil:
			res.Migrated = append(res.Migrated, e.ProductID)
		case errors.Is(err, domain.ErrDuplicateWishlistItem), errors.Is(err, domain.ErrProductNotFound),
			errors.Is(err, domain.ErrInvalidInput):
			res.Skipped = append(res.Skipped, e.ProductID)
		default:
			res.Failed = append(res.Failed, e.ProductID)
			errs = multierr.Append(errs, fmt.Errorf("product %d: %w", e.ProductID, err))
			continue
		}
		if err := source.Remove(ctx, e.ProductID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("drop guest entry %d: %w", e.ProductID, err))
		}
	}

	if len(res.Migrated) > 0 {
		s.changed(kind, events.ActionMerged, customerID, 0, 0)
	}
	if errs != nil {
		s.logger.Warn().
			Err(errs).
			Int64("customer_id", customerID).
			Int("failed", len(res.Failed)).
			Msg("cart store: merge incomplete")
	}
	return res, errs
}

// addChecked is AddItem without the customer lookup, which a merge does once.
func (s *Store) addChecked(ctx context.Context, customerID, productID int64, quantity int, kind domain.Kind) (*domain.CartLine, error) {
	if kind == domain.KindWishlist && quantity <= 0 {
		quantity = 1
	}
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		return nil, err
	}
	return s.add(ctx, customerID, productID, quantity, kind)
}

// Consolidate sums duplicate guest entries, keeping first-seen order.
func Consolidate(entries []guestcart.Entry) []guestcart.Entry {
	return guestcart.Consolidate(entries)
}

func (s *Store) resolve(ctx context.Context, customerID, productID int64) error {
	if _, err := s.identity.Get(ctx, customerID); err != nil {
		return err
	}
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		return err
	}
	return nil
}

func (s *Store) changed(kind domain.Kind, action events.Action, customerID, productID int64, quantity int) {
	s.metrics.Mutation(string(kind), string(action))
	s.events.Publish(events.Event{
		Type:       events.TypeFor(kind),
		Action:     action,
		CustomerID: customerID,
		ProductID:  productID,
		Quantity:   quantity,
	})
}

func checkQuantity(quantity int) error {
	if quantity < 1 {
		return domain.InvalidInput("quantity", "must be at least 1")
	}
	if quantity > domain.MaxQuantity {
		return domain.InvalidInput("quantity", fmt.Sprintf("must be at most %d", domain.MaxQuantity))
	}
	return nil
}

func checkDelta(delta int) error {
	if delta > domain.MaxQuantity || delta < -domain.MaxQuantity {
		return domain.InvalidInput("delta", fmt.Sprintf("must be within ±%d", domain.MaxQuantity))
	}
	return nil
}

func validateIDs(customerID, productID int64, kind domain.Kind) error {
	if customerID <= 0 {
		return domain.InvalidInput("customerId", "must be positive")
	}
	if productID <= 0 {
		return domain.InvalidInput("productId", "must be positive")
	}
	if !kind.Valid() {
		return domain.InvalidInput("kind", "unknown collection")
	}
	return nil
}
