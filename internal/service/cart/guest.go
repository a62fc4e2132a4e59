package cart

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/guestcart"
)

// GuestItem is a guest entry joined with its current product.
type GuestItem struct {
	Entry   guestcart.Entry
	Product domain.Product
}

// Guest manages carts of shoppers who have not signed in.
type Guest struct {
	store   guestcart.Store
	catalog catalog
}

func NewGuest(store guestcart.Store, catalog catalog) *Guest {
	return &Guest{store: store, catalog: catalog}
}

// Add increments the guest's entry for productID. The product must resolve.
func (g *Guest) Add(ctx context.Context, guestID string, productID int64, quantity int) (int, error) {
	if err := validateGuest(guestID, productID); err != nil {
		return 0, err
	}
	if err := checkQuantity(quantity); err != nil {
		return 0, err
	}
	if _, err := g.catalog.Get(ctx, productID); err != nil {
		return 0, err
	}
	return g.store.Add(ctx, guestID, productID, quantity)
}

// ApplyDelta changes an existing entry; a result <= 0 removes it.
func (g *Guest) ApplyDelta(ctx context.Context, guestID string, productID int64, delta int) (int, error) {
	if err := validateGuest(guestID, productID); err != nil {
		return 0, err
	}
	if err := checkDelta(delta); err != nil {
		return 0, err
	}
	entries, err := g.store.Entries(ctx, guestID)
	if err != nil {
		return 0, err
	}
	found := false
	for _, e := range entries {
		if e.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return 0, domain.ErrItemNotFound
	}
	return g.store.Add(ctx, guestID, productID, delta)
}

func (g *Guest) Remove(ctx context.Context, guestID string, productID int64) error {
	if err := validateGuest(guestID, productID); err != nil {
		return err
	}
	return g.store.Remove(ctx, guestID, productID)
}

// Items lists the guest's entries with product snapshots, skipping products
// that no longer resolve.
func (g *Guest) Items(ctx context.Context, guestID string) ([]GuestItem, error) {
	if strings.TrimSpace(guestID) == "" {
		return nil, domain.InvalidInput("guestId", "required")
	}
	entries, err := g.store.Entries(ctx, guestID)
	if err != nil {
		return nil, err
	}
	items := make([]GuestItem, 0, len(entries))
	for _, e := range entries {
		p, err := g.catalog.Get(ctx, e.ProductID)
		if errors.Is(err, domain.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, GuestItem{Entry: e, Product: *p})
	}
	return items, nil
}

// Source returns the merge source backed by this guest's stored entries.
// Only carts are stored for guests, so any other kind is rejected; a guest
// wishlist is merged from the entries the client sends.
func (g *Guest) Source(guestID string, kind domain.Kind) (GuestSource, error) {
	if strings.TrimSpace(guestID) == "" {
		return nil, domain.InvalidInput("guestId", "required")
	}
	if kind != domain.KindCart {
		return nil, domain.InvalidInput("kind", "guests only keep a stored cart; send wishlist items in the request body")
	}
	return guestcart.NewSource(g.store, guestID), nil
}

func validateGuest(guestID string, productID int64) error {
	if strings.TrimSpace(guestID) == "" {
		return domain.InvalidInput("guestId", "required")
	}
	if productID <= 0 {
		return domain.InvalidInput("productId", "must be positive")
	}
	return nil
}
