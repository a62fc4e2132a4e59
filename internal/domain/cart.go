package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind separates the two collections a customer keeps.
type Kind string

const (
	KindCart     Kind = "cart"
	KindWishlist Kind = "wishlist"
)

// MaxQuantity bounds a single add or delta. Accumulated line quantities are
// bounded by the INT column.
const MaxQuantity = 10000

// ParseKind accepts the lower-case names and the legacy numeric codes (1 cart, 2 wishlist).
func ParseKind(v string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "cart", "shoppingcart", "1":
		return KindCart, nil
	case "wishlist", "2":
		return KindWishlist, nil
	}
	return "", InvalidInput("kind", fmt.Sprintf("unknown kind %q", v))
}

func (k Kind) Valid() bool {
	return k == KindCart || k == KindWishlist
}

// CartLine is one row of a customer's cart or wishlist.
// At most one line exists per (CustomerID, ProductID, Kind).
type CartLine struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	Kind       Kind
	Quantity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem is a line joined with the product it currently resolves to.
type CartItem struct {
	Line    CartLine
	Product Product
}

// LineTotalCents is the current price times quantity.
func (i CartItem) LineTotalCents() int64 {
	return i.Product.PriceCents * int64(i.Line.Quantity)
}
