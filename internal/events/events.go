// Package events carries cart and wishlist change notifications to every
// surface that shows them (badges, drawers, open tabs).
package events

import (
	"time"

	"storefront/internal/domain"
)

type Type string

const (
	TypeCartChanged     Type = "cart.changed"
	TypeWishlistChanged Type = "wishlist.changed"
)

type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionRemoved Action = "removed"
	ActionCleared Action = "cleared"
	ActionMerged  Action = "merged"
)

// Event is the wire schema for change notifications.
type Event struct {
	Type       Type      `json:"type"`
	Action     Action    `json:"action"`
	CustomerID int64     `json:"customerId"`
	ProductID  int64     `json:"productId,omitempty"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurredAt"`
	// Remote marks events relayed from another instance. They are
	// delivered locally but never forwarded again.
	Remote bool `json:"-"`
}

// TypeFor maps a collection kind to its event type.
func TypeFor(kind domain.Kind) Type {
	if kind == domain.KindWishlist {
		return TypeWishlistChanged
	}
	return TypeCartChanged
}

// Publisher is what mutating services depend on.
type Publisher interface {
	Publish(e Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
