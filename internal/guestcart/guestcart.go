// Package guestcart keeps the lines of shoppers who have not signed in.
// Entries are keyed by product id only; there is one collection per guest.
package guestcart

import (
	"context"
	"sync"
)

// Entry is one guest line.
type Entry struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Consolidate sums quantities of duplicate product ids, keeps first-seen
// order and drops entries whose total is not positive.
func Consolidate(entries []Entry) []Entry {
	totals := make(map[int64]int, len(entries))
	order := make([]int64, 0, len(entries))
	for _, e := range entries {
		if e.ProductID <= 0 {
			continue
		}
		if _, seen := totals[e.ProductID]; !seen {
			order = append(order, e.ProductID)
		}
		totals[e.ProductID] += e.Quantity
	}
	out := make([]Entry, 0, len(order))
	for _, id := range order {
		if q := totals[id]; q > 0 {
			out = append(out, Entry{ProductID: id, Quantity: q})
		}
	}
	return out
}

// Store persists guest entries.
type Store interface {
	// Add applies a signed delta and returns the resulting quantity.
	// A result <= 0 removes the entry and returns 0.
	Add(ctx context.Context, guestID string, productID int64, delta int) (int, error)
	Entries(ctx context.Context, guestID string) ([]Entry, error)
	Remove(ctx context.Context, guestID string, productID int64) error
	Clear(ctx context.Context, guestID string) error
}

// Source adapts one guest's stored entries for a merge: each entry is
// removed from the store as soon as it has been migrated.
type Source struct {
	store   Store
	guestID string
}

func NewSource(store Store, guestID string) *Source {
	return &Source{store: store, guestID: guestID}
}

func (s *Source) Entries(ctx context.Context) ([]Entry, error) {
	return s.store.Entries(ctx, s.guestID)
}

func (s *Source) Remove(ctx context.Context, productID int64) error {
	return s.store.Remove(ctx, s.guestID, productID)
}

// Snapshot is a merge source for entries the client sent in the request
// body. Remaining reports what the client must keep.
type Snapshot struct {
	mu      sync.Mutex
	entries []Entry
	removed map[int64]bool
}

func NewSnapshot(entries []Entry) *Snapshot {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &Snapshot{entries: cp, removed: make(map[int64]bool)}
}

func (s *Snapshot) Entries(context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !s.removed[e.ProductID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Snapshot) Remove(_ context.Context, productID int64) error {
	s.mu.Lock()
	s.removed[productID] = true
	s.mu.Unlock()
	return nil
}

// Remaining returns the consolidated entries that were not removed.
func (s *Snapshot) Remaining() []Entry {
	entries, _ := s.Entries(context.Background())
	return Consolidate(entries)
}
