package guestcart

import (
	"context"
	"sync"
)

type memoryCart struct {
	order []int64
	qty   map[int64]int
}

// MemoryStore keeps guest carts in process memory. Used when no Redis is
// configured; contents are lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]*memoryCart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*memoryCart)}
}

func (m *MemoryStore) Add(_ context.Context, guestID string, productID int64, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[guestID]
	if !ok {
		c = &memoryCart{qty: make(map[int64]int)}
		m.carts[guestID] = c
	}
	cur, exists := c.qty[productID]
	next := cur + delta
	if next <= 0 {
		if exists {
			c.remove(productID)
		}
		return 0, nil
	}
	if !exists {
		c.order = append(c.order, productID)
	}
	c.qty[productID] = next
	return next, nil
}

func (m *MemoryStore) Entries(_ context.Context, guestID string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[guestID]
	if !ok {
		return nil, nil
	}
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Entry{ProductID: id, Quantity: c.qty[id]})
	}
	return out, nil
}

func (m *MemoryStore) Remove(_ context.Context, guestID string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[guestID]; ok {
		c.remove(productID)
	}
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, guestID string) error {
	m.mu.Lock()
	delete(m.carts, guestID)
	m.mu.Unlock()
	return nil
}

func (c *memoryCart) remove(productID int64) {
	if _, ok := c.qty[productID]; !ok {
		return
	}
	delete(c.qty, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
