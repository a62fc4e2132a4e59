package events

import (
	"sync"
	"time"
)

const defaultBuffer = 16

type subscriber struct {
	customerID int64 // 0 receives everything
	ch         chan Event
}

// Bus is an in-process fan-out. Publish never blocks: a subscriber whose
// buffer is full misses the event and should re-read state.
type Bus struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]*subscriber
	buffer  int
	dropped func(Event)
	now     func() time.Time
}

type BusOption func(*Bus)

// WithBuffer sets the per-subscriber channel size.
func WithBuffer(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithDropHook is called for every event a slow subscriber missed.
func WithDropHook(fn func(Event)) BusOption {
	return func(b *Bus) { b.dropped = fn }
}

func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subs:   make(map[int]*subscriber),
		buffer: defaultBuffer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish stamps OccurredAt when unset and delivers to matching subscribers.
func (b *Bus) Publish(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = b.now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if s.customerID != 0 && s.customerID != e.CustomerID {
			continue
		}
		select {
		case s.ch <- e:
		default:
			if b.dropped != nil {
				b.dropped(e)
			}
		}
	}
}

// Subscribe returns events for one customer. cancel closes the channel.
func (b *Bus) Subscribe(customerID int64) (<-chan Event, func()) {
	return b.add(customerID)
}

// SubscribeAll returns every published event.
func (b *Bus) SubscribeAll() (<-chan Event, func()) {
	return b.add(0)
}

func (b *Bus) add(customerID int64) (<-chan Event, func()) {
	s := &subscriber{customerID: customerID, ch: make(chan Event, b.buffer)}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = s
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, cancel
}

// Subscribers reports the number of open subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
