package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func TestBusDeliversToCustomerSubscribers(t *testing.T) {
	bus := NewBus()
	mine, cancelMine := bus.Subscribe(1)
	defer cancelMine()
	all, cancelAll := bus.SubscribeAll()
	defer cancelAll()

	bus.Publish(Event{Type: TypeCartChanged, Action: ActionAdded, CustomerID: 2, ProductID: 5})
	bus.Publish(Event{Type: TypeWishlistChanged, Action: ActionAdded, CustomerID: 1, ProductID: 6})

	got := receive(t, mine)
	assert.Equal(t, int64(6), got.ProductID)
	assert.False(t, got.OccurredAt.IsZero())

	assert.Equal(t, int64(5), receive(t, all).ProductID)
	assert.Equal(t, int64(6), receive(t, all).ProductID)
}

func TestBusDropsForSlowSubscriber(t *testing.T) {
	var dropped int
	bus := NewBus(WithBuffer(1), WithDropHook(func(Event) { dropped++ }))
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish(Event{CustomerID: 1, Quantity: 1})
	bus.Publish(Event{CustomerID: 1, Quantity: 2})

	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, receive(t, ch).Quantity)
}

func TestBusCancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(3)
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.Subscribers())
	bus.Publish(Event{CustomerID: 3})
}

func TestTypeFor(t *testing.T) {
	assert.Equal(t, TypeWishlistChanged, TypeFor(domain.KindWishlist))
	assert.Equal(t, TypeCartChanged, TypeFor(domain.KindCart))
}

type fakePublisher struct {
	channel string
	payload []byte
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload = message.([]byte)
	return redis.NewIntResult(1, nil)
}

func TestRedisForwarderPublishesJSON(t *testing.T) {
	fake := &fakePublisher{}
	fwd := NewRedisForwarder(fake, "storefront:events", "api-a", nil)

	require.NoError(t, fwd.Forward(context.Background(), Event{Type: TypeCartChanged, Action: ActionCleared, CustomerID: 4}))

	assert.Equal(t, "storefront:events", fake.channel)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(fake.payload, &decoded))
	assert.Equal(t, "cart.changed", decoded["type"])
	assert.Equal(t, "cleared", decoded["action"])
	assert.EqualValues(t, 4, decoded["customerId"])
	assert.Equal(t, "api-a", decoded["origin"])
}

func TestRedisForwarderRunStopsWhenChannelCloses(t *testing.T) {
	fake := &fakePublisher{}
	fwd := NewRedisForwarder(fake, "c", "api-a", nil)
	in := make(chan Event, 1)
	in <- Event{CustomerID: 9}
	close(in)

	done := make(chan struct{})
	go func() {
		fwd.Run(context.Background(), in)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return")
	}
	assert.NotEmpty(t, fake.payload)
}

func TestRedisRelayDeliversOtherInstancesEvents(t *testing.T) {
	fake := &fakePublisher{}
	fwd := NewRedisForwarder(fake, "storefront:events", "api-a", nil)
	require.NoError(t, fwd.Forward(context.Background(), Event{Type: TypeWishlistChanged, Action: ActionAdded, CustomerID: 5, ProductID: 8, Quantity: 1}))

	bus := NewBus()
	ch, cancel := bus.Subscribe(5)
	defer cancel()
	relay := NewRedisRelay(nil, "storefront:events", "api-b", bus, nil)
	relay.Handle(string(fake.payload))

	e := receive(t, ch)
	assert.Equal(t, TypeWishlistChanged, e.Type)
	assert.Equal(t, int64(8), e.ProductID)
	assert.True(t, e.Remote)

	// A relayed event reaching the forwarder is not sent back out.
	fake.payload = nil
	require.NoError(t, fwd.Forward(context.Background(), e))
	assert.Nil(t, fake.payload)
}

func TestRedisRelayIgnoresOwnAndMalformedMessages(t *testing.T) {
	fake := &fakePublisher{}
	fwd := NewRedisForwarder(fake, "c", "api-a", nil)
	require.NoError(t, fwd.Forward(context.Background(), Event{Type: TypeCartChanged, Action: ActionAdded, CustomerID: 5}))

	bus := NewBus()
	ch, cancel := bus.SubscribeAll()
	defer cancel()
	relay := NewRedisRelay(nil, "c", "api-a", bus, nil)
	relay.Handle(string(fake.payload))
	relay.Handle("{not json")

	select {
	case e := <-ch:
		t.Fatalf("unexpected event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}
