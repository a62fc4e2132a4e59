package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/logger"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type redisSubscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// wireEvent is the Redis payload: the event plus the instance that sent it.
type wireEvent struct {
	Event
	Origin string `json:"origin"`
}

// RedisForwarder republishes local bus events as JSON on a Redis channel,
// where the RedisRelay of every other instance picks them up.
type RedisForwarder struct {
	client  publisher
	channel string
	origin  string
	logger  *zerolog.Logger
	timeout time.Duration
}

func NewRedisForwarder(client publisher, channel, origin string, log *zerolog.Logger) *RedisForwarder {
	return &RedisForwarder{client: client, channel: channel, origin: origin, logger: logger.OrNop(log), timeout: 2 * time.Second}
}

// Run forwards events until the channel closes or ctx is done.
func (f *RedisForwarder) Run(ctx context.Context, in <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-in:
			if !ok {
				return
			}
			if err := f.Forward(ctx, e); err != nil {
				f.logger.Warn().Err(err).Str("type", string(e.Type)).Int64("customer_id", e.CustomerID).Msg("events: forward failed")
			}
		}
	}
}

// Forward publishes e. Relayed events are skipped.
func (f *RedisForwarder) Forward(ctx context.Context, e Event) error {
	if e.Remote {
		return nil
	}
	payload, err := json.Marshal(wireEvent{Event: e, Origin: f.origin})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.client.Publish(ctx, f.channel, payload).Err()
}

// RedisRelay subscribes to the forwarders' channel and publishes events sent
// by other instances into the local bus, so their SSE streams see them.
type RedisRelay struct {
	client  redisSubscriber
	channel string
	origin  string
	bus     Publisher
	logger  *zerolog.Logger
}

func NewRedisRelay(client redisSubscriber, channel, origin string, bus Publisher, log *zerolog.Logger) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, origin: origin, bus: bus, logger: logger.OrNop(log)}
}

// Run relays messages until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	ps := r.client.Subscribe(ctx, r.channel)
	defer ps.Close()
	if _, err := ps.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	msgs := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			r.Handle(msg.Payload)
		}
	}
}

// Handle decodes one payload and publishes it locally unless this instance
// sent it.
func (r *RedisRelay) Handle(payload string) {
	var w wireEvent
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		r.logger.Warn().Err(err).Msg("events: undecodable relay message")
		return
	}
	if w.Origin == r.origin {
		return
	}
	e := w.Event
	e.Remote = true
	r.bus.Publish(e)
}
