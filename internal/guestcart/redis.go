package guestcart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyNamespace = "sf:guestcart"

type cmdable interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	ZAddNX(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps quantities in a hash and first-add order in a sorted
// set, both expiring ttl after the last write.
type RedisStore struct {
	client cmdable
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (s *RedisStore) qtyKey(guestID string) string {
	return fmt.Sprintf("%s:%s:qty", keyNamespace, guestID)
}

func (s *RedisStore) orderKey(guestID string) string {
	return fmt.Sprintf("%s:%s:order", keyNamespace, guestID)
}

func (s *RedisStore) Add(ctx context.Context, guestID string, productID int64, delta int) (int, error) {
	field := strconv.FormatInt(productID, 10)
	next, err := s.client.HIncrBy(ctx, s.qtyKey(guestID), field, int64(delta)).Result()
	if err != nil {
		return 0, fmt.Errorf("guest cart incr: %w", err)
	}
	if next <= 0 {
		return 0, s.Remove(ctx, guestID, productID)
	}
	member := redis.Z{Score: float64(s.now().UnixNano()), Member: field}
	if err := s.client.ZAddNX(ctx, s.orderKey(guestID), member).Err(); err != nil {
		return 0, fmt.Errorf("guest cart order: %w", err)
	}
	if s.ttl > 0 {
		for _, key := range []string{s.qtyKey(guestID), s.orderKey(guestID)} {
			if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
				return 0, fmt.Errorf("guest cart expire: %w", err)
			}
		}
	}
	return int(next), nil
}

func (s *RedisStore) Entries(ctx context.Context, guestID string) ([]Entry, error) {
	qty, err := s.client.HGetAll(ctx, s.qtyKey(guestID)).Result()
	if err != nil {
		return nil, fmt.Errorf("guest cart read: %w", err)
	}
	if len(qty) == 0 {
		return nil, nil
	}
	order, err := s.client.ZRange(ctx, s.orderKey(guestID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("guest cart order: %w", err)
	}

	out := make([]Entry, 0, len(qty))
	seen := make(map[string]bool, len(qty))
	appendField := func(field string) {
		if seen[field] {
			return
		}
		raw, ok := qty[field]
		if !ok {
			return
		}
		seen[field] = true
		id, err1 := strconv.ParseInt(field, 10, 64)
		q, err2 := strconv.Atoi(raw)
		if err1 != nil || err2 != nil || q <= 0 {
			return
		}
		out = append(out, Entry{ProductID: id, Quantity: q})
	}
	for _, field := range order {
		appendField(field)
	}
	// Fields missing from the order set (partial write) go last.
	for field := range qty {
		appendField(field)
	}
	return out, nil
}

func (s *RedisStore) Remove(ctx context.Context, guestID string, productID int64) error {
	field := strconv.FormatInt(productID, 10)
	if err := s.client.HDel(ctx, s.qtyKey(guestID), field).Err(); err != nil {
		return fmt.Errorf("guest cart remove: %w", err)
	}
	if err := s.client.ZRem(ctx, s.orderKey(guestID), field).Err(); err != nil {
		return fmt.Errorf("guest cart remove order: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, guestID string) error {
	return s.client.Del(ctx, s.qtyKey(guestID), s.orderKey(guestID)).Err()
}
