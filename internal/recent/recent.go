// Package recent remembers which products a viewer looked at last.
package recent

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store records product views per viewer, newest first, without duplicates.
type Store interface {
	Record(ctx context.Context, viewer string, productID int64) error
	List(ctx context.Context, viewer string, count int) ([]int64, error)
}

type MemoryStore struct {
	mu    sync.Mutex
	limit int
	views map[string][]int64
}

func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{limit: limit, views: make(map[string][]int64)}
}

func (m *MemoryStore) Record(_ context.Context, viewer string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []int64{productID}
	for _, id := range m.views[viewer] {
		if id != productID && len(ids) < m.limit {
			ids = append(ids, id)
		}
	}
	m.views[viewer] = ids
	return nil
}

func (m *MemoryStore) List(_ context.Context, viewer string, count int) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.views[viewer]
	if count > 0 && count < len(ids) {
		ids = ids[:count]
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return out, nil
}

type cmdable interface {
	LRem(ctx context.Context, key string, count int64, value interface{}) *redis.IntCmd
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisStore keeps one capped list per viewer.
type RedisStore struct {
	client cmdable
	limit  int
	ttl    time.Duration
}

func NewRedisStore(client cmdable, limit int, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, limit: limit, ttl: ttl}
}

func key(viewer string) string {
	return "sf:recent:" + viewer
}

func (s *RedisStore) Record(ctx context.Context, viewer string, productID int64) error {
	k := key(viewer)
	member := strconv.FormatInt(productID, 10)
	if err := s.client.LRem(ctx, k, 0, member).Err(); err != nil {
		return fmt.Errorf("recent lrem: %w", err)
	}
	if err := s.client.LPush(ctx, k, member).Err(); err != nil {
		return fmt.Errorf("recent lpush: %w", err)
	}
	if err := s.client.LTrim(ctx, k, 0, int64(s.limit-1)).Err(); err != nil {
		return fmt.Errorf("recent ltrim: %w", err)
	}
	if s.ttl > 0 {
		return s.client.Expire(ctx, k, s.ttl).Err()
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, viewer string, count int) ([]int64, error) {
	stop := int64(-1)
	if count > 0 {
		stop = int64(count - 1)
	}
	raw, err := s.client.LRange(ctx, key(viewer), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("recent lrange: %w", err)
	}
	out := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
