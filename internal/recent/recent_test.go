package recent

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, id := range []int64{1, 2, 3, 2, 4} {
		require.NoError(t, s.Record(ctx, "c:1", id))
	}

	ids, err := s.List(ctx, "c:1", 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2, 3}, ids)

	ids, err = s.List(ctx, "c:1", 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 2}, ids)

	ids, err = s.List(ctx, "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore(3))
}

func TestRedisStore(t *testing.T) {
	exercise(t, NewRedisStore(newMockList(), 3, time.Hour))
}

type mockList struct {
	lists map[string][]string
}

func newMockList() *mockList {
	return &mockList{lists: make(map[string][]string)}
}

func (m *mockList) LRem(_ context.Context, key string, _ int64, value interface{}) *redis.IntCmd {
	var kept []string
	var n int64
	for _, v := range m.lists[key] {
		if v == value.(string) {
			n++
			continue
		}
		kept = append(kept, v)
	}
	m.lists[key] = kept
	return redis.NewIntResult(n, nil)
}

func (m *mockList) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		m.lists[key] = append([]string{v.(string)}, m.lists[key]...)
	}
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}

func (m *mockList) LTrim(_ context.Context, key string, start, stop int64) *redis.StatusCmd {
	l := m.lists[key]
	if int(stop)+1 < len(l) {
		m.lists[key] = l[start : stop+1]
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *mockList) LRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	l := m.lists[key]
	end := int64(len(l))
	if stop >= 0 && stop+1 < end {
		end = stop + 1
	}
	if start >= end {
		return redis.NewStringSliceResult(nil, nil)
	}
	return redis.NewStringSliceResult(append([]string(nil), l[start:end]...), nil)
}

func (m *mockList) Expire(context.Context, string, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}
