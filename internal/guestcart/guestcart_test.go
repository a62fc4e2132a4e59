package guestcart

import (
	"context"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsolidateSumsDuplicates(t *testing.T) {
	got := Consolidate([]Entry{
		{ProductID: 3, Quantity: 1},
		{ProductID: 1, Quantity: 2},
		{ProductID: 3, Quantity: 4},
		{ProductID: 2, Quantity: 1},
		{ProductID: 2, Quantity: -1},
		{ProductID: 0, Quantity: 5},
	})
	assert.Equal(t, []Entry{{ProductID: 3, Quantity: 5}, {ProductID: 1, Quantity: 2}}, got)
}

func TestSnapshotRemaining(t *testing.T) {
	snap := NewSnapshot([]Entry{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 2}, {ProductID: 1, Quantity: 1}})
	require.NoError(t, snap.Remove(context.Background(), 2))

	assert.Equal(t, []Entry{{ProductID: 1, Quantity: 2}}, snap.Remaining())
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	q, err := store.Add(ctx, "g1", 7, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, q)
	_, err = store.Add(ctx, "g1", 3, 1)
	require.NoError(t, err)
	q, err = store.Add(ctx, "g1", 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, q)

	entries, err := store.Entries(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{ProductID: 7, Quantity: 5}, {ProductID: 3, Quantity: 1}}, entries)

	q, err = store.Add(ctx, "g1", 3, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, q)

	require.NoError(t, store.Remove(ctx, "g1", 42))
	entries, err = store.Entries(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{ProductID: 7, Quantity: 5}}, entries)

	other, err := store.Entries(ctx, "g2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, store.Clear(ctx, "g1"))
	entries, err = store.Entries(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mock := newMockCmdable()
	store := NewRedisStore(mock, time.Hour)
	var tick int64
	store.now = func() time.Time {
		tick++
		return time.Unix(0, tick)
	}

	exerciseStore(t, store)
	assert.NotEmpty(t, mock.expireCalls)
	assert.Equal(t, "sf:guestcart:g1:qty", mock.expireCalls[0])
}

func TestSourceRemovesFromStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, _ = store.Add(ctx, "g", 1, 1)
	_, _ = store.Add(ctx, "g", 2, 1)

	src := NewSource(store, "g")
	require.NoError(t, src.Remove(ctx, 1))

	entries, err := src.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{ProductID: 2, Quantity: 1}}, entries)
}

type mockCmdable struct {
	hashes      map[string]map[string]int64
	zsets       map[string]map[string]float64
	expireCalls []string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		hashes: make(map[string]map[string]int64),
		zsets:  make(map[string]map[string]float64),
	}
}

func (m *mockCmdable) HIncrBy(_ context.Context, key, field string, incr int64) *redis.IntCmd {
	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]int64)
		m.hashes[key] = h
	}
	h[field] += incr
	return redis.NewIntResult(h[field], nil)
}

func (m *mockCmdable) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	out := make(map[string]string)
	for f, v := range m.hashes[key] {
		out[f] = strconv.FormatInt(v, 10)
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (m *mockCmdable) HDel(_ context.Context, key string, fields ...string) *redis.IntCmd {
	var n int64
	for _, f := range fields {
		if _, ok := m.hashes[key][f]; ok {
			delete(m.hashes[key], f)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) ZAddNX(_ context.Context, key string, members ...redis.Z) *redis.IntCmd {
	z, ok := m.zsets[key]
	if !ok {
		z = make(map[string]float64)
		m.zsets[key] = z
	}
	var n int64
	for _, mem := range members {
		name := mem.Member.(string)
		if _, exists := z[name]; !exists {
			z[name] = mem.Score
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) ZRange(_ context.Context, key string, _, _ int64) *redis.StringSliceCmd {
	z := m.zsets[key]
	names := make([]string, 0, len(z))
	for name := range z {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return z[names[i]] < z[names[j]] })
	return redis.NewStringSliceResult(names, nil)
}

func (m *mockCmdable) ZRem(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	var n int64
	for _, mem := range members {
		name := mem.(string)
		if _, ok := m.zsets[key][name]; ok {
			delete(m.zsets[key], name)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, _ time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, key)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.hashes, k)
		delete(m.zsets, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
