package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStoreMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.Mutation("cart", "added")
	m.Mutation("Cart", " added ")
	m.Order("placed")
	m.EventDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("cart", "added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orders.WithLabelValues("placed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsDropped))
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("GET", "/api/cart/items/:customerId", 200, 5*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/cart/items/:customerId", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var s *StoreMetrics
	s.Mutation("cart", "added")
	s.Order("placed")
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Second)
	NewStoreMetrics(nil).EventDropped()
}
