package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	customersvc "storefront/internal/service/customer"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRouterRequiresDeps(t *testing.T) {
	deps := testDeps()
	deps.CartSvc = nil
	_, err := buildRouter(logDiscard(), nil, deps, Options{})
	assert.Error(t, err)
}

func TestHealthAndReady(t *testing.T) {
	router := newTestRouter(t, testDeps())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t, testDeps())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t, testDeps())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope/nope/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"route not found","code":"not_found"}`, rec.Body.String())
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	router, err := buildRouter(logDiscard(), nil, testDeps(), Options{
		Metrics:  metrics.NewHTTPMetrics(reg),
		Gatherer: reg,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/healthz"`)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrCustomerNotFound, http.StatusNotFound, "customer_not_found"},
		{domain.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
		{domain.ErrItemNotFound, http.StatusNotFound, "item_not_found"},
		{domain.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
		{domain.ErrAddressNotFound, http.StatusBadRequest, "address_not_found"},
		{domain.ErrDuplicateWishlistItem, http.StatusBadRequest, "duplicate_wishlist_item"},
		{domain.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
		{domain.InvalidInput("quantity", "must be at least 1"), http.StatusBadRequest, "invalid_input"},
		{&domain.InsufficientStockError{ProductID: 5, Requested: 3, Available: 1}, http.StatusConflict, "insufficient_stock"},
		{fmt.Errorf("wrapped: %w", domain.ErrAlreadyExists), http.StatusConflict, "conflict"},
		{customersvc.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
		{customersvc.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, body := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, body.Code, tc.err.Error())
	}

	_, body := classify(&domain.InsufficientStockError{ProductID: 5})
	assert.Equal(t, int64(5), body.ProductID)
	_, body = classify(domain.InvalidInput("quantity", "bad"))
	assert.Equal(t, "quantity", body.Field)
}

func TestMoneyMarshalsWithTwoDecimals(t *testing.T) {
	b, err := money(450).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "4.50", string(b))

	b, err = money(-5).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "-0.05", string(b))
}
