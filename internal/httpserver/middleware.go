package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/service/anonymous"
	customersvc "storefront/internal/service/customer"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader  = "X-Request-Id"
	guestTokenHeader = "X-Guest-Token"

	customerCtxKey = "customer"
	guestCtxKey    = "guestId"
)

func requestID(base *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), base, id))
		c.Next()
	}
}

func requestLogger(base *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		ev := logger.FromContext(c.Request.Context(), base).Info()
		if status >= http.StatusInternalServerError {
			ev = logger.FromContext(c.Request.Context(), base).Error()
		}
		ev.Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request.complete")
	}
}

func observe(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Observe(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func recovery(base *zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec interface{}) {
		logger.FromContext(c.Request.Context(), base).Error().
			Interface("panic", rec).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Message: "internal error", Code: "internal"})
	})
}

// currentCustomer resolves the caller from "Authorization: Bearer <token>"
// or, for trusted callers, "X-Customer-Id: <id>".
func currentCustomer(svc CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := bearerToken(c.GetHeader("Authorization"))
		if identifier == "" {
			identifier = strings.TrimSpace(c.GetHeader("X-Customer-Id"))
		}
		if identifier == "" {
			abortUnauthorized(c, "missing credentials")
			return
		}
		cust, err := svc.Resolve(c.Request.Context(), identifier)
		if err != nil {
			if errors.Is(err, customersvc.ErrInvalidToken) || errors.Is(err, domain.ErrCustomerNotFound) {
				abortUnauthorized(c, "invalid credentials")
				return
			}
			writeError(c, err)
			c.Abort()
			return
		}
		c.Set(customerCtxKey, cust)
		c.Next()
	}
}

// guestMiddleware requires a valid guest access token in X-Guest-Token.
func guestMiddleware(svc GuestSessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(guestTokenHeader))
		if token == "" {
			abortUnauthorized(c, "missing guest token")
			return
		}
		guestID, err := svc.LookupByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, anonymous.ErrInvalidToken) {
				abortUnauthorized(c, "invalid guest token")
				return
			}
			writeError(c, err)
			c.Abort()
			return
		}
		c.Set(guestCtxKey, guestID)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Message: msg, Code: "unauthorized"})
}

func customerFrom(c *gin.Context) *domain.Customer {
	v, ok := c.Get(customerCtxKey)
	if !ok {
		return nil
	}
	cust, _ := v.(*domain.Customer)
	return cust
}
