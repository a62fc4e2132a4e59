package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/service/anonymous"
	customersvc "storefront/internal/service/customer"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type errorResponse struct {
	Message   string            `json:"message"`
	Code      string            `json:"code"`
	Field     string            `json:"field,omitempty"`
	ProductID int64             `json:"productId,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

func init() {
	// Report request fields by their json names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			}
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	}
}

// writeError maps an error kind to a status code and a stable error code.
func writeError(c *gin.Context, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context(), nil).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func classify(err error) (int, errorResponse) {
	var (
		stockErr *domain.InsufficientStockError
		inputErr *domain.InvalidInputError
	)
	switch {
	case errors.As(err, &stockErr):
		return http.StatusConflict, errorResponse{Message: stockErr.Error(), Code: "insufficient_stock", ProductID: stockErr.ProductID}
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, errorResponse{Message: inputErr.Error(), Code: "invalid_input", Field: inputErr.Field}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, errorResponse{Message: err.Error(), Code: "invalid_input"}
	case errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, errorResponse{Message: "customer not found", Code: "customer_not_found"}
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, errorResponse{Message: "product not found", Code: "product_not_found"}
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, errorResponse{Message: "item not found", Code: "item_not_found"}
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, errorResponse{Message: "order not found", Code: "order_not_found"}
	case errors.Is(err, domain.ErrAddressNotFound):
		return http.StatusBadRequest, errorResponse{Message: "address not found", Code: "address_not_found"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Message: "not found", Code: "not_found"}
	case errors.Is(err, domain.ErrDuplicateWishlistItem):
		return http.StatusBadRequest, errorResponse{Message: "product is already in the wishlist", Code: "duplicate_wishlist_item"}
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, errorResponse{Message: "cart is empty", Code: "empty_cart"}
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, errorResponse{Message: "already exists", Code: "conflict"}
	case errors.Is(err, customersvc.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Message: "invalid email or password", Code: "invalid_credentials"}
	case errors.Is(err, customersvc.ErrInactive):
		return http.StatusForbidden, errorResponse{Message: "customer is not active", Code: "inactive"}
	case errors.Is(err, customersvc.ErrInvalidToken), errors.Is(err, anonymous.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Message: "invalid token", Code: "invalid_token"}
	}
	return http.StatusInternalServerError, errorResponse{Message: "internal error", Code: "internal"}
}

// bindJSON decodes and validates a request record, answering 400 itself on
// failure.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindQuery(dest); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) errorResponse {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		field := ""
		for _, fe := range verrs {
			details[fe.Field()] = validationMessage(fe)
			if field == "" {
				field = fe.Field()
			}
		}
		return errorResponse{Message: "validation failed", Code: "invalid_input", Field: field, Details: details}
	}
	return errorResponse{Message: "invalid request body", Code: "invalid_input"}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "ne":
		return fmt.Sprintf("must not be %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return "is invalid"
}

// idParam parses a positive int64 path parameter, answering 400 itself.
func idParam(c *gin.Context, name string) (int64, bool) {
	return parseID(c, name, c.Param(name))
}

func idQuery(c *gin.Context, name string) (int64, bool) {
	return parseID(c, name, c.Query(name))
}

func parseID(c *gin.Context, name, raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{
			Message: name + " must be a positive integer",
			Code:    "invalid_input",
			Field:   name,
		})
		return 0, false
	}
	return id, true
}
