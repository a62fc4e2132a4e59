package httpserver

import (
	"net/http"
	"strings"

	customersvc "storefront/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Customer    customerResponse `json:"customer"`
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresIn   int              `json:"expires_in"`
}

func (h *handler) signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}
	cust, err := h.deps.CustomerSvc.Signup(c.Request.Context(), customersvc.SignupInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(*cust))
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	cust, token, err := h.deps.CustomerSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		Customer:    toCustomerResponse(*cust),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   h.deps.CustomerSvc.AccessTTLSeconds(),
	})
}

func (h *handler) listCustomers(c *gin.Context) {
	ctx := c.Request.Context()
	if email := strings.TrimSpace(c.Query("email")); email != "" {
		cust, err := h.deps.CustomerSvc.GetByEmail(ctx, email)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toCustomerResponse(*cust))
		return
	}
	customers, err := h.deps.CustomerSvc.List(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for _, cust := range customers {
		out = append(out, toCustomerResponse(cust))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) getCustomer(c *gin.Context) {
	customerID, ok := idParam(c, "customerId")
	if !ok {
		return
	}
	cust, err := h.deps.CustomerSvc.Get(c.Request.Context(), customerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(*cust))
}

// me returns the customer resolved by currentCustomer.
func (h *handler) me(c *gin.Context) {
	cust := customerFrom(c)
	if cust == nil {
		abortUnauthorized(c, "missing credentials")
		return
	}
	c.JSON(http.StatusOK, toCustomerResponse(*cust))
}

func (h *handler) logout(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "logout needs a bearer token", Code: "invalid_input"})
		return
	}
	if err := h.deps.CustomerSvc.Logout(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}
