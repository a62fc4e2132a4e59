package httpserver

import (
	"net/http"

	ordersvc "storefront/internal/service/order"

	"github.com/gin-gonic/gin"
)

type placeOrderRequest struct {
	CustomerID        int64 `json:"customerId" binding:"required,gt=0"`
	BillingAddressID  int64 `json:"billingAddressId" binding:"required,gt=0"`
	ShippingAddressID int64 `json:"shippingAddressId" binding:"required,gt=0"`
}

type createAddressRequest struct {
	CustomerID    int64  `json:"customerId" binding:"gte=0"`
	FirstName     string `json:"firstName" binding:"required"`
	LastName      string `json:"lastName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Country       string `json:"country" binding:"required"`
	City          string `json:"city" binding:"required"`
	Address1      string `json:"address1" binding:"required"`
	Address2      string `json:"address2"`
	ZipPostalCode string `json:"zipPostalCode"`
	PhoneNumber   string `json:"phoneNumber"`
}

func (h *handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.deps.OrderSvc.PlaceOrder(c.Request.Context(), req.CustomerID, req.BillingAddressID, req.ShippingAddressID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *handler) createAddress(c *gin.Context) {
	var req createAddressRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.deps.OrderSvc.CreateAddress(c.Request.Context(), ordersvc.AddressInput{
		CustomerID:    req.CustomerID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Country:       req.Country,
		City:          req.City,
		Address1:      req.Address1,
		Address2:      req.Address2,
		ZipPostalCode: req.ZipPostalCode,
		PhoneNumber:   req.PhoneNumber,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addressId": a.ID, "address": toAddressResponse(*a)})
}

func (h *handler) listAddresses(c *gin.Context) {
	customerID, ok := idParam(c, "customerId")
	if !ok {
		return
	}
	addresses, err := h.deps.OrderSvc.ListAddresses(c.Request.Context(), customerID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]addressResponse, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, toAddressResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) getOrder(c *gin.Context) {
	orderID, ok := idParam(c, "orderId")
	if !ok {
		return
	}
	o, err := h.deps.OrderSvc.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *handler) listOrders(c *gin.Context) {
	customerID, ok := idParam(c, "customerId")
	if !ok {
		return
	}
	orders, err := h.deps.OrderSvc.ListOrders(c.Request.Context(), customerID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, out)
}
