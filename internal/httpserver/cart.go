package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/guestcart"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	CustomerID int64 `json:"customerId" binding:"required,gt=0"`
	ProductID  int64 `json:"productId" binding:"required,gt=0"`
	Quantity   int   `json:"quantity" binding:"required,gt=0,lte=10000"`
}

type addWishlistRequest struct {
	CustomerID int64 `json:"customerId" binding:"required,gt=0"`
	ProductID  int64 `json:"productId" binding:"required,gt=0"`
	Quantity   int   `json:"quantity" binding:"gte=0,lte=10000"`
}

type applyDeltaRequest struct {
	CustomerID int64 `json:"customerId" binding:"required,gt=0"`
	ProductID  int64 `json:"productId" binding:"required,gt=0"`
	Delta      int   `json:"delta" binding:"gte=-10000,lte=10000"`
}

type lineResponse struct {
	Message  string `json:"message"`
	Quantity int    `json:"quantity"`
	Removed  bool   `json:"removed"`
}

type mergeRequest struct {
	CustomerID int64             `json:"customerId" binding:"required,gt=0"`
	Items      []guestcart.Entry `json:"items"`
}

type mergeResponse struct {
	Migrated  []int64           `json:"migrated"`
	Skipped   []int64           `json:"skipped"`
	Failed    []int64           `json:"failed"`
	Remaining []guestcart.Entry `json:"remaining"`
	Message   string            `json:"message,omitempty"`
}

func (h *handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := h.deps.CartSvc.AddItem(c.Request.Context(), req.CustomerID, req.ProductID, req.Quantity, domain.KindCart)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lineResponse{Message: "item added to cart", Quantity: line.Quantity})
}

func (h *handler) applyCartDelta(c *gin.Context) {
	var req applyDeltaRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := h.deps.CartSvc.SetQuantity(c.Request.Context(), req.CustomerID, req.ProductID, domain.KindCart, req.Delta)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := lineResponse{Message: "quantity updated", Quantity: line.Quantity}
	if line.Quantity == 0 {
		resp.Message = "item removed from cart"
		resp.Removed = true
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) listCart(c *gin.Context) {
	customerID, ok := idParam(c, "customerId")
	if !ok {
		return
	}
	items, err := h.deps.CartSvc.ListItems(c.Request.Context(), customerID, domain.KindCart)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartItemResponses(items))
}

func (h *handler) removeCartItem(c *gin.Context) {
	customerID, ok := idParam(c, "customerId")
	if !ok {
		return
	}
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	if err := h.deps.CartSvc.RemoveItem(c.Request.Context(), customerID, productID, domain.KindCart); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "item removed from cart"})
}

func (h *handler) clearCart(c *gin.Context) {
	customerID, ok := idParam(c, "customerId")
	if !ok {
		return
	}
	n, err := h.deps.CartSvc.Clear(c.Request.Context(), customerID, domain.KindCart)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itemsRemoved": n})
}

func (h *handler) addWishlistItem(c *gin.Context) {
	var req addWishlistRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := h.deps.CartSvc.AddItem(c.Request.Context(), req.CustomerID, req.ProductID, req.Quantity, domain.KindWishlist)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lineResponse{Message: "item added to wishlist", Quantity: line.Quantity})
}

func (h *handler) listWishlist(c *gin.Context) {
	customerID, ok := idParam(c, "customerId")
	if !ok {
		return
	}
	items, err := h.deps.CartSvc.ListItems(c.Request.Context(), customerID, domain.KindWishlist)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWishlistResponse(items))
}

func (h *handler) removeWishlistItem(c *gin.Context) {
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	customerID, ok := idQuery(c, "customerId")
	if !ok {
		return
	}
	if err := h.deps.CartSvc.RemoveItemByID(c.Request.Context(), customerID, itemID, domain.KindWishlist); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "item removed from wishlist"})
}

func (h *handler) clearWishlist(c *gin.Context) {
	customerID, ok := idQuery(c, "customerId")
	if !ok {
		return
	}
	n, err := h.deps.CartSvc.Clear(c.Request.Context(), customerID, domain.KindWishlist)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "wishlist cleared",
		"customerId":   customerID,
		"itemsRemoved": n,
	})
}

// mergeInto moves a guest collection into the customer's one. With an
// X-Guest-Token header the guest's stored cart is the source, which only the
// cart route accepts; otherwise the items in the body are, and the response
// lists what the client must keep.
func (h *handler) mergeInto(kind domain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mergeRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx := c.Request.Context()

		var (
			source   cartsvc.GuestSource
			snapshot *guestcart.Snapshot
		)
		if token := c.GetHeader(guestTokenHeader); token != "" {
			guestID, err := h.deps.GuestSvc.LookupByToken(ctx, token)
			if err != nil {
				writeError(c, err)
				return
			}
			if source, err = h.deps.GuestCart.Source(guestID, kind); err != nil {
				writeError(c, err)
				return
			}
		} else {
			snapshot = guestcart.NewSnapshot(req.Items)
			source = snapshot
		}

		res, err := h.deps.CartSvc.MergeGuestCart(ctx, req.CustomerID, source, kind)
		if err != nil && len(res.Migrated)+len(res.Skipped)+len(res.Failed) == 0 {
			writeError(c, err)
			return
		}
		resp := mergeResponse{
			Migrated:  res.Migrated,
			Skipped:   res.Skipped,
			Failed:    res.Failed,
			Remaining: []guestcart.Entry{},
		}
		if snapshot != nil {
			resp.Remaining = snapshot.Remaining()
		} else if remaining, rerr := source.Entries(ctx); rerr == nil {
			resp.Remaining = guestcart.Consolidate(remaining)
		}
		if err != nil {
			resp.Message = "some items could not be merged; retry to merge the remaining ones"
		}
		c.JSON(http.StatusOK, resp)
	}
}
