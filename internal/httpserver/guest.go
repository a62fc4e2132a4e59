package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type guestSessionResponse struct {
	GuestID      string `json:"guestId"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type guestItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0,lte=10000"`
}

type guestDeltaRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Delta     int   `json:"delta" binding:"gte=-10000,lte=10000"`
}

type guestItemResponse struct {
	ProductID  int64  `json:"productId"`
	Name       string `json:"name"`
	Price      money  `json:"price"`
	Quantity   int    `json:"quantity"`
	PictureURL string `json:"pictureUrl,omitempty"`
}

func (h *handler) startGuestSession(c *gin.Context) {
	sess, err := h.deps.GuestSvc.Issue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, guestSessionResponse{
		GuestID:      sess.GuestID,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    h.deps.GuestSvc.AccessTTLSeconds(),
	})
}

func (h *handler) refreshGuestSession(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.deps.GuestSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, guestSessionResponse{
		GuestID:      sess.GuestID,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    h.deps.GuestSvc.AccessTTLSeconds(),
	})
}

func (h *handler) listGuestCart(c *gin.Context) {
	items, err := h.deps.GuestCart.Items(c.Request.Context(), c.GetString(guestCtxKey))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]guestItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, guestItemResponse{
			ProductID:  it.Entry.ProductID,
			Name:       it.Product.Name,
			Price:      money(it.Product.PriceCents),
			Quantity:   it.Entry.Quantity,
			PictureURL: it.Product.PictureURL,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) addGuestItem(c *gin.Context) {
	var req guestItemRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.deps.GuestCart.Add(c.Request.Context(), c.GetString(guestCtxKey), req.ProductID, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, lineResponse{Message: "item added to cart", Quantity: q})
}

func (h *handler) applyGuestDelta(c *gin.Context) {
	var req guestDeltaRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.deps.GuestCart.ApplyDelta(c.Request.Context(), c.GetString(guestCtxKey), req.ProductID, req.Delta)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := lineResponse{Message: "quantity updated", Quantity: q}
	if q == 0 {
		resp.Message = "item removed from cart"
		resp.Removed = true
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) removeGuestItem(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	if err := h.deps.GuestCart.Remove(c.Request.Context(), c.GetString(guestCtxKey), productID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "item removed from cart"})
}
