package httpserver

import (
	"net/http"
	"strings"

	"storefront/internal/service/catalog"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type filterQuery struct {
	CategoryID int64  `form:"categoryId" binding:"gte=0"`
	MinPrice   string `form:"minPrice"`
	MaxPrice   string `form:"maxPrice"`
	Sort       string `form:"sort" binding:"omitempty,oneof=name_asc name_desc price_asc price_desc newest"`
	Page       int    `form:"page" binding:"gte=0"`
	PageSize   int    `form:"pageSize" binding:"gte=0,lte=100"`
}

type recentQuery struct {
	CustomerID string `form:"customerId" binding:"required"`
	Count      int    `form:"count" binding:"gte=0,lte=50"`
}

type reviewRequest struct {
	ProductID  int64  `json:"productId" binding:"required,gt=0"`
	CustomerID int64  `json:"customerId" binding:"required,gt=0"`
	Title      string `json:"title"`
	ReviewText string `json:"reviewText" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
}

func (h *handler) homepage(c *gin.Context) {
	products, err := h.deps.CatalogSvc.Homepage(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

func (h *handler) getProduct(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	p, err := h.deps.CatalogSvc.View(c.Request.Context(), productID, c.Query("customerId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

func (h *handler) productAttributes(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	attrs, err := h.deps.CatalogSvc.Attributes(c.Request.Context(), productID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": productID, "attributes": attrs})
}

func (h *handler) searchProducts(c *gin.Context) {
	products, err := h.deps.CatalogSvc.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

func (h *handler) productsByCategory(c *gin.Context) {
	categoryID, ok := idParam(c, "categoryId")
	if !ok {
		return
	}
	products, err := h.deps.CatalogSvc.ByCategory(c.Request.Context(), categoryID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

func (h *handler) filterProducts(c *gin.Context) {
	var q filterQuery
	if !bindQuery(c, &q) {
		return
	}
	minCents, ok := priceParam(c, "minPrice", q.MinPrice)
	if !ok {
		return
	}
	maxCents, ok := priceParam(c, "maxPrice", q.MaxPrice)
	if !ok {
		return
	}
	products, err := h.deps.CatalogSvc.Filter(c.Request.Context(), catalog.FilterInput{
		CategoryID:    q.CategoryID,
		MinPriceCents: minCents,
		MaxPriceCents: maxCents,
		Sort:          q.Sort,
		Page:          q.Page,
		PageSize:      q.PageSize,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

// priceParam converts a decimal amount such as "12.5" to cents.
func priceParam(c *gin.Context, name, raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		c.JSON(http.StatusBadRequest, errorResponse{Message: name + " must be a non-negative amount", Code: "invalid_input", Field: name})
		return 0, false
	}
	return d.Shift(2).Round(0).IntPart(), true
}

func (h *handler) categoryTree(c *gin.Context) {
	tree, err := h.deps.CatalogSvc.Tree(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponses(tree))
}

func (h *handler) categoriesWithImages(c *gin.Context) {
	categories, err := h.deps.CatalogSvc.WithImages(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponses(categories))
}

func (h *handler) submitReview(c *gin.Context) {
	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.deps.CatalogSvc.SubmitReview(c.Request.Context(), catalog.ReviewInput{
		ProductID:  req.ProductID,
		CustomerID: req.CustomerID,
		Title:      req.Title,
		ReviewText: req.ReviewText,
		Rating:     req.Rating,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(*r))
}

func (h *handler) listReviews(c *gin.Context) {
	reviews, err := h.deps.CatalogSvc.ListReviews(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponses(reviews))
}

func (h *handler) reviewsByProduct(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	reviews, err := h.deps.CatalogSvc.ReviewsByProduct(c.Request.Context(), productID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponses(reviews))
}

func (h *handler) productRating(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}
	r, err := h.deps.CatalogSvc.Rating(c.Request.Context(), productID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratingResponse{
		ProductID:     r.ProductID,
		AverageRating: r.AverageRating,
		TotalReviews:  r.TotalReviews,
	})
}

func (h *handler) recentlyViewed(c *gin.Context) {
	var q recentQuery
	if !bindQuery(c, &q) {
		return
	}
	products, err := h.deps.CatalogSvc.RecentlyViewed(c.Request.Context(), q.CustomerID, q.Count)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}
