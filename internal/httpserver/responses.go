package httpserver

import (
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// money renders cents as a decimal JSON number with two fraction digits.
type money int64

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.New(int64(m), -2).StringFixed(2)), nil
}

// Decimal exposes the amount for callers that keep computing with it.
func (m money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

type messageResponse struct {
	Message string `json:"message"`
}

type productResponse struct {
	ID               int64                  `json:"id"`
	Key              string                 `json:"key,omitempty"`
	SKU              string                 `json:"sku,omitempty"`
	Name             string                 `json:"name"`
	ShortDescription string                 `json:"shortDescription"`
	FullDescription  string                 `json:"fullDescription,omitempty"`
	Price            money                  `json:"price"`
	Currency         string                 `json:"currency"`
	Stock            int                    `json:"stock"`
	Published        bool                   `json:"published"`
	PictureURL       string                 `json:"pictureUrl,omitempty"`
	CategoryIDs      []int64                `json:"categoryIds"`
	Attributes       map[string]interface{} `json:"attributes,omitempty"`
}

func toProductResponse(p domain.Product) productResponse {
	categories := p.CategoryIDs
	if categories == nil {
		categories = []int64{}
	}
	return productResponse{
		ID:               p.ID,
		Key:              p.Key,
		SKU:              p.SKU,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		FullDescription:  p.FullDescription,
		Price:            money(p.PriceCents),
		Currency:         p.Currency,
		Stock:            p.Stock,
		Published:        p.Published,
		PictureURL:       p.PictureURL,
		CategoryIDs:      categories,
		Attributes:       p.Attributes,
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

type cartItemResponse struct {
	ItemID     int64     `json:"itemId"`
	ProductID  int64     `json:"productId"`
	Name       string    `json:"name"`
	Price      money     `json:"price"`
	Quantity   int       `json:"quantity"`
	LineTotal  money     `json:"lineTotal"`
	PictureURL string    `json:"pictureUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toCartItemResponses(items []domain.CartItem) []cartItemResponse {
	out := make([]cartItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, cartItemResponse{
			ItemID:     it.Line.ID,
			ProductID:  it.Line.ProductID,
			Name:       it.Product.Name,
			Price:      money(it.Product.PriceCents),
			Quantity:   it.Line.Quantity,
			LineTotal:  money(it.LineTotalCents()),
			PictureURL: it.Product.PictureURL,
			CreatedAt:  it.Line.CreatedAt,
		})
	}
	return out
}

type wishlistItemResponse struct {
	ID               int64     `json:"id"`
	ProductID        int64     `json:"productId"`
	Name             string    `json:"name"`
	ShortDescription string    `json:"shortDescription"`
	Price            money     `json:"price"`
	Quantity         int       `json:"quantity"`
	Published        bool      `json:"published"`
	CreatedAt        time.Time `json:"createdAt"`
	ImageURL         string    `json:"imageUrl,omitempty"`
}

func toWishlistResponse(items []domain.CartItem) []wishlistItemResponse {
	out := make([]wishlistItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, wishlistItemResponse{
			ID:               it.Line.ID,
			ProductID:        it.Line.ProductID,
			Name:             it.Product.Name,
			ShortDescription: it.Product.ShortDescription,
			Price:            money(it.Product.PriceCents),
			Quantity:         it.Line.Quantity,
			Published:        it.Product.Published,
			CreatedAt:        it.Line.CreatedAt,
			ImageURL:         it.Product.PictureURL,
		})
	}
	return out
}

type orderLineResponse struct {
	ID        int64  `json:"id"`
	GUID      string `json:"guid"`
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice money  `json:"unitPrice"`
	Total     money  `json:"total"`
}

type orderResponse struct {
	OrderID           int64               `json:"orderId"`
	OrderGUID         string              `json:"orderGuid"`
	CustomerID        int64               `json:"customerId"`
	BillingAddressID  int64               `json:"billingAddressId"`
	ShippingAddressID int64               `json:"shippingAddressId"`
	Status            domain.OrderStatus  `json:"status"`
	TotalAmount       money               `json:"totalAmount"`
	Currency          string              `json:"currency"`
	CreatedAt         time.Time           `json:"createdAt"`
	Lines             []orderLineResponse `json:"lines"`
}

func toOrderResponse(o domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineResponse{
			ID:        l.ID,
			GUID:      l.GUID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: money(l.UnitPriceCents),
			Total:     money(l.TotalCents),
		})
	}
	return orderResponse{
		OrderID:           o.ID,
		OrderGUID:         o.GUID,
		CustomerID:        o.CustomerID,
		BillingAddressID:  o.BillingAddressID,
		ShippingAddressID: o.ShippingAddressID,
		Status:            o.Status,
		TotalAmount:       money(o.TotalCents),
		Currency:          o.Currency,
		CreatedAt:         o.CreatedAt,
		Lines:             lines,
	}
}

type addressResponse struct {
	ID            int64  `json:"id"`
	CustomerID    *int64 `json:"customerId,omitempty"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Country       string `json:"country"`
	City          string `json:"city"`
	Address1      string `json:"address1"`
	Address2      string `json:"address2,omitempty"`
	ZipPostalCode string `json:"zipPostalCode,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
}

func toAddressResponse(a domain.Address) addressResponse {
	return addressResponse{
		ID:            a.ID,
		CustomerID:    a.CustomerID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Email:         a.Email,
		Country:       a.Country,
		City:          a.City,
		Address1:      a.Address1,
		Address2:      a.Address2,
		ZipPostalCode: a.ZipPostalCode,
		PhoneNumber:   a.PhoneNumber,
	}
}

type customerResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCustomerResponse(c domain.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Email:     c.Email,
		Username:  c.Username,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
	}
}

type categoryResponse struct {
	ID           int64              `json:"id"`
	ParentID     *int64             `json:"parentId,omitempty"`
	Name         string             `json:"name"`
	Description  string             `json:"description,omitempty"`
	PictureURL   string             `json:"pictureUrl,omitempty"`
	DisplayOrder int                `json:"displayOrder"`
	Children     []categoryResponse `json:"children,omitempty"`
}

func toCategoryResponses(categories []domain.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		var children []categoryResponse
		if len(c.Children) > 0 {
			children = toCategoryResponses(c.Children)
		}
		out = append(out, categoryResponse{
			ID:           c.ID,
			ParentID:     c.ParentID,
			Name:         c.Name,
			Description:  c.Description,
			PictureURL:   c.PictureURL,
			DisplayOrder: c.DisplayOrder,
			Children:     children,
		})
	}
	return out
}

type reviewResponse struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"productId"`
	CustomerID int64     `json:"customerId"`
	Title      string    `json:"title,omitempty"`
	ReviewText string    `json:"reviewText"`
	Rating     int       `json:"rating"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toReviewResponses(reviews []domain.ProductReview) []reviewResponse {
	out := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toReviewResponse(r))
	}
	return out
}

func toReviewResponse(r domain.ProductReview) reviewResponse {
	return reviewResponse{
		ID:         r.ID,
		ProductID:  r.ProductID,
		CustomerID: r.CustomerID,
		Title:      r.Title,
		ReviewText: r.ReviewText,
		Rating:     r.Rating,
		Approved:   r.Approved,
		CreatedAt:  r.CreatedAt,
	}
}

type ratingResponse struct {
	ProductID     int64   `json:"productId"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}
