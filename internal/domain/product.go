package domain

import "time"

type Product struct {
	ID               int64
	Key              string
	SKU              string
	Name             string
	ShortDescription string
	FullDescription  string
	PriceCents       int64
	Currency         string
	Stock            int
	Published        bool
	ShowOnHomepage   bool
	PictureURL       string
	CategoryIDs      []int64
	Attributes       map[string]interface{}
	CreatedAt        time.Time
}

// ProductReview is a rating left by a customer.
type ProductReview struct {
	ID         int64
	ProductID  int64
	CustomerID int64
	Title      string
	ReviewText string
	Rating     int
	Approved   bool
	CreatedAt  time.Time
}

// ProductRating summarizes the approved reviews of a product.
type ProductRating struct {
	ProductID     int64
	AverageRating float64
	TotalReviews  int
}
