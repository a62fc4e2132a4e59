package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusComplete   OrderStatus = "complete"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID                int64
	GUID              string
	CustomerID        int64
	BillingAddressID  int64
	ShippingAddressID int64
	Status            OrderStatus
	TotalCents        int64
	Currency          string
	CreatedAt         time.Time
	Lines             []OrderLine
}

// OrderLine keeps the unit price the product had when the order was placed.
type OrderLine struct {
	ID             int64
	OrderID        int64
	GUID           string
	ProductID      int64
	Quantity       int
	UnitPriceCents int64
	TotalCents     int64
}
