package domain

import "time"

// Customer is a registered shopper. Guests never get a row.
type Customer struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

// Address is used as billing or shipping address on orders.
type Address struct {
	ID            int64
	CustomerID    *int64
	FirstName     string
	LastName      string
	Email         string
	Country       string
	City          string
	Address1      string
	Address2      string
	ZipPostalCode string
	PhoneNumber   string
	CreatedAt     time.Time
}
