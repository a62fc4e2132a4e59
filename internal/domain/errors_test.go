package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestInsufficientStockErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("place order: %w", &InsufficientStockError{ProductID: 7, Requested: 3, Available: 1})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected errors.Is to match ErrInsufficientStock, got %v", err)
	}
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.ProductID != 7 {
		t.Fatalf("expected product 7, got %+v", stockErr)
	}
}

func TestInvalidInputMatchesSentinel(t *testing.T) {
	err := InvalidInput("quantity", "must be positive")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err.Error() != "quantity: must be positive" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{"cart": KindCart, "1": KindCart, "Wishlist": KindWishlist, "2": KindWishlist}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseKind("basket"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
