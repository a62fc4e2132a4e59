package order

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testdb"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func draft(customerID, addressID int64, lines ...domain.OrderLine) domain.Order {
	o := domain.Order{
		GUID:              uuid.NewString(),
		CustomerID:        customerID,
		BillingAddressID:  addressID,
		ShippingAddressID: addressID,
		Status:            domain.OrderStatusPending,
		Currency:          "USD",
	}
	for _, l := range lines {
		l.GUID = uuid.NewString()
		l.TotalCents = l.UnitPriceCents * int64(l.Quantity)
		o.TotalCents += l.TotalCents
		o.Lines = append(o.Lines, l)
	}
	return o
}

func stockOf(ctx context.Context, t *testing.T, pool *pgxpool.Pool, productID int64) int {
	t.Helper()
	var stock int
	if err := pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return stock
}

func TestPostgres_PlaceDecrementsAndClearsCart(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	customerID := testdb.InsertCustomer(ctx, t, pool, "order@example.com")
	addressID := testdb.InsertAddress(ctx, t, pool, customerID)
	productID := testdb.InsertProduct(ctx, t, pool, "cactus", 700, 10)

	if _, err := pool.Exec(ctx, `
INSERT INTO cart_lines (customer_id, product_id, kind, quantity)
VALUES ($1, $2, 'cart', 3), ($1, $2, 'wishlist', 1)`, customerID, productID); err != nil {
		t.Fatalf("seed lines: %v", err)
	}

	repo := NewPostgres(pool, nil)
	placed, err := repo.Place(ctx, draft(customerID, addressID, domain.OrderLine{ProductID: productID, Quantity: 3, UnitPriceCents: 700}))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if placed.ID == 0 || placed.TotalCents != 2100 || len(placed.Lines) != 1 {
		t.Fatalf("unexpected order %+v", placed)
	}
	if got := stockOf(ctx, t, pool, productID); got != 7 {
		t.Fatalf("expected stock 7, got %d", got)
	}

	var cartLines, wishLines int
	_ = pool.QueryRow(ctx, `SELECT count(*) FILTER (WHERE kind = 'cart'), count(*) FILTER (WHERE kind = 'wishlist') FROM cart_lines`).Scan(&cartLines, &wishLines)
	if cartLines != 0 || wishLines != 1 {
		t.Fatalf("expected cart cleared and wishlist kept, got cart=%d wishlist=%d", cartLines, wishLines)
	}

	fetched, err := repo.GetByID(ctx, placed.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != domain.OrderStatusPending || len(fetched.Lines) != 1 || fetched.Lines[0].UnitPriceCents != 700 {
		t.Fatalf("unexpected fetched order %+v", fetched)
	}

	list, err := repo.ListByCustomer(ctx, customerID)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one order, got %d (%v)", len(list), err)
	}
}

func TestPostgres_PlaceIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	customerID := testdb.InsertCustomer(ctx, t, pool, "short@example.com")
	addressID := testdb.InsertAddress(ctx, t, pool, customerID)
	plenty := testdb.InsertProduct(ctx, t, pool, "plenty", 100, 10)
	scarce := testdb.InsertProduct(ctx, t, pool, "scarce", 100, 1)

	repo := NewPostgres(pool, nil)
	_, err := repo.Place(ctx, draft(customerID, addressID,
		domain.OrderLine{ProductID: plenty, Quantity: 2, UnitPriceCents: 100},
		domain.OrderLine{ProductID: scarce, Quantity: 2, UnitPriceCents: 100},
	))
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) || stockErr.ProductID != scarce || stockErr.Available != 1 {
		t.Fatalf("expected insufficient stock for %d, got %v", scarce, err)
	}
	if got := stockOf(ctx, t, pool, plenty); got != 10 {
		t.Fatalf("expected stock untouched, got %d", got)
	}
	var orders int
	_ = pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&orders)
	if orders != 0 {
		t.Fatalf("expected no order rows, got %d", orders)
	}
}

func TestPostgres_GetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	if _, err := NewPostgres(pool, nil).GetByID(ctx, 99); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
