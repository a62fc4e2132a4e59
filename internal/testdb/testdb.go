// Package testdb connects integration tests to the Postgres named by TEST_DB_DSN.
package testdb

import (
	"context"
	"os"
	"testing"

	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
)

const tables = `customers, tokens, addresses, categories, products, product_categories, product_reviews, cart_lines, orders, order_lines`

// Pool returns a migrated, truncated pool. The test is skipped when
// TEST_DB_DSN is unset.
func Pool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE `+tables+` RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

// InsertCustomer creates a bare customer row and returns its id.
func InsertCustomer(ctx context.Context, t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(ctx, `INSERT INTO customers (email, username, password_hash) VALUES ($1, $1, 'x') RETURNING id`, email).Scan(&id); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	return id
}

// InsertProduct creates a published product and returns its id.
func InsertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, key string, priceCents int64, stock int) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(ctx, `
INSERT INTO products (key, sku, name, price_cents, stock)
VALUES ($1, upper($1), $1, $2, $3)
RETURNING id`, key, priceCents, stock).Scan(&id); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}

// InsertAddress creates an address row and returns its id.
func InsertAddress(ctx context.Context, t *testing.T, pool *pgxpool.Pool, customerID int64) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(ctx, `INSERT INTO addresses (customer_id, first_name, city) VALUES ($1, 'Ann', 'Riga') RETURNING id`, customerID).Scan(&id); err != nil {
		t.Fatalf("insert address: %v", err)
	}
	return id
}
