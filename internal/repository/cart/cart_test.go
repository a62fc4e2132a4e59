package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testdb"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgres_IncrementKeepsOneLine(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	customerID := testdb.InsertCustomer(ctx, t, pool, "cart@example.com")
	repo := NewPostgres(pool, nil)

	for _, q := range []int{2, 3} {
		if _, err := repo.Increment(ctx, customerID, 9, domain.KindCart, q); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	lines, err := repo.List(ctx, customerID, domain.KindCart)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 5 {
		t.Fatalf("expected one line with quantity 5, got %+v", lines)
	}
}

func TestPostgres_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	customerID := testdb.InsertCustomer(ctx, t, pool, "race@example.com")
	repo := NewPostgres(pool, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Increment(ctx, customerID, 3, domain.KindCart, 1); err != nil {
				t.Errorf("Increment: %v", err)
			}
		}()
	}
	wg.Wait()

	lines, err := repo.List(ctx, customerID, domain.KindCart)
	if err != nil || len(lines) != 1 || lines[0].Quantity != 8 {
		t.Fatalf("expected one line with quantity 8, got %+v (%v)", lines, err)
	}
}

func TestPostgres_InsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	customerID := testdb.InsertCustomer(ctx, t, pool, "wish@example.com")
	repo := NewPostgres(pool, nil)

	_, created, err := repo.InsertIfAbsent(ctx, customerID, 4, domain.KindWishlist, 1)
	if err != nil || !created {
		t.Fatalf("expected created, got %v (%v)", created, err)
	}
	_, created, err = repo.InsertIfAbsent(ctx, customerID, 4, domain.KindWishlist, 1)
	if err != nil || created {
		t.Fatalf("expected duplicate to be ignored, got %v (%v)", created, err)
	}
	// Same product in the cart is a different line.
	if _, err := repo.Increment(ctx, customerID, 4, domain.KindCart, 1); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	wish, _ := repo.List(ctx, customerID, domain.KindWishlist)
	cart, _ := repo.List(ctx, customerID, domain.KindCart)
	if len(wish) != 1 || len(cart) != 1 {
		t.Fatalf("expected one line per kind, got wishlist=%d cart=%d", len(wish), len(cart))
	}
}

func TestPostgres_ApplyDelta(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	customerID := testdb.InsertCustomer(ctx, t, pool, "delta@example.com")
	repo := NewPostgres(pool, nil)

	if _, err := repo.ApplyDelta(ctx, customerID, 1, domain.KindCart, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Increment(ctx, customerID, 1, domain.KindCart, 3); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	line, err := repo.ApplyDelta(ctx, customerID, 1, domain.KindCart, -1)
	if err != nil || line.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %+v (%v)", line, err)
	}
	line, err = repo.ApplyDelta(ctx, customerID, 1, domain.KindCart, -5)
	if err != nil || line.Quantity != 0 {
		t.Fatalf("expected removal, got %+v (%v)", line, err)
	}
	lines, _ := repo.List(ctx, customerID, domain.KindCart)
	if len(lines) != 0 {
		t.Fatalf("expected line deleted, got %+v", lines)
	}
}

func TestPostgres_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	customerID := testdb.InsertCustomer(ctx, t, pool, "clear@example.com")
	repo := NewPostgres(pool, nil)

	for _, pid := range []int64{1, 2, 3} {
		if _, err := repo.Increment(ctx, customerID, pid, domain.KindCart, 1); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	wish, _, err := repo.InsertIfAbsent(ctx, customerID, 1, domain.KindWishlist, 1)
	if err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}

	removed, err := repo.Delete(ctx, customerID, 2, domain.KindCart)
	if err != nil || !removed {
		t.Fatalf("expected delete to remove, got %v (%v)", removed, err)
	}
	removed, err = repo.Delete(ctx, customerID, 2, domain.KindCart)
	if err != nil || removed {
		t.Fatalf("expected second delete to be a no-op, got %v (%v)", removed, err)
	}

	if _, err := repo.DeleteByID(ctx, customerID, wish.ID, domain.KindCart); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong kind, got %v", err)
	}

	n, err := repo.Clear(ctx, customerID, domain.KindCart)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 removed, got %d (%v)", n, err)
	}
	lines, _ := repo.List(ctx, customerID, domain.KindWishlist)
	if len(lines) != 1 {
		t.Fatalf("expected wishlist untouched, got %+v", lines)
	}
}

func TestQuantityErrMapsNumericOverflow(t *testing.T) {
	err := quantityErr(&pgconn.PgError{Code: "22003", Message: "integer out of range"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	other := &pgconn.PgError{Code: "23503"}
	if got := quantityErr(other); got != other {
		t.Fatalf("expected passthrough, got %v", got)
	}
}

func TestPostgres_IncrementOverflowIsInvalidInput(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	customerID := testdb.InsertCustomer(ctx, t, pool, "overflow@example.com")
	repo := NewPostgres(pool, nil)

	if _, err := repo.Increment(ctx, customerID, 4, domain.KindCart, 2147483000); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	_, err := repo.Increment(ctx, customerID, 4, domain.KindCart, 1000)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, err = repo.ApplyDelta(ctx, customerID, 4, domain.KindCart, 1000)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput from ApplyDelta, got %v", err)
	}
}
