package customer

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testdb"
)

func TestPostgres_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Customer{Email: "Ann@Example.com", Username: "ann", PasswordHash: "hash", Active: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.Email != "ann@example.com" {
		t.Fatalf("unexpected customer %+v", created)
	}

	byEmail, err := repo.GetByEmail(ctx, "ANN@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected id %d, got %d", created.ID, byEmail.ID)
	}

	if _, err := repo.GetByID(ctx, created.ID+100); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := repo.Create(ctx, domain.Customer{Email: "ann@example.com", PasswordHash: "x"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(all))
	}
}
