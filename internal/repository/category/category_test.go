package category

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testdb"
)

func TestPostgres_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	repo := NewPostgres(pool)

	root, err := repo.Upsert(ctx, domain.Category{Name: "Plants", DisplayOrder: 1, Published: true})
	if err != nil {
		t.Fatalf("upsert root: %v", err)
	}
	if root.ID == 0 {
		t.Fatalf("expected id to be set")
	}
	child, err := repo.Upsert(ctx, domain.Category{Name: "Succulents", ParentID: &root.ID, Published: true, PictureURL: "/img/succ.jpg"})
	if err != nil {
		t.Fatalf("upsert child: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(list))
	}
	if list[0].ID != child.ID || list[0].ParentID == nil || *list[0].ParentID != root.ID {
		t.Fatalf("expected child first by display order, got %+v", list[0])
	}
}

func TestPostgres_UpsertUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	repo := NewPostgres(pool)

	first, err := repo.Upsert(ctx, domain.Category{Name: "Pots", Published: true})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := repo.Upsert(ctx, domain.Category{Name: "Pots", Description: "Clay pots", Published: true})
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same ID after update")
	}
	if second.Description != "Clay pots" {
		t.Fatalf("expected updated description, got %+v", second)
	}
}

func TestPostgres_AssignProductIsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	repo := NewPostgres(pool)

	cat, err := repo.Upsert(ctx, domain.Category{Name: "Tools", Published: true})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	productID := testdb.InsertProduct(ctx, t, pool, "trowel", 900, 4)
	for i := 0; i < 2; i++ {
		if err := repo.AssignProduct(ctx, productID, cat.ID); err != nil {
			t.Fatalf("assign %d: %v", i, err)
		}
	}
	var n int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM product_categories`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("expected 1 assignment, got %d (%v)", n, err)
	}
}
