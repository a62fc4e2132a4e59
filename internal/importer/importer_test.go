package importer

import (
	"context"
	"strings"
	"testing"

	"storefront/internal/domain"

	"go.uber.org/multierr"
)

type stubProductRepo struct {
	items []domain.Product
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = int64(len(s.items) + 1)
	s.items = append(s.items, p)
	return &p, nil
}

type stubCategoryRepo struct {
	items    []domain.Category
	assigned map[int64][]int64
}

func (s *stubCategoryRepo) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	c.ID = int64(len(s.items) + 100)
	s.items = append(s.items, c)
	return &c, nil
}

func (s *stubCategoryRepo) AssignProduct(_ context.Context, productID, categoryID int64) error {
	if s.assigned == nil {
		s.assigned = make(map[int64][]int64)
	}
	s.assigned[productID] = append(s.assigned[productID], categoryID)
	return nil
}

func TestCSVImporter_RunProducts(t *testing.T) {
	csvData := `key,sku,name,short_description,price,currency,stock,homepage,categories,image_url
mug,SKU-MUG,Mug,Ceramic,12.5,usd,10,true,Kitchen;Gifts,https://example.com/mug1.jpg
,,,,,,,,,https://example.com/mug2.jpg
plate,SKU-PLATE,Plate,,9,,3,,Kitchen,`

	repo := &stubProductRepo{}
	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, catRepo, nil)

	count, err := imp.Run(context.Background(), KindProducts)
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 || len(repo.items) != 2 {
		t.Fatalf("expected 2 products imported, got %d (%d saved)", count, len(repo.items))
	}

	mug := repo.items[0]
	if mug.Key != "mug" || mug.SKU != "SKU-MUG" || mug.PriceCents != 1250 || mug.Currency != "USD" || mug.Stock != 10 || !mug.ShowOnHomepage {
		t.Fatalf("unexpected product data: %+v", mug)
	}
	if images, _ := mug.Attributes["images"].([]string); len(images) != 2 {
		t.Fatalf("expected 2 images on first product, got %v", mug.Attributes["images"])
	}
	if mug.PictureURL != "https://example.com/mug1.jpg" {
		t.Fatalf("expected first image as picture, got %q", mug.PictureURL)
	}
	if repo.items[1].Currency != "USD" || repo.items[1].PriceCents != 900 {
		t.Fatalf("unexpected second product %+v", repo.items[1])
	}

	// Kitchen is created once and shared.
	if len(catRepo.items) != 2 {
		t.Fatalf("expected 2 category upserts, got %d", len(catRepo.items))
	}
	if len(catRepo.assigned[1]) != 2 || len(catRepo.assigned[2]) != 1 || catRepo.assigned[2][0] != catRepo.assigned[1][0] {
		t.Fatalf("unexpected assignments %v", catRepo.assigned)
	}
}

func TestCSVImporter_SkipsInvalidRows(t *testing.T) {
	csvData := `key,sku,name,price,stock
ok,SKU-1,Fine,1.00,1
free,SKU-2,Free,0,1
neg,SKU-3,Negative,2.00,-4
,,,,
nosku,,Nameless,1.00,1`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, nil, nil)

	count, err := imp.Run(context.Background(), KindProducts)
	if count != 1 {
		t.Fatalf("expected 1 product imported, got %d", count)
	}
	if got := len(multierr.Errors(err)); got != 3 {
		t.Fatalf("expected 3 row errors, got %d: %v", got, err)
	}
}

func TestCSVImporter_RunCategories(t *testing.T) {
	csvData := `name,parent,description,display_order
Indoor Pots,Pots,Desc indoor,2
Pots,,,1
Orphan,Missing,,
Succulents,Indoor Pots,,x`

	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), nil, catRepo, nil)

	count, err := imp.Run(context.Background(), KindCategories)
	if count != 2 {
		t.Fatalf("expected 2 categories imported, got %d", count)
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected orphan and bad order errors, got %v", err)
	}
	if catRepo.items[0].Name != "Pots" || catRepo.items[0].ParentID != nil {
		t.Fatalf("expected root imported first, got %+v", catRepo.items[0])
	}
	indoor := catRepo.items[1]
	if indoor.Name != "Indoor Pots" || indoor.ParentID == nil || *indoor.ParentID != 100 || indoor.DisplayOrder != 2 {
		t.Fatalf("unexpected child %+v", indoor)
	}
}

func TestDetectKind(t *testing.T) {
	kind, err := DetectKind(strings.NewReader("key,sku,name\nmug,SKU,Mug\n"))
	if err != nil || kind != KindProducts {
		t.Fatalf("expected products, got %s %v", kind, err)
	}

	kind, err = DetectKind(strings.NewReader("name,parent\nPots,\n"))
	if err != nil || kind != KindCategories {
		t.Fatalf("expected categories, got %s %v", kind, err)
	}

	if _, err := DetectKind(strings.NewReader("foo,bar")); err == nil {
		t.Fatalf("expected error for unknown header")
	}
}
