// Package seed loads a small demo catalog and a demo customer for manual
// testing. Running it twice leaves the same data behind.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/logger"
	addressrepo "storefront/internal/repository/address"
	categoryrepo "storefront/internal/repository/category"
	customerrepo "storefront/internal/repository/customer"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	customersvc "storefront/internal/service/customer"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "Demo12345"
)

type productSeed struct {
	Key         string
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	Homepage    bool
	Category    string
}

var categories = []string{"Apparel", "Kitchen"}

var products = []productSeed{
	{Key: "demo-shirt", SKU: "SKU-DEMO-TSHIRT", Name: "Demo T-Shirt", Description: "Soft cotton tee for demo purposes", PriceCents: 1999, Stock: 50, Homepage: true, Category: "Apparel"},
	{Key: "demo-hoodie", SKU: "SKU-DEMO-HOODIE", Name: "Demo Hoodie", Description: "Warm hoodie with demo logo", PriceCents: 4999, Stock: 5, Category: "Apparel"},
	{Key: "demo-mug", SKU: "SKU-DEMO-MUG", Name: "Demo Mug", Description: "Ceramic mug with demo logo", PriceCents: 1299, Stock: 100, Homepage: true, Category: "Kitchen"},
	{Key: "demo-teapot", SKU: "SKU-DEMO-TEAPOT", Name: "Demo Teapot", Description: "Last one in stock", PriceCents: 3450, Stock: 1, Category: "Kitchen"},
}

// Apply upserts the demo categories and products and signs up the demo
// customer with one address when it does not exist yet.
func Apply(ctx context.Context, pool *pgxpool.Pool, log *zerolog.Logger) error {
	log = logger.OrNop(log)
	cats := categoryrepo.NewPostgres(pool)
	prods := productrepo.NewPostgres(pool, log)

	categoryIDs := make(map[string]int64, len(categories))
	for i, name := range categories {
		c, err := cats.Upsert(ctx, domain.Category{Name: name, DisplayOrder: i, Published: true})
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", name, err)
		}
		categoryIDs[name] = c.ID
	}

	for _, p := range products {
		saved, err := prods.Upsert(ctx, domain.Product{
			Key:              p.Key,
			SKU:              p.SKU,
			Name:             p.Name,
			ShortDescription: p.Description,
			PriceCents:       p.PriceCents,
			Currency:         "USD",
			Stock:            p.Stock,
			Published:        true,
			ShowOnHomepage:   p.Homepage,
			Attributes:       map[string]interface{}{},
		})
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
		if err := cats.AssignProduct(ctx, saved.ID, categoryIDs[p.Category]); err != nil {
			return fmt.Errorf("assign product %s: %w", p.Key, err)
		}
	}
	log.Info().Int("categories", len(categories)).Int("products", len(products)).Msg("seed: catalog ready")

	customers := customersvc.New(customerrepo.NewPostgres(pool, log), tokenrepo.NewPostgres(pool), time.Hour)
	cust, err := customers.Signup(ctx, customersvc.SignupInput{Email: DemoEmail, Username: "demo", Password: DemoPassword})
	if errors.Is(err, domain.ErrAlreadyExists) {
		log.Info().Str("email", DemoEmail).Msg("seed: demo customer exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("signup demo customer: %w", err)
	}
	if _, err := addressrepo.NewPostgres(pool).Create(ctx, domain.Address{
		CustomerID: &cust.ID,
		FirstName:  "Demo",
		LastName:   "Shopper",
		Email:      DemoEmail,
		Country:    "US",
		City:       "Springfield",
		Address1:   "742 Evergreen Terrace",
	}); err != nil {
		return fmt.Errorf("create demo address: %w", err)
	}
	log.Info().Int64("customer_id", cust.ID).Msg("seed: demo customer created")
	return nil
}
