package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `p.id, p.key, p.sku, p.name, p.short_description, p.full_description, p.price_cents, p.currency,
       p.stock, p.published, p.show_on_homepage, p.picture_url, p.attributes, p.created_at,
       COALESCE((SELECT array_agg(pc.category_id ORDER BY pc.category_id) FROM product_categories pc WHERE pc.product_id = p.id), '{}')`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, log *zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.OrNop(log)}
}

// GetByID returns the product whatever its published flag.
func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product repo: get not found")
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("product repo: get")
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) ListHomepage(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p WHERE p.published AND p.show_on_homepage ORDER BY p.created_at DESC, p.id DESC`
	return r.query(ctx, "homepage", q)
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	var (
		where = []string{"p.published"}
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.CategoryID > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = p.id AND pc.category_id = "+arg(f.CategoryID)+")")
	}
	if f.MinPriceCents > 0 {
		where = append(where, "p.price_cents >= "+arg(f.MinPriceCents))
	}
	if f.MaxPriceCents > 0 {
		where = append(where, "p.price_cents <= "+arg(f.MaxPriceCents))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		where = append(where, "lower(p.name) LIKE "+arg("%"+escapeLike(strings.ToLower(q))+"%"))
	}

	q := `SELECT ` + productColumns + ` FROM products p WHERE ` + strings.Join(where, " AND ") + ` ORDER BY ` + orderClause(f.Sort)
	if f.Limit > 0 {
		q += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		q += " OFFSET " + arg(f.Offset)
	}
	return r.query(ctx, "list", q, args...)
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (key, sku, name, short_description, full_description, price_cents, currency, stock, published, show_on_homepage, picture_url, attributes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, '{}'::jsonb))
ON CONFLICT (key) DO UPDATE SET
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    short_description = EXCLUDED.short_description,
    full_description = EXCLUDED.full_description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    stock = EXCLUDED.stock,
    published = EXCLUDED.published,
    show_on_homepage = EXCLUDED.show_on_homepage,
    picture_url = EXCLUDED.picture_url,
    attributes = EXCLUDED.attributes
RETURNING id, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.Key,
		product.SKU,
		product.Name,
		product.ShortDescription,
		product.FullDescription,
		product.PriceCents,
		product.Currency,
		product.Stock,
		product.Published,
		product.ShowOnHomepage,
		product.PictureURL,
		product.Attributes,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("key", product.Key).Msg("product repo: upsert")
		return nil, err
	}
	r.logger.Debug().Str("key", res.Key).Int64("product_id", res.ID).Msg("product repo: upserted")
	return &res, nil
}

func (r *postgresRepo) query(ctx context.Context, op, q string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("op", op).Msg("product repo: query")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Str("op", op).Msg("product repo: rows")
		return nil, err
	}
	r.logger.Debug().Str("op", op).Int("count", len(result)).Msg("product repo: listed")
	return result, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Key,
		&p.SKU,
		&p.Name,
		&p.ShortDescription,
		&p.FullDescription,
		&p.PriceCents,
		&p.Currency,
		&p.Stock,
		&p.Published,
		&p.ShowOnHomepage,
		&p.PictureURL,
		&p.Attributes,
		&p.CreatedAt,
		&p.CategoryIDs,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func orderClause(s SortOrder) string {
	switch s {
	case SortNameDesc:
		return "p.name DESC, p.id"
	case SortPriceAsc:
		return "p.price_cents ASC, p.id"
	case SortPriceDesc:
		return "p.price_cents DESC, p.id"
	case SortNewest:
		return "p.created_at DESC, p.id DESC"
	default:
		return "p.name ASC, p.id"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
