package review

import (
	"context"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `id, product_id, customer_id, title, review_text, rating, approved, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, in domain.ProductReview) (*domain.ProductReview, error) {
	const q = `
INSERT INTO product_reviews (product_id, customer_id, title, review_text, rating, approved)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + reviewColumns
	return scanReview(r.pool.QueryRow(ctx, q, in.ProductID, in.CustomerID, in.Title, in.ReviewText, in.Rating, in.Approved))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.ProductReview, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM product_reviews ORDER BY created_at DESC, id DESC`)
}

func (r *postgresRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.ProductReview, error) {
	return r.list(ctx, `SELECT `+reviewColumns+` FROM product_reviews WHERE product_id = $1 AND approved ORDER BY created_at DESC, id DESC`, productID)
}

func (r *postgresRepo) Rating(ctx context.Context, productID int64) (domain.ProductRating, error) {
	out := domain.ProductRating{ProductID: productID}
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*)
FROM product_reviews
WHERE product_id = $1 AND approved
`, productID).Scan(&out.AverageRating, &out.TotalReviews)
	return out, err
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.ProductReview, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProductReview
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}

func scanReview(row pgx.Row) (*domain.ProductReview, error) {
	var rv domain.ProductReview
	if err := row.Scan(&rv.ID, &rv.ProductID, &rv.CustomerID, &rv.Title, &rv.ReviewText, &rv.Rating, &rv.Approved, &rv.CreatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}
