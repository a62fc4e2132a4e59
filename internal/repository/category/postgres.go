package category

import (
	"context"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// List returns published categories flat, ordered for display.
func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT id, parent_id, name, description, picture_url, display_order, published, created_at
FROM categories
WHERE published
ORDER BY display_order ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.Description, &c.PictureURL, &c.DisplayOrder, &c.Published, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (parent_id, name, description, picture_url, display_order, published)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (name, COALESCE(parent_id, 0)) DO UPDATE
SET description = COALESCE(NULLIF(EXCLUDED.description, ''), categories.description),
    picture_url = COALESCE(NULLIF(EXCLUDED.picture_url, ''), categories.picture_url),
    display_order = EXCLUDED.display_order,
    published = EXCLUDED.published
RETURNING id, description, picture_url, created_at
`
	out := c
	err := r.pool.QueryRow(ctx, q, c.ParentID, c.Name, c.Description, c.PictureURL, c.DisplayOrder, c.Published).
		Scan(&out.ID, &out.Description, &out.PictureURL, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) AssignProduct(ctx context.Context, productID, categoryID int64) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO product_categories (product_id, category_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, productID, categoryID)
	return err
}
