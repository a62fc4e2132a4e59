package address

import (
	"context"
	"errors"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const addressColumns = `id, customer_id, first_name, last_name, email, country, city, address1, address2, zip_postal_code, phone_number, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	const q = `
INSERT INTO addresses (customer_id, first_name, last_name, email, country, city, address1, address2, zip_postal_code, phone_number)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + addressColumns
	return scanAddress(r.pool.QueryRow(ctx, q,
		a.CustomerID,
		a.FirstName,
		a.LastName,
		a.Email,
		a.Country,
		a.City,
		a.Address1,
		a.Address2,
		a.ZipPostalCode,
		a.PhoneNumber,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	const q = `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`
	return scanAddress(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error) {
	const q = `SELECT ` + addressColumns + ` FROM addresses WHERE customer_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&a.Country,
		&a.City,
		&a.Address1,
		&a.Address2,
		&a.ZipPostalCode,
		&a.PhoneNumber,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
