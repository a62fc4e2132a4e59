package order

import (
	"context"
	"errors"
	"sort"

	"storefront/internal/domain"
	"storefront/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, guid::text, customer_id, billing_address_id, shipping_address_id, status, total_cents, currency, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, log *zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.OrNop(log)}
}

func (r *postgresRepo) Place(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock products in id order so concurrent checkouts cannot deadlock.
	byProduct := make([]domain.OrderLine, len(o.Lines))
	copy(byProduct, o.Lines)
	sort.Slice(byProduct, func(i, j int) bool { return byProduct[i].ProductID < byProduct[j].ProductID })
	for _, l := range byProduct {
		if err := decrementStock(ctx, tx, l.ProductID, l.Quantity); err != nil {
			r.logger.Info().Err(err).Int64("customer_id", o.CustomerID).Int64("product_id", l.ProductID).Msg("order repo: stock check failed")
			return nil, err
		}
	}

	out := o
	if err := tx.QueryRow(ctx, `
INSERT INTO orders (guid, customer_id, billing_address_id, shipping_address_id, status, total_cents, currency)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at
`, o.GUID, o.CustomerID, o.BillingAddressID, o.ShippingAddressID, string(o.Status), o.TotalCents, o.Currency).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}

	out.Lines = make([]domain.OrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		l.OrderID = out.ID
		if err := tx.QueryRow(ctx, `
INSERT INTO order_lines (order_id, guid, product_id, quantity, unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`, out.ID, l.GUID, l.ProductID, l.Quantity, l.UnitPriceCents, l.TotalCents).Scan(&l.ID); err != nil {
			return nil, err
		}
		out.Lines = append(out.Lines, l)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1 AND kind = $2`, o.CustomerID, string(domain.KindCart)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info().Int64("order_id", out.ID).Int64("customer_id", out.CustomerID).Int64("total_cents", out.TotalCents).Msg("order repo: placed")
	return &out, nil
}

func decrementStock(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error {
	var remaining int
	err := tx.QueryRow(ctx, `
UPDATE products
SET stock = stock - $1
WHERE id = $2 AND stock >= $1
RETURNING stock
`, quantity, productID).Scan(&remaining)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	var available int
	if err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&available); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: available}
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC, id DESC`, customerID)
	if err != nil {
		return nil, err
	}
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) loadLines(ctx context.Context, o *domain.Order) error {
	rows, err := r.pool.Query(ctx, `
SELECT id, order_id, guid::text, product_id, quantity, unit_price_cents, total_cents
FROM order_lines
WHERE order_id = $1
ORDER BY id
`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	o.Lines = nil
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.GUID, &l.ProductID, &l.Quantity, &l.UnitPriceCents, &l.TotalCents); err != nil {
			return err
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	if err := row.Scan(&o.ID, &o.GUID, &o.CustomerID, &o.BillingAddressID, &o.ShippingAddressID, &status, &o.TotalCents, &o.Currency, &o.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
