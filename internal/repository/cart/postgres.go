package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const lineColumns = `id, customer_id, product_id, kind, quantity, created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, log *zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.OrNop(log)}
}

func (r *postgresRepo) Increment(ctx context.Context, customerID, productID int64, kind domain.Kind, quantity int) (*domain.CartLine, error) {
	const q = `
INSERT INTO cart_lines (customer_id, product_id, kind, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (customer_id, product_id, kind) DO UPDATE
SET quantity = cart_lines.quantity + EXCLUDED.quantity,
    updated_at = now()
RETURNING ` + lineColumns
	line, err := scanLine(r.pool.QueryRow(ctx, q, customerID, productID, string(kind), quantity))
	if err != nil {
		r.logger.Error().Err(err).Int64("customer_id", customerID).Int64("product_id", productID).Msg("cart repo: increment")
		return nil, quantityErr(err)
	}
	return line, nil
}

func (r *postgresRepo) InsertIfAbsent(ctx context.Context, customerID, productID int64, kind domain.Kind, quantity int) (*domain.CartLine, bool, error) {
	const q = `
INSERT INTO cart_lines (customer_id, product_id, kind, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (customer_id, product_id, kind) DO NOTHING
RETURNING ` + lineColumns
	line, err := scanLine(r.pool.QueryRow(ctx, q, customerID, productID, string(kind), quantity))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return line, true, nil
}

func (r *postgresRepo) ApplyDelta(ctx context.Context, customerID, productID int64, kind domain.Kind, delta int) (*domain.CartLine, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	line, err := scanLine(tx.QueryRow(ctx, `
SELECT `+lineColumns+`
FROM cart_lines
WHERE customer_id = $1 AND product_id = $2 AND kind = $3
FOR UPDATE
`, customerID, productID, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	newQty := line.Quantity + delta
	if newQty <= 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, line.ID); err != nil {
			return nil, err
		}
		line.Quantity = 0
	} else {
		if err := tx.QueryRow(ctx, `
UPDATE cart_lines
SET quantity = $1, updated_at = now()
WHERE id = $2
RETURNING updated_at
`, newQty, line.ID).Scan(&line.UpdatedAt); err != nil {
			return nil, quantityErr(err)
		}
		line.Quantity = newQty
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Debug().Int64("line_id", line.ID).Int("delta", delta).Int("quantity", line.Quantity).Msg("cart repo: delta applied")
	return line, nil
}

func (r *postgresRepo) Delete(ctx context.Context, customerID, productID int64, kind domain.Kind) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM cart_lines
WHERE customer_id = $1 AND product_id = $2 AND kind = $3
`, customerID, productID, string(kind))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) DeleteByID(ctx context.Context, customerID, lineID int64, kind domain.Kind) (*domain.CartLine, error) {
	line, err := scanLine(r.pool.QueryRow(ctx, `
DELETE FROM cart_lines
WHERE id = $1 AND customer_id = $2 AND kind = $3
RETURNING `+lineColumns, lineID, customerID, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return line, nil
}

// List returns lines oldest first.
func (r *postgresRepo) List(ctx context.Context, customerID int64, kind domain.Kind) ([]domain.CartLine, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+lineColumns+`
FROM cart_lines
WHERE customer_id = $1 AND kind = $2
ORDER BY created_at ASC, id ASC
`, customerID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) Clear(ctx context.Context, customerID int64, kind domain.Kind) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1 AND kind = $2`, customerID, string(kind))
	if err != nil {
		return 0, err
	}
	r.logger.Debug().Int64("customer_id", customerID).Str("kind", string(kind)).Int64("removed", cmd.RowsAffected()).Msg("cart repo: cleared")
	return cmd.RowsAffected(), nil
}

// quantityErr turns a numeric overflow of the quantity column into an
// input error; anything else passes through.
func quantityErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22003" {
		return domain.InvalidInput("quantity", "resulting quantity is out of range")
	}
	return err
}

func scanLine(row pgx.Row) (*domain.CartLine, error) {
	var (
		line domain.CartLine
		kind string
	)
	if err := row.Scan(&line.ID, &line.CustomerID, &line.ProductID, &kind, &line.Quantity, &line.CreatedAt, &line.UpdatedAt); err != nil {
		return nil, err
	}
	line.Kind = domain.Kind(kind)
	return &line, nil
}
