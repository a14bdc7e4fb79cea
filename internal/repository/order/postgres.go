package order

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const orderColumns = `id, number, user_id, subtotal_cents, tax_cents, total_cents, status, created_at`

// Create inserts the order and its lines in one transaction.
func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO orders (number, user_id, subtotal_cents, tax_cents, total_cents, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderColumns
	var out domain.Order
	if err := tx.QueryRow(ctx, q, o.Number, o.UserID, o.SubtotalCents, o.TaxCents, o.TotalCents, o.Status).Scan(
		&out.ID, &out.Number, &out.UserID, &out.SubtotalCents, &out.TaxCents, &out.TotalCents, &out.Status, &out.CreatedAt,
	); err != nil {
		return nil, err
	}

	for _, line := range o.Lines {
		var inserted domain.OrderLine
		if err := tx.QueryRow(ctx, `
INSERT INTO order_lines (order_id, product_id, product_name, quantity, unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, product_id, product_name, quantity, unit_price_cents, total_cents
`, out.ID, line.ProductID, line.ProductName, line.Quantity, line.UnitPriceCents, line.TotalCents).Scan(
			&inserted.ID, &inserted.OrderID, &inserted.ProductID, &inserted.ProductName,
			&inserted.Quantity, &inserted.UnitPriceCents, &inserted.TotalCents,
		); err != nil {
			return nil, err
		}
		out.Lines = append(out.Lines, inserted)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	var o domain.Order
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&o.ID, &o.Number, &o.UserID, &o.SubtotalCents, &o.TaxCents, &o.TotalCents, &o.Status, &o.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, order_id, product_id, product_name, quantity, unit_price_cents, total_cents
FROM order_lines
WHERE order_id = $1
ORDER BY id ASC
`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.ProductName, &line.Quantity, &line.UnitPriceCents, &line.TotalCents); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.UserID, &o.SubtotalCents, &o.TaxCents, &o.TotalCents, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
