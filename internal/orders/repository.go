// Package orders stores generated orders in PostgreSQL and serves them over HTTP.
package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/joao-fontenele/orderflow-cyclic/internal/documents"
	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// UpsertByKey inserts or updates the order for key in a single statement, so
// concurrent runs for the same key cannot create two rows. xmax is zero only
// for rows created by this statement.
func (r *OrderRepository) UpsertByKey(ctx context.Context, key domain.OrderKey, patch domain.OrderPatch) (bool, error) {
	items, err := json.Marshal(patch.Items)
	if err != nil {
		return false, fmt.Errorf("marshal items: %w", err)
	}

	var editUntil sql.NullTime
	if patch.EditUntil != nil {
		editUntil = sql.NullTime{Time: *patch.EditUntil, Valid: true}
	}

	var created bool
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO orders (id, user_id, order_date, items, status, edit_until, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id, order_date) DO UPDATE SET
			items = EXCLUDED.items,
			edit_until = EXCLUDED.edit_until,
			updated_at = EXCLUDED.updated_at,
			status = CASE WHEN $9 THEN EXCLUDED.status ELSE orders.status END
		RETURNING (xmax = 0)
	`, uuid.New().String(), key.UserID, key.Date, items, patch.Status, editUntil,
		documents.SourceCyclic, patch.Now, patch.ResetStatus).Scan(&created)
	if err != nil {
		return false, err
	}

	return created, nil
}

func (r *OrderRepository) GetByKey(ctx context.Context, key domain.OrderKey) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, order_date::text, items, status, edit_until, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND order_date = $2
	`, key.UserID, key.Date)

	order, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) ListByDate(ctx context.Context, date string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, order_date::text, items, status, edit_until, created_at, updated_at
		FROM orders
		WHERE order_date = $1
		ORDER BY user_id
	`, date)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, key domain.OrderKey, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE user_id = $2 AND order_date = $3
	`, status, key.UserID, key.Date)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByKey(ctx, key)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		order     domain.Order
		items     []byte
		editUntil sql.NullTime
	)
	if err := s.Scan(&order.ID, &order.UserID, &order.Date, &items, &order.Status, &editUntil, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", order.ID, err)
	}
	if editUntil.Valid {
		t := editUntil.Time.UTC()
		order.EditUntil = &t
	}
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()

	return &order, nil
}
