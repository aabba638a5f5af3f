package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fournil/internal/domain"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

// InsertBatch writes all items of one order as a single statement inside
// the checkout transaction.
func (r *MySQLOrderItemRepository) InsertBatch(ctx context.Context, tx *sql.Tx, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(items))
	args := make([]any, 0, len(items)*6)
	for _, item := range items {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?)")
		args = append(args,
			item.OrderID, item.ProductName, item.Options,
			item.Quantity, item.UnitPrice, item.TotalPrice,
		)
	}

	query := `
		INSERT INTO order_items (order_id, product_name, options, quantity, unit_price, total_price)
		VALUES ` + strings.Join(placeholders, ", ")

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting order items: %w", err)
	}

	return nil
}

func (r *MySQLOrderItemRepository) ListByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_name, options, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductName, &item.Options,
			&item.Quantity, &item.UnitPrice, &item.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}

	return items, nil
}

func (r *MySQLOrderItemRepository) DeleteByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID string) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return 0, fmt.Errorf("deleting order items: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected, nil
}

// DeleteForCompletedTx removes the items of every completed order. Runs
// before the header delete in the same transaction so no item is ever
// left with a dangling order_id.
func (r *MySQLOrderItemRepository) DeleteForCompletedTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	query := `
		DELETE oi FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.status = ?
	`

	result, err := tx.ExecContext(ctx, query, string(domain.StatusCompleted))
	if err != nil {
		return 0, fmt.Errorf("deleting items of completed orders: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected, nil
}
