package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fournil/internal/domain"
	"fournil/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

// Insert writes the order header inside the checkout transaction. The id
// is generated by the caller before the write; created_at is assigned by
// the database.
func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order domain.Order) error {
	query := `
		INSERT INTO orders (id, customer_name, phone, email, total_price, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query,
		order.ID, order.CustomerName, order.Phone, order.Email,
		order.TotalPrice, string(order.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, customer_name, phone, email, total_price, status, created_at
		FROM orders
		WHERE id = ?
	`

	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.CustomerName, &order.Phone, &order.Email,
		&order.TotalPrice, &order.Status, &order.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	return &order, nil
}

// ListAll returns every order, most recent first.
func (r *MySQLOrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT id, customer_name, phone, email, total_price, status, created_at
		FROM orders
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.CustomerName, &order.Phone, &order.Email,
			&order.TotalPrice, &order.Status, &order.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}

	return orders, nil
}

// UpdateStatusFrom advances the status with a guard on the current value,
// so a concurrent admin action cannot be silently overwritten. Zero rows
// affected means the order was modified (or deleted) since it was read.
func (r *MySQLOrderRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.Status) error {
	query := `UPDATE orders SET status = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("order %s is no longer in status %s", id, from))
	}

	return nil
}

func (r *MySQLOrderRepository) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order %s not found", id))
	}

	return nil
}

// DeleteCompletedTx removes all terminal-state headers. Items must already
// be gone; callers run DeleteForCompletedTx on the item repository first
// in the same transaction.
func (r *MySQLOrderRepository) DeleteCompletedTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE status = ?`, string(domain.StatusCompleted))
	if err != nil {
		return 0, fmt.Errorf("deleting completed orders: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	return rowsAffected, nil
}
