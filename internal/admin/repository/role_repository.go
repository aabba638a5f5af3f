package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type MySQLRoleRepository struct {
	db *sql.DB
}

func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}

func (r *MySQLRoleRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	query := `SELECT COUNT(1) FROM user_roles WHERE user_id = ? AND role = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, role).Scan(&count); err != nil {
		return false, fmt.Errorf("querying user role: %w", err)
	}

	return count > 0, nil
}

// Grant associates the role with the user. Granting an already-held role
// is a no-op, so repeated bootstraps stay idempotent.
func (r *MySQLRoleRepository) Grant(ctx context.Context, userID, role string) error {
	query := `INSERT IGNORE INTO user_roles (user_id, role) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, query, userID, role); err != nil {
		return fmt.Errorf("granting role: %w", err)
	}

	return nil
}
