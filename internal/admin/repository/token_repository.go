package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fournil/internal/domain"
	apperrors "fournil/internal/errors"
)

type MySQLTokenRepository struct {
	db *sql.DB
}

func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

func (r *MySQLTokenRepository) Create(ctx context.Context, token domain.AuthToken) error {
	query := `INSERT INTO auth_tokens (token, user_id, purpose, expires_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, token.Token, token.UserID, token.Purpose, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("inserting auth token: %w", err)
	}

	return nil
}

// Consume marks the token used and returns its owner. The guarded UPDATE
// makes each token single-use even under concurrent redemption.
func (r *MySQLTokenRepository) Consume(ctx context.Context, token, purpose string) (*domain.AuthToken, error) {
	update := `
		UPDATE auth_tokens
		SET consumed_at = NOW()
		WHERE token = ? AND purpose = ? AND consumed_at IS NULL AND expires_at > NOW()
	`

	result, err := r.db.ExecContext(ctx, update, token, purpose)
	if err != nil {
		return nil, fmt.Errorf("consuming auth token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, apperrors.NewAuthError("invalid or expired token")
	}

	query := `SELECT token, user_id, purpose, expires_at, consumed_at FROM auth_tokens WHERE token = ?`

	var consumed domain.AuthToken
	err = r.db.QueryRowContext(ctx, query, token).Scan(
		&consumed.Token, &consumed.UserID, &consumed.Purpose,
		&consumed.ExpiresAt, &consumed.ConsumedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("querying consumed token: %w", err)
	}

	return &consumed, nil
}
