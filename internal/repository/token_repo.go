package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-community-api/internal/model"
)

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Save(ctx context.Context, row model.RefreshToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tokens (token, user_id, token_type, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		row.Token, row.UserID, row.TokenType, row.ExpiresAt, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// Consume atomically removes the refresh-token row matching value and returns
// it. Under concurrent refresh attempts with the same value exactly one
// caller gets the row; the rest see model.ErrTokenNotFound. Expired rows are
// returned (and thereby cleaned up); the caller checks ExpiresAt.
func (r *TokenRepository) Consume(ctx context.Context, value string) (model.RefreshToken, error) {
	row := model.RefreshToken{Token: value, TokenType: model.TokenTypeRefresh}
	err := r.pool.QueryRow(ctx,
		`DELETE FROM tokens
		 WHERE token = $1 AND token_type = $2
		 RETURNING user_id, expires_at, created_at`,
		value, model.TokenTypeRefresh).
		Scan(&row.UserID, &row.ExpiresAt, &row.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.RefreshToken{}, model.ErrTokenNotFound
	}
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("consume refresh token: %w", err)
	}
	return row, nil
}

func (r *TokenRepository) DeleteByValue(ctx context.Context, value string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE token = $1`, value)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user refresh tokens: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
