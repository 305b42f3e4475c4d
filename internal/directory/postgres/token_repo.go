// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/academica/academica/internal/directory"
)

// TokenRepository implements directory.TokenRepository using PostgreSQL.
type TokenRepository struct {
	pool poolIface
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(pool poolIface) *TokenRepository {
	return &TokenRepository{pool: pool}
}

var _ directory.TokenRepository = (*TokenRepository)(nil)

// GetByUsername retrieves a token with its role by exact username.
func (r *TokenRepository) GetByUsername(ctx context.Context, username string) (*directory.AccessToken, error) {
	var token directory.AccessToken
	err := engine(ctx, r.pool).QueryRow(ctx, `
		SELECT t.id, t.username, t.secret, r.id, r.name
		FROM access_tokens t
		JOIN roles r ON r.id = t.role_id
		WHERE t.username = $1
	`, username).Scan(&token.ID, &token.Username, &token.Secret, &token.Role.ID, &token.Role.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TOKEN_NOT_FOUND").
			With("username", username).
			Wrap(directory.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TOKEN_GET_FAILED").
			With("operation", "get token by username").
			With("username", username).
			Wrap(err)
	}
	return &token, nil
}

// UsernameExists reports whether a token already claims the username.
func (r *TokenRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := engine(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM access_tokens WHERE username = $1)
	`, username).Scan(&exists)
	if err != nil {
		return false, oops.Code("TOKEN_EXISTS_FAILED").
			With("operation", "check username exists").
			With("username", username).
			Wrap(err)
	}
	return exists, nil
}

// Create stores a new token and fills in its generated ID.
func (r *TokenRepository) Create(ctx context.Context, token *directory.AccessToken) error {
	err := engine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO access_tokens (username, secret, role_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, token.Username, token.Secret, token.Role.ID).Scan(&token.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("TOKEN_CREATE_FAILED").
				With("username", token.Username).
				Wrap(directory.ErrDuplicate)
		}
		return oops.Code("TOKEN_CREATE_FAILED").
			With("operation", "insert token").
			With("username", token.Username).
			Wrap(err)
	}
	return nil
}

// Delete removes a token.
func (r *TokenRepository) Delete(ctx context.Context, id int64) error {
	tag, err := engine(ctx, r.pool).Exec(ctx, `
		DELETE FROM access_tokens WHERE id = $1
	`, id)
	if err != nil {
		return oops.Code("TOKEN_DELETE_FAILED").
			With("operation", "delete token").
			With("id", id).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("TOKEN_NOT_FOUND").
			With("id", id).
			Wrap(directory.ErrNotFound)
	}
	return nil
}
