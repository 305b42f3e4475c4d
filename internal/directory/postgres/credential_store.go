// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package postgres

import (
	"context"

	"github.com/academica/academica/internal/directory"
)

// CredentialStore adapts the token and user repositories to the lookup
// surface the authentication service needs.
type CredentialStore struct {
	tokens *TokenRepository
	users  *UserRepository
}

// NewCredentialStore creates a CredentialStore over the given repositories.
func NewCredentialStore(tokens *TokenRepository, users *UserRepository) *CredentialStore {
	return &CredentialStore{tokens: tokens, users: users}
}

// TokenByUsername retrieves the access token for an exact username.
func (s *CredentialStore) TokenByUsername(ctx context.Context, username string) (*directory.AccessToken, error) {
	return s.tokens.GetByUsername(ctx, username)
}

// UserByTokenID retrieves the user record owning the token.
func (s *CredentialStore) UserByTokenID(ctx context.Context, tokenID int64) (*directory.UserRecord, error) {
	return s.users.GetByTokenID(ctx, tokenID)
}
