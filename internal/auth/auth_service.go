// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

// Package auth provides credential verification with a shared failed-attempt
// lockout for the school administration backend.
//
// A Service instance owns one failure counter shared by every caller of
// that instance: three consecutive failures, against any username, disable
// login on the instance until a successful reset. The sharing scope is
// therefore an explicit wiring decision of whoever constructs the Service.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"sync"

	"github.com/samber/oops"

	"github.com/academica/academica/internal/directory"
)

// MaxAttempts is the number of consecutive failures that disables login.
const MaxAttempts = 3

// ErrNoMatch is returned when a username/credential pair does not resolve
// to a user. Lookup misses, credential mismatches, and unrecognized stored
// kinds all fold into this outcome so the response does not reveal which
// check failed.
var ErrNoMatch = errors.New("no matching user for those credentials")

// ErrLockedOut is returned once the failure ceiling is reached. Not
// recoverable by retrying; there is no time-based reset.
var ErrLockedOut = errors.New("login temporarily disabled")

// CredentialStore looks up credential records. Implemented by the postgres
// token and user repositories.
type CredentialStore interface {
	// TokenByUsername retrieves the access token for an exact username.
	TokenByUsername(ctx context.Context, username string) (*directory.AccessToken, error)

	// UserByTokenID retrieves the user record owning the token.
	UserByTokenID(ctx context.Context, tokenID int64) (*directory.UserRecord, error)
}

// UserResolver maps a stored record to its typed domain user.
// Satisfied by *directory.Mapper.
type UserResolver interface {
	ToDomain(ctx context.Context, rec *directory.UserRecord) (*directory.User, error)
}

// Service verifies credentials and resolves the concrete user variant.
type Service struct {
	store    CredentialStore
	resolver UserResolver
	logger   *slog.Logger

	mu     sync.Mutex
	failed int
}

// NewService creates an authentication Service with a fresh counter.
func NewService(store CredentialStore, resolver UserResolver) (*Service, error) {
	return NewServiceWithLogger(store, resolver, slog.Default())
}

// NewServiceWithLogger creates an authentication Service with a custom logger.
func NewServiceWithLogger(store CredentialStore, resolver UserResolver, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, oops.Errorf("credential store is required")
	}
	if resolver == nil {
		return nil, oops.Errorf("user resolver is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		store:    store,
		resolver: resolver,
		logger:   logger,
	}, nil
}

// Authenticate verifies a username/credential pair and returns the typed
// domain user. Misses return an error wrapping ErrNoMatch and count toward
// the lockout; once the ceiling is reached every call fails with
// ErrLockedOut before touching storage. A success resets the counter.
func (s *Service) Authenticate(ctx context.Context, username, credential string) (*directory.User, error) {
	if s.lockedOut() {
		return nil, oops.Code("AUTH_LOCKED_OUT").
			With("max_attempts", MaxAttempts).
			Wrap(ErrLockedOut)
	}

	token, err := s.store.TokenByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			s.recordFailure()
			return nil, noMatch()
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get token by username").
			Wrap(err)
	}

	if subtle.ConstantTimeCompare([]byte(credential), []byte(token.Secret)) != 1 {
		s.recordFailure()
		return nil, noMatch()
	}

	rec, err := s.store.UserByTokenID(ctx, token.ID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			s.recordFailure()
			return nil, noMatch()
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get user by token").
			Wrap(err)
	}

	user, err := s.resolver.ToDomain(ctx, rec)
	if err != nil {
		// An unrecognized stored kind is a data-integrity problem, but the
		// login path folds it into the no-match outcome; the query path
		// surfaces it distinctly.
		if errors.Is(err, directory.ErrUnknownKind) {
			s.logger.Error("stored user kind not recognized during login",
				"user_id", rec.ID, "kind", rec.Kind)
			s.recordFailure()
			return nil, noMatch()
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "map user record").
			Wrap(err)
	}

	s.recordSuccess()
	return user, nil
}

// FailedAttempts returns the current consecutive-failure count.
func (s *Service) FailedAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// RemainingAttempts returns how many failures remain before lockout.
func (s *Service) RemainingAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed >= MaxAttempts {
		return 0
	}
	return MaxAttempts - s.failed
}

func (s *Service) lockedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed >= MaxAttempts
}

func (s *Service) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

func (s *Service) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = 0
}

func noMatch() error {
	return oops.Code("AUTH_NO_MATCH").Wrap(ErrNoMatch)
}
