// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package directory

import "context"

// RoleRepository manages role reference data.
type RoleRepository interface {
	// GetByName retrieves a role by name (case-insensitive).
	GetByName(ctx context.Context, name string) (*Role, error)

	// Create stores a new role. Used by seeding, never by provisioning.
	Create(ctx context.Context, role *Role) error

	// List returns all roles ordered by name.
	List(ctx context.Context) ([]Role, error)
}

// TokenRepository manages access token persistence.
type TokenRepository interface {
	// GetByUsername retrieves a token with its role by exact username.
	GetByUsername(ctx context.Context, username string) (*AccessToken, error)

	// UsernameExists reports whether a token already claims the username.
	// This is a fast-reject; the storage unique constraint is the source
	// of truth under concurrency.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// Create stores a new token and fills in its generated ID.
	Create(ctx context.Context, token *AccessToken) error

	// Delete removes a token.
	Delete(ctx context.Context, id int64) error
}

// UserRepository manages user record persistence.
type UserRepository interface {
	// GetByID retrieves a user record by ID.
	GetByID(ctx context.Context, id int64) (*UserRecord, error)

	// GetByTokenID retrieves the user record owning the given token.
	GetByTokenID(ctx context.Context, tokenID int64) (*UserRecord, error)

	// EmailExists reports whether any user has the given email.
	EmailExists(ctx context.Context, email string) (bool, error)

	// PhoneExists reports whether any user has the given phone number.
	PhoneExists(ctx context.Context, phone string) (bool, error)

	// Create stores a new user record and fills in its generated ID.
	Create(ctx context.Context, rec *UserRecord) error

	// Delete removes a user record.
	Delete(ctx context.Context, id int64) error

	// GetGuardianWithStudents retrieves a guardian record together with its
	// student collection in a single eager read. Returns ErrNotFound when
	// the guardian row is absent from the joined result.
	GetGuardianWithStudents(ctx context.Context, id int64) (*UserRecord, []Student, error)
}

// StudentRepository answers guardian business-rule queries over students.
type StudentRepository interface {
	// HasApprovedStudents reports whether the guardian has any student in
	// the approved enrollment state.
	HasApprovedStudents(ctx context.Context, guardianID int64) (bool, error)

	// HasPendingStudents reports whether the guardian has any student in
	// the pending enrollment state.
	HasPendingStudents(ctx context.Context, guardianID int64) (bool, error)
}

// Transactor scopes a unit of work to one storage transaction. The
// transaction is committed when fn returns nil and rolled back otherwise;
// it never outlives the call.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
