// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

// Package directory provides the user domain for the school administration
// backend: polymorphic users (teachers, directors, administrators,
// guardians), their access tokens and roles, and the provisioning service
// that creates a user together with its token atomically.
//
// # Domain Types
//
// A User carries an explicit Kind tag; dispatch over user variants is a
// closed switch on Kind, never on type names. Stored rows surface as
// UserRecord values; the Mapper resolves a record to a typed User,
// eagerly loading related data for the variants that need it (a guardian's
// students).
//
// # Services
//
// Service coordinates the provisioning use cases: CreateUser (atomic
// token + user creation with role binding and credential notification),
// GetUser / GetOwnInfo (record lookup plus mapping), and DeleteUser
// (guardian business rules enforced).
//
// Repository interfaces are implemented by the postgres subpackage.
package directory
