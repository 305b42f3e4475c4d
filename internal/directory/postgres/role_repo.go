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

// RoleRepository implements directory.RoleRepository using PostgreSQL.
type RoleRepository struct {
	pool poolIface
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool poolIface) *RoleRepository {
	return &RoleRepository{pool: pool}
}

var _ directory.RoleRepository = (*RoleRepository)(nil)

// GetByName retrieves a role by name (case-insensitive).
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*directory.Role, error) {
	var role directory.Role
	err := engine(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name FROM roles WHERE LOWER(name) = LOWER($1)
	`, name).Scan(&role.ID, &role.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ROLE_NOT_FOUND").
			With("name", name).
			Wrap(directory.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ROLE_GET_FAILED").
			With("operation", "get role by name").
			With("name", name).
			Wrap(err)
	}
	return &role, nil
}

// Create stores a new role and fills in its generated ID.
func (r *RoleRepository) Create(ctx context.Context, role *directory.Role) error {
	err := engine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO roles (name) VALUES ($1) RETURNING id
	`, role.Name).Scan(&role.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("ROLE_CREATE_FAILED").
				With("name", role.Name).
				Wrap(directory.ErrDuplicate)
		}
		return oops.Code("ROLE_CREATE_FAILED").
			With("operation", "insert role").
			With("name", role.Name).
			Wrap(err)
	}
	return nil
}

// List returns all roles ordered by name.
func (r *RoleRepository) List(ctx context.Context) ([]directory.Role, error) {
	rows, err := engine(ctx, r.pool).Query(ctx, `
		SELECT id, name FROM roles ORDER BY name
	`)
	if err != nil {
		return nil, oops.Code("ROLE_LIST_FAILED").
			With("operation", "list roles").
			Wrap(err)
	}
	defer rows.Close()

	var roles []directory.Role
	for rows.Next() {
		var role directory.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, oops.Code("ROLE_LIST_FAILED").
				With("operation", "scan role row").
				Wrap(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROLE_LIST_FAILED").
			With("operation", "iterate roles").
			Wrap(err)
	}
	return roles, nil
}
