// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academica/academica/internal/directory"
	"github.com/academica/academica/internal/directory/postgres"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock pool")
	t.Cleanup(mock.Close)
	return mock
}

func TestRoleRepository_GetByName(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      *directory.Role
		wantErr   error
	}{
		{
			name: "role found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(2), "profesor")
				mock.ExpectQuery(`SELECT id, name FROM roles WHERE LOWER\(name\) = LOWER\(\$1\)`).
					WithArgs("Profesor").
					WillReturnRows(rows)
			},
			want: &directory.Role{ID: 2, Name: "profesor"},
		},
		{
			name: "role missing",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, name FROM roles`).
					WithArgs("Profesor").
					WillReturnRows(pgxmock.NewRows([]string{"id", "name"}))
			},
			wantErr: directory.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, name FROM roles`).
					WithArgs("Profesor").
					WillReturnError(errors.New("connection refused"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setupMock(mock)
			repo := postgres.NewRoleRepository(mock)

			got, err := repo.GetByName(context.Background(), "Profesor")
			if tt.want != nil {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			} else {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoleRepository_Create(t *testing.T) {
	t.Run("assigns generated id", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO roles (name) VALUES ($1) RETURNING id`)).
			WithArgs("acudiente").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(4)))

		repo := postgres.NewRoleRepository(mock)
		role := &directory.Role{Name: "acudiente"}
		require.NoError(t, repo.Create(context.Background(), role))
		assert.Equal(t, int64(4), role.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`INSERT INTO roles`).
			WithArgs("acudiente").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		repo := postgres.NewRoleRepository(mock)
		err := repo.Create(context.Background(), &directory.Role{Name: "acudiente"})
		require.Error(t, err)
		assert.ErrorIs(t, err, directory.ErrDuplicate)
	})
}

func TestRoleRepository_List(t *testing.T) {
	mock := newMockPool(t)
	rows := pgxmock.NewRows([]string{"id", "name"}).
		AddRow(int64(4), "acudiente").
		AddRow(int64(3), "administrador").
		AddRow(int64(2), "profesor")
	mock.ExpectQuery(`SELECT id, name FROM roles ORDER BY name`).WillReturnRows(rows)

	repo := postgres.NewRoleRepository(mock)
	roles, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []directory.Role{
		{ID: 4, Name: "acudiente"},
		{ID: 3, Name: "administrador"},
		{ID: 2, Name: "profesor"},
	}, roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}
