// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package postgres_test

import (
	"context"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academica/academica/internal/directory"
	"github.com/academica/academica/internal/directory/postgres"
)

var userCols = []string{
	"id", "kind", "first_given_name", "second_given_name",
	"first_family_name", "second_family_name", "age", "email", "phone",
	"t.id", "t.username", "t.secret", "r.id", "r.name",
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func TestUserRepository_GetByID(t *testing.T) {
	t.Run("user with token", func(t *testing.T) {
		mock := newMockPool(t)
		rows := pgxmock.NewRows(userCols).AddRow(
			int64(7), "profesor", "María", "José", "Pérez", "Gómez", 34,
			strPtr("mjperez@example.edu"), nil,
			int64Ptr(42), strPtr("mjperezg"), strPtr("Ab3!xY9@"),
			int64Ptr(2), strPtr("profesor"),
		)
		mock.ExpectQuery(`FROM users u`).WithArgs(int64(7)).WillReturnRows(rows)

		repo := postgres.NewUserRepository(mock)
		rec, err := repo.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), rec.ID)
		assert.Equal(t, "profesor", rec.Kind)
		require.NotNil(t, rec.Email)
		assert.Equal(t, "mjperez@example.edu", *rec.Email)
		assert.Nil(t, rec.Phone)
		require.NotNil(t, rec.Token)
		assert.Equal(t, "mjperezg", rec.Token.Username)
		assert.Equal(t, directory.Role{ID: 2, Name: "profesor"}, rec.Token.Role)
	})

	t.Run("user without token", func(t *testing.T) {
		mock := newMockPool(t)
		rows := pgxmock.NewRows(userCols).AddRow(
			int64(8), "directivo", "Laura", "", "Mora", "", 41,
			nil, nil, nil, nil, nil, nil, nil,
		)
		mock.ExpectQuery(`FROM users u`).WithArgs(int64(8)).WillReturnRows(rows)

		repo := postgres.NewUserRepository(mock)
		rec, err := repo.GetByID(context.Background(), 8)
		require.NoError(t, err)
		assert.Nil(t, rec.Token)
	})

	t.Run("user missing", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`FROM users u`).WithArgs(int64(99)).
			WillReturnRows(pgxmock.NewRows(userCols))

		repo := postgres.NewUserRepository(mock)
		_, err := repo.GetByID(context.Background(), 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, directory.ErrNotFound)
	})
}

func TestUserRepository_GetByTokenID(t *testing.T) {
	mock := newMockPool(t)
	rows := pgxmock.NewRows(userCols).AddRow(
		int64(7), "profesor", "María", "José", "Pérez", "Gómez", 34,
		nil, nil,
		int64Ptr(42), strPtr("mjperezg"), strPtr("Ab3!xY9@"),
		int64Ptr(2), strPtr("profesor"),
	)
	mock.ExpectQuery(`WHERE u.token_id = \$1`).WithArgs(int64(42)).WillReturnRows(rows)

	repo := postgres.NewUserRepository(mock)
	rec, err := repo.GetByTokenID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
}

func TestUserRepository_Exists(t *testing.T) {
	t.Run("email exists", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("mjperez@example.edu").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		repo := postgres.NewUserRepository(mock)
		exists, err := repo.EmailExists(context.Background(), "mjperez@example.edu")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("phone does not exist", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("3009876543").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		repo := postgres.NewUserRepository(mock)
		exists, err := repo.PhoneExists(context.Background(), "3009876543")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestUserRepository_Create(t *testing.T) {
	t.Run("assigns generated id", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("profesor", "María", "José", "Pérez", "Gómez", 34,
				strPtr("mjperez@example.edu"), (*string)(nil), int64Ptr(42)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

		repo := postgres.NewUserRepository(mock)
		rec := &directory.UserRecord{
			Kind:             "profesor",
			FirstGivenName:   "María",
			SecondGivenName:  "José",
			FirstFamilyName:  "Pérez",
			SecondFamilyName: "Gómez",
			Age:              34,
			Email:            strPtr("mjperez@example.edu"),
			Token:            &directory.AccessToken{ID: 42},
		}
		require.NoError(t, repo.Create(context.Background(), rec))
		assert.Equal(t, int64(7), rec.ID)
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("profesor", "María", "", "Pérez", "", 0, (*string)(nil), (*string)(nil), (*int64)(nil)).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		repo := postgres.NewUserRepository(mock)
		err := repo.Create(context.Background(), &directory.UserRecord{
			Kind:            "profesor",
			FirstGivenName:  "María",
			FirstFamilyName: "Pérez",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, directory.ErrDuplicate)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	t.Run("missing user maps to not found", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(`DELETE FROM users`).
			WithArgs(int64(99)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := postgres.NewUserRepository(mock)
		err := repo.Delete(context.Background(), 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, directory.ErrNotFound)
	})
}

var guardianCols = append(append([]string{}, userCols...),
	"s.id", "s.guardian_id", "s.first_given_name", "s.second_given_name",
	"s.first_family_name", "s.second_family_name", "s.age", "s.nuip", "s.status",
)

func TestUserRepository_GetGuardianWithStudents(t *testing.T) {
	t.Run("guardian with two students", func(t *testing.T) {
		mock := newMockPool(t)
		rows := pgxmock.NewRows(guardianCols).
			AddRow(
				int64(5), "acudiente", "Rosa", "", "Vega", "", 45, nil, strPtr("3001234567"),
				int64Ptr(42), strPtr("rvega"), strPtr("Ab3!xY9@"), int64Ptr(4), strPtr("acudiente"),
				int64Ptr(11), int64Ptr(5), strPtr("Tomás"), strPtr(""), strPtr("Vega"), strPtr(""),
				intPtr(9), strPtr("1000000001"), strPtr("aprobada"),
			).
			AddRow(
				int64(5), "acudiente", "Rosa", "", "Vega", "", 45, nil, strPtr("3001234567"),
				int64Ptr(42), strPtr("rvega"), strPtr("Ab3!xY9@"), int64Ptr(4), strPtr("acudiente"),
				int64Ptr(12), int64Ptr(5), strPtr("Sara"), strPtr(""), strPtr("Vega"), strPtr(""),
				intPtr(7), strPtr("1000000002"), strPtr("pendiente"),
			)
		mock.ExpectQuery(`LEFT JOIN students s`).
			WithArgs(int64(5), "acudiente").
			WillReturnRows(rows)

		repo := postgres.NewUserRepository(mock)
		rec, students, err := repo.GetGuardianWithStudents(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), rec.ID)
		require.NotNil(t, rec.Token)
		assert.Equal(t, "rvega", rec.Token.Username)
		require.Len(t, students, 2)
		assert.Equal(t, "Tomás", students[0].FirstGivenName)
		assert.Equal(t, directory.EnrollmentApproved, students[0].Status)
		assert.Equal(t, directory.EnrollmentPending, students[1].Status)
	})

	t.Run("guardian without students", func(t *testing.T) {
		mock := newMockPool(t)
		rows := pgxmock.NewRows(guardianCols).AddRow(
			int64(5), "acudiente", "Rosa", "", "Vega", "", 45, nil, nil,
			nil, nil, nil, nil, nil,
			nil, nil, nil, nil, nil, nil, nil, nil, nil,
		)
		mock.ExpectQuery(`LEFT JOIN students s`).
			WithArgs(int64(5), "acudiente").
			WillReturnRows(rows)

		repo := postgres.NewUserRepository(mock)
		rec, students, err := repo.GetGuardianWithStudents(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(5), rec.ID)
		assert.Empty(t, students)
	})

	t.Run("guardian missing", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(`LEFT JOIN students s`).
			WithArgs(int64(99), "acudiente").
			WillReturnRows(pgxmock.NewRows(guardianCols))

		repo := postgres.NewUserRepository(mock)
		_, _, err := repo.GetGuardianWithStudents(context.Background(), 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, directory.ErrNotFound)
	})
}

func intPtr(n int) *int { return &n }
