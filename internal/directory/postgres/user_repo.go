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

// UserRepository implements directory.UserRepository using PostgreSQL.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ directory.UserRepository = (*UserRepository)(nil)

// userColumns is the select list shared by the user read paths. The token
// columns come from a LEFT JOIN, so they scan through pointers.
const userColumns = `
	u.id, u.kind, u.first_given_name, u.second_given_name,
	u.first_family_name, u.second_family_name, u.age, u.email, u.phone,
	t.id, t.username, t.secret, r.id, r.name`

const userFrom = `
	FROM users u
	LEFT JOIN access_tokens t ON t.id = u.token_id
	LEFT JOIN roles r ON r.id = t.role_id`

// scanUser reads one joined user row into a UserRecord.
func scanUser(row pgx.Row) (*directory.UserRecord, error) {
	var rec directory.UserRecord
	var tokenID *int64
	var tokenUsername, tokenSecret *string
	var roleID *int64
	var roleName *string

	err := row.Scan(
		&rec.ID, &rec.Kind, &rec.FirstGivenName, &rec.SecondGivenName,
		&rec.FirstFamilyName, &rec.SecondFamilyName, &rec.Age, &rec.Email, &rec.Phone,
		&tokenID, &tokenUsername, &tokenSecret, &roleID, &roleName,
	)
	if err != nil {
		return nil, err
	}
	if tokenID != nil {
		rec.Token = &directory.AccessToken{
			ID:       *tokenID,
			Username: *tokenUsername,
			Secret:   *tokenSecret,
			Role:     directory.Role{ID: *roleID, Name: *roleName},
		}
	}
	return &rec, nil
}

// GetByID retrieves a user record by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*directory.UserRecord, error) {
	row := engine(ctx, r.pool).QueryRow(ctx,
		`SELECT`+userColumns+userFrom+` WHERE u.id = $1`, id)

	rec, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(directory.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return rec, nil
}

// GetByTokenID retrieves the user record owning the given token.
func (r *UserRepository) GetByTokenID(ctx context.Context, tokenID int64) (*directory.UserRecord, error) {
	row := engine(ctx, r.pool).QueryRow(ctx,
		`SELECT`+userColumns+userFrom+` WHERE u.token_id = $1`, tokenID)

	rec, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("token_id", tokenID).
			Wrap(directory.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by token").
			With("token_id", tokenID).
			Wrap(err)
	}
	return rec, nil
}

// EmailExists reports whether any user has the given email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := engine(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`, email).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("operation", "check email exists").
			Wrap(err)
	}
	return exists, nil
}

// PhoneExists reports whether any user has the given phone number.
func (r *UserRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := engine(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE phone = $1)
	`, phone).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_EXISTS_FAILED").
			With("operation", "check phone exists").
			Wrap(err)
	}
	return exists, nil
}

// Create stores a new user record and fills in its generated ID.
func (r *UserRepository) Create(ctx context.Context, rec *directory.UserRecord) error {
	var tokenID *int64
	if rec.Token != nil {
		tokenID = &rec.Token.ID
	}

	err := engine(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (
			kind, first_given_name, second_given_name,
			first_family_name, second_family_name, age, email, phone, token_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		rec.Kind,
		rec.FirstGivenName,
		rec.SecondGivenName,
		rec.FirstFamilyName,
		rec.SecondFamilyName,
		rec.Age,
		rec.Email,
		rec.Phone,
		tokenID,
	).Scan(&rec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_CREATE_FAILED").
				With("kind", rec.Kind).
				Wrap(directory.ErrDuplicate)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("kind", rec.Kind).
			Wrap(err)
	}
	return nil
}

// Delete removes a user record.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := engine(ctx, r.pool).Exec(ctx, `
		DELETE FROM users WHERE id = $1
	`, id)
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(directory.ErrNotFound)
	}
	return nil
}

// GetGuardianWithStudents retrieves a guardian record together with its
// student collection in one query. The student columns come from a LEFT
// JOIN, so a guardian with no students still produces one row.
func (r *UserRepository) GetGuardianWithStudents(ctx context.Context, id int64) (*directory.UserRecord, []directory.Student, error) {
	rows, err := engine(ctx, r.pool).Query(ctx, `
		SELECT`+userColumns+`,
		       s.id, s.guardian_id, s.first_given_name, s.second_given_name,
		       s.first_family_name, s.second_family_name, s.age, s.nuip, s.status
		`+userFrom+`
		LEFT JOIN students s ON s.guardian_id = u.id
		WHERE u.id = $1 AND u.kind = $2
		ORDER BY s.id
	`, id, string(directory.KindGuardian))
	if err != nil {
		return nil, nil, oops.Code("GUARDIAN_GET_FAILED").
			With("operation", "get guardian with students").
			With("id", id).
			Wrap(err)
	}
	defer rows.Close()

	var rec *directory.UserRecord
	var students []directory.Student
	for rows.Next() {
		var row directory.UserRecord
		var tokenID *int64
		var tokenUsername, tokenSecret *string
		var roleID *int64
		var roleName *string
		var studentID, guardianID *int64
		var sFirstGiven, sSecondGiven, sFirstFamily, sSecondFamily *string
		var sAge *int
		var sNUIP, sStatus *string

		err := rows.Scan(
			&row.ID, &row.Kind, &row.FirstGivenName, &row.SecondGivenName,
			&row.FirstFamilyName, &row.SecondFamilyName, &row.Age, &row.Email, &row.Phone,
			&tokenID, &tokenUsername, &tokenSecret, &roleID, &roleName,
			&studentID, &guardianID, &sFirstGiven, &sSecondGiven,
			&sFirstFamily, &sSecondFamily, &sAge, &sNUIP, &sStatus,
		)
		if err != nil {
			return nil, nil, oops.Code("GUARDIAN_GET_FAILED").
				With("operation", "scan guardian row").
				With("id", id).
				Wrap(err)
		}

		if rec == nil {
			if tokenID != nil {
				row.Token = &directory.AccessToken{
					ID:       *tokenID,
					Username: *tokenUsername,
					Secret:   *tokenSecret,
					Role:     directory.Role{ID: *roleID, Name: *roleName},
				}
			}
			rec = &row
		}

		if studentID != nil {
			students = append(students, directory.Student{
				ID:               *studentID,
				GuardianID:       *guardianID,
				FirstGivenName:   *sFirstGiven,
				SecondGivenName:  *sSecondGiven,
				FirstFamilyName:  *sFirstFamily,
				SecondFamilyName: *sSecondFamily,
				Age:              *sAge,
				NUIP:             *sNUIP,
				Status:           directory.EnrollmentStatus(*sStatus),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, oops.Code("GUARDIAN_GET_FAILED").
			With("operation", "iterate guardian rows").
			With("id", id).
			Wrap(err)
	}
	if rec == nil {
		return nil, nil, oops.Code("GUARDIAN_NOT_FOUND").
			With("id", id).
			Wrap(directory.ErrNotFound)
	}
	return rec, students, nil
}
