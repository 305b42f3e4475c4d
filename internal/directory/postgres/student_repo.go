// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/academica/academica/internal/directory"
)

// StudentRepository implements directory.StudentRepository using PostgreSQL.
type StudentRepository struct {
	pool poolIface
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool poolIface) *StudentRepository {
	return &StudentRepository{pool: pool}
}

var _ directory.StudentRepository = (*StudentRepository)(nil)

// HasApprovedStudents reports whether the guardian has any student in the
// approved enrollment state.
func (r *StudentRepository) HasApprovedStudents(ctx context.Context, guardianID int64) (bool, error) {
	return r.hasStudentsIn(ctx, guardianID, directory.EnrollmentApproved)
}

// HasPendingStudents reports whether the guardian has any student in the
// pending enrollment state.
func (r *StudentRepository) HasPendingStudents(ctx context.Context, guardianID int64) (bool, error) {
	return r.hasStudentsIn(ctx, guardianID, directory.EnrollmentPending)
}

func (r *StudentRepository) hasStudentsIn(ctx context.Context, guardianID int64, status directory.EnrollmentStatus) (bool, error) {
	var exists bool
	err := engine(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM students WHERE guardian_id = $1 AND status = $2
		)
	`, guardianID, string(status)).Scan(&exists)
	if err != nil {
		return false, oops.Code("STUDENT_EXISTS_FAILED").
			With("operation", "check students by status").
			With("guardian_id", guardianID).
			With("status", string(status)).
			Wrap(err)
	}
	return exists, nil
}
