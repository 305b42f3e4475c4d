// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package directory

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// ParseKind validates a stored discriminator. An unknown value wraps
// ErrUnknownKind so callers can distinguish the integrity failure from a
// missing row.
func ParseKind(raw string) (Kind, error) {
	k := Kind(raw)
	if !k.Valid() {
		return "", oops.Code("USER_KIND_UNKNOWN").
			With("kind", raw).
			Wrap(ErrUnknownKind)
	}
	return k, nil
}

// GuardianLoader is the eager-read dependency of the guardian resolver.
type GuardianLoader interface {
	GetGuardianWithStudents(ctx context.Context, id int64) (*UserRecord, []Student, error)
}

// relatedResolver loads variant-specific related data and produces the
// typed user through the complete mapping entry point.
type relatedResolver func(ctx context.Context, rec *UserRecord) (*User, error)

// Mapper converts stored user records to typed domain users. Dispatch is a
// closed match over Kind. Variants that carry related data register a
// resolver here; adding a variant with related data means registering a
// resolver, not touching the dispatch.
type Mapper struct {
	resolvers map[Kind]relatedResolver
}

// NewMapper creates a Mapper. Guardians resolve their student collection
// through guardians; teachers map through the complete entry point with no
// stored related collections today.
func NewMapper(guardians GuardianLoader) (*Mapper, error) {
	if guardians == nil {
		return nil, oops.Errorf("guardian loader is required")
	}
	m := &Mapper{}
	m.resolvers = map[Kind]relatedResolver{
		KindGuardian: func(ctx context.Context, rec *UserRecord) (*User, error) {
			full, students, err := guardians.GetGuardianWithStudents(ctx, rec.ID)
			if err != nil {
				// The default read path found the row; a missing eager row
				// degrades to the flat mapping rather than failing.
				if errors.Is(err, ErrNotFound) {
					return complete(KindGuardian, rec, nil), nil
				}
				return nil, oops.Code("USER_MAP_FAILED").
					With("operation", "load guardian students").
					With("id", rec.ID).
					Wrap(err)
			}
			return complete(KindGuardian, full, students), nil
		},
		KindTeacher: func(_ context.Context, rec *UserRecord) (*User, error) {
			return complete(KindTeacher, rec, nil), nil
		},
	}
	return m, nil
}

// ToDomain resolves a stored record to its typed domain user.
func (m *Mapper) ToDomain(ctx context.Context, rec *UserRecord) (*User, error) {
	if rec == nil {
		return nil, oops.Code("USER_MAP_FAILED").Errorf("user record is nil")
	}
	kind, err := ParseKind(rec.Kind)
	if err != nil {
		return nil, err
	}
	if resolve, ok := m.resolvers[kind]; ok {
		return resolve(ctx, rec)
	}
	return flat(kind, rec), nil
}

// flat is the shallow mapping entry point: a field-by-field copy with no
// related-data round trip. Directors and administrators always map here.
func flat(kind Kind, rec *UserRecord) *User {
	u := &User{
		ID:               rec.ID,
		Kind:             kind,
		FirstGivenName:   rec.FirstGivenName,
		SecondGivenName:  rec.SecondGivenName,
		FirstFamilyName:  rec.FirstFamilyName,
		SecondFamilyName: rec.SecondFamilyName,
		Age:              rec.Age,
		Token:            rec.Token,
	}
	if rec.Email != nil {
		u.Email = *rec.Email
	}
	if rec.Phone != nil {
		u.Phone = *rec.Phone
	}
	return u
}

// complete is the eager mapping entry point: the flat copy plus the
// variant's resolved related collection.
func complete(kind Kind, rec *UserRecord, students []Student) *User {
	u := flat(kind, rec)
	u.Students = students
	return u
}
