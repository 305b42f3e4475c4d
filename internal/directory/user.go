// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package directory

import "strings"

// Kind identifies the concrete user variant. Values double as the stored
// discriminator, so they are stable and lowercase.
type Kind string

// Known user variants.
const (
	KindTeacher       Kind = "profesor"
	KindDirector      Kind = "directivo"
	KindAdministrator Kind = "administrador"
	KindGuardian      Kind = "acudiente"
)

// Valid returns true for one of the four known variants.
func (k Kind) Valid() bool {
	switch k {
	case KindTeacher, KindDirector, KindAdministrator, KindGuardian:
		return true
	}
	return false
}

// Role is a named permission class. Roles are reference data: the core
// binds tokens to existing roles but never invents new ones.
type Role struct {
	ID   int64
	Name string
}

// AccessToken is the credential-bearing record distinct from the user it
// authorizes. A user owns at most one token; they are created together.
type AccessToken struct {
	ID       int64
	Username string
	Secret   string
	Role     Role
}

// EnrollmentStatus is a student's enrollment state.
type EnrollmentStatus string

// Enrollment states.
const (
	EnrollmentPending  EnrollmentStatus = "pendiente"
	EnrollmentApproved EnrollmentStatus = "aprobada"
	EnrollmentRejected EnrollmentStatus = "rechazada"
)

// Student is an academic record owned referentially by a guardian. The core
// reads students when mapping guardians; creating them is enrollment's job.
type Student struct {
	ID               int64
	GuardianID       int64
	FirstGivenName   string
	SecondGivenName  string
	FirstFamilyName  string
	SecondFamilyName string
	Age              int
	NUIP             string
	Status           EnrollmentStatus
}

// User is the typed domain object for any of the four variants.
// Students is populated only for guardians mapped through the eager path.
type User struct {
	ID               int64
	Kind             Kind
	FirstGivenName   string
	SecondGivenName  string
	FirstFamilyName  string
	SecondFamilyName string
	Age              int
	Email            string
	Phone            string
	Token            *AccessToken
	Students         []Student
}

// FullName joins the non-empty name parts with single spaces.
func (u *User) FullName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{u.FirstGivenName, u.SecondGivenName, u.FirstFamilyName, u.SecondFamilyName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// UserRecord is the stored shape of a user row before kind dispatch.
// Kind is the raw discriminator as persisted; the Mapper validates it.
// Email and Phone are nil when the column is NULL.
type UserRecord struct {
	ID               int64
	Kind             string
	FirstGivenName   string
	SecondGivenName  string
	FirstFamilyName  string
	SecondFamilyName string
	Age              int
	Email            *string
	Phone            *string
	Token            *AccessToken
}
