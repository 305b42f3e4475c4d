// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package directory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/academica/academica/internal/observability"
	"github.com/academica/academica/pkg/errutil"
)

// CredentialMailer delivers generated credentials to a new user. Failures
// are logged by the service and never abort a committed provisioning.
type CredentialMailer interface {
	SendCredentials(ctx context.Context, recipient, username, secret, fullName string) error
}

// AuditRecorder appends an audit event. Best effort; errors are logged.
type AuditRecorder interface {
	Record(ctx context.Context, eventType, subject string, detail map[string]any) error
}

// Service coordinates the user-provisioning use cases.
type Service struct {
	roles    RoleRepository
	users    UserRepository
	tokens   TokenRepository
	students StudentRepository
	tx       Transactor
	mapper   *Mapper
	mailer   CredentialMailer
	audit    AuditRecorder
	logger   *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithMailer enables post-commit credential notification.
func WithMailer(m CredentialMailer) Option {
	return func(s *Service) { s.mailer = m }
}

// WithAudit enables best-effort audit events.
func WithAudit(a AuditRecorder) Option {
	return func(s *Service) { s.audit = a }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a provisioning Service.
func NewService(
	roles RoleRepository,
	users UserRepository,
	tokens TokenRepository,
	students StudentRepository,
	tx Transactor,
	mapper *Mapper,
	opts ...Option,
) (*Service, error) {
	if roles == nil {
		return nil, oops.Errorf("role repository is required")
	}
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token repository is required")
	}
	if students == nil {
		return nil, oops.Errorf("student repository is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	if mapper == nil {
		return nil, oops.Errorf("mapper is required")
	}
	s := &Service{
		roles:    roles,
		users:    users,
		tokens:   tokens,
		students: students,
		tx:       tx,
		mapper:   mapper,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateUser provisions a new user of the candidate's variant: role lookup,
// duplicate checks, username derivation, secret generation, and the
// token + user pair written in one transaction. Nothing is durably visible
// on any failure path. Credential notification and the audit event happen
// after commit and never unwind it.
func (s *Service) CreateUser(ctx context.Context, candidate *User, roleName string) (*User, error) {
	if candidate == nil {
		return nil, oops.Code("USER_INVALID").Errorf("candidate user is required")
	}
	if !candidate.Kind.Valid() {
		return nil, oops.Code("USER_INVALID").
			With("kind", string(candidate.Kind)).
			Errorf("candidate user kind is not recognized")
	}

	var created *User

	txErr := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		role, err := s.roles.GetByName(ctx, roleName)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return oops.Code("ROLE_NOT_FOUND").
					With("role", roleName).
					Errorf("role %q does not exist", roleName)
			}
			return oops.Code("USER_CREATE_FAILED").
				With("operation", "get role by name").
				Wrap(err)
		}

		if candidate.Email != "" {
			exists, err := s.users.EmailExists(ctx, candidate.Email)
			if err != nil {
				return oops.Code("USER_CREATE_FAILED").
					With("operation", "check duplicate email").
					Wrap(err)
			}
			if exists {
				return oops.Code("USER_DUPLICATE_EMAIL").
					Errorf("a user with that email already exists")
			}
		}

		if candidate.Phone != "" {
			exists, err := s.users.PhoneExists(ctx, candidate.Phone)
			if err != nil {
				return oops.Code("USER_CREATE_FAILED").
					With("operation", "check duplicate phone").
					Wrap(err)
			}
			if exists {
				return oops.Code("USER_DUPLICATE_PHONE").
					Errorf("a user with that phone number already exists")
			}
		}

		username, err := DeriveUsername(
			candidate.FirstGivenName,
			candidate.SecondGivenName,
			candidate.FirstFamilyName,
			candidate.SecondFamilyName,
		)
		if err != nil {
			return err
		}

		taken, err := s.tokens.UsernameExists(ctx, username)
		if err != nil {
			return oops.Code("USER_CREATE_FAILED").
				With("operation", "check duplicate username").
				Wrap(err)
		}
		if taken {
			return oops.Code("USER_DUPLICATE_USERNAME").
				With("username", username).
				Errorf("the username %q is already in use", username)
		}

		secret, err := GenerateSecret()
		if err != nil {
			return err
		}

		token := &AccessToken{
			Username: username,
			Secret:   secret,
			Role:     *role,
		}
		if err := s.tokens.Create(ctx, token); err != nil {
			// The unique constraint is the source of truth: a concurrent
			// provisioning that won the race surfaces here.
			if errors.Is(err, ErrDuplicate) {
				return oops.Code("USER_DUPLICATE_USERNAME").
					With("username", username).
					Errorf("the username %q is already in use", username)
			}
			return oops.Code("USER_CREATE_FAILED").
				With("operation", "insert token").
				Wrap(err)
		}

		rec := &UserRecord{
			Kind:             string(candidate.Kind),
			FirstGivenName:   candidate.FirstGivenName,
			SecondGivenName:  candidate.SecondGivenName,
			FirstFamilyName:  candidate.FirstFamilyName,
			SecondFamilyName: candidate.SecondFamilyName,
			Age:              candidate.Age,
			Email:            optional(candidate.Email),
			Phone:            optional(candidate.Phone),
			Token:            token,
		}
		if err := s.users.Create(ctx, rec); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return oops.Code("USER_DUPLICATE_EMAIL").
					Errorf("a user with that email or phone already exists")
			}
			return oops.Code("USER_CREATE_FAILED").
				With("operation", "insert user").
				Wrap(err)
		}

		out := *candidate
		out.ID = rec.ID
		out.Token = token
		created = &out
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notifyCredentials(ctx, created)

	if s.audit != nil {
		if err := s.audit.Record(ctx, "user_provisioned", created.Token.Username, map[string]any{
			"user_id": created.ID,
			"kind":    string(created.Kind),
			"role":    created.Token.Role.Name,
		}); err != nil {
			errutil.LogWarn(s.logger, "audit record failed", err)
		}
	}

	return created, nil
}

// notifyCredentials delivers the generated credentials when the user has an
// email and a mailer is configured. Fire and forget.
func (s *Service) notifyCredentials(ctx context.Context, user *User) {
	if user.Email == "" {
		return
	}
	if s.mailer == nil {
		s.logger.Info("credential notification skipped, no mailer configured",
			"username", user.Token.Username)
		return
	}
	err := s.mailer.SendCredentials(ctx, user.Email, user.Token.Username, user.Token.Secret, user.FullName())
	if err != nil {
		observability.RecordNotificationFailure()
		errutil.LogWarn(s.logger, "credential notification failed", err)
	}
}

// GetUser retrieves a user by ID and maps it to its typed variant. An
// unknown stored kind surfaces as a mapping error distinct from not found.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, oops.Code("USER_INVALID").
			With("id", id).
			Errorf("user id is not valid")
	}
	rec, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("USER_NOT_FOUND").
				With("id", id).
				Wrap(ErrNotFound)
		}
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return s.mapper.ToDomain(ctx, rec)
}

// GetOwnInfo retrieves the caller's own record. It must never be reached
// unauthenticated: a nil caller or a caller without identity is fatal.
func (s *Service) GetOwnInfo(ctx context.Context, caller *User) (*User, error) {
	if caller == nil {
		return nil, oops.Code("AUTH_REQUIRED").Errorf("caller is not authenticated")
	}
	if caller.ID <= 0 {
		return nil, oops.Code("AUTH_REQUIRED").Errorf("caller has no identity")
	}
	return s.GetUser(ctx, caller.ID)
}

// DeleteUser removes a user together with its access token in one
// transaction. A guardian with approved or pending students cannot be
// deleted while those enrollments reference it.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return oops.Code("USER_INVALID").
			With("id", id).
			Errorf("user id is not valid")
	}

	return s.tx.InTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return oops.Code("USER_NOT_FOUND").
					With("id", id).
					Wrap(ErrNotFound)
			}
			return oops.Code("USER_DELETE_FAILED").
				With("operation", "get user by id").
				Wrap(err)
		}

		kind, err := ParseKind(rec.Kind)
		if err != nil {
			return err
		}

		if kind == KindGuardian {
			approved, err := s.students.HasApprovedStudents(ctx, rec.ID)
			if err != nil {
				return oops.Code("USER_DELETE_FAILED").
					With("operation", "check approved students").
					Wrap(err)
			}
			if approved {
				return oops.Code("GUARDIAN_HAS_STUDENTS").
					Errorf("guardian has approved students and cannot be deleted")
			}
			pending, err := s.students.HasPendingStudents(ctx, rec.ID)
			if err != nil {
				return oops.Code("USER_DELETE_FAILED").
					With("operation", "check pending students").
					Wrap(err)
			}
			if pending {
				return oops.Code("GUARDIAN_HAS_STUDENTS").
					Errorf("guardian has pending students and cannot be deleted")
			}
		}

		if err := s.users.Delete(ctx, rec.ID); err != nil {
			return oops.Code("USER_DELETE_FAILED").
				With("operation", "delete user").
				Wrap(err)
		}
		if rec.Token != nil {
			if err := s.tokens.Delete(ctx, rec.Token.ID); err != nil {
				return oops.Code("USER_DELETE_FAILED").
					With("operation", "delete token").
					Wrap(err)
			}
		}
		return nil
	})
}

// optional maps an empty string to NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
