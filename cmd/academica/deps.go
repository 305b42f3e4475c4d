// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/academica/academica/internal/auth"
	"github.com/academica/academica/internal/config"
	"github.com/academica/academica/internal/directory"
	dirpg "github.com/academica/academica/internal/directory/postgres"
	"github.com/academica/academica/internal/mail"
	"github.com/academica/academica/internal/store"
)

// loadConfig resolves configuration from the --config file, the command's
// flags, and the environment, and requires a database URL.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Database.URL == "" {
		return config.Config{}, oops.Code("CONFIG_INVALID").
			Errorf("database URL is required (set database.url, --database-url, or DATABASE_URL)")
	}
	return cfg, nil
}

// services bundles the wired application services behind a single pool.
type services struct {
	pool      *pgxpool.Pool
	directory *directory.Service
	auth      *auth.Service
	audit     *store.AuditLog
}

// dial connects to the database and wires the repositories, the provisioning
// service, and the authentication service. The caller owns Close.
func dial(ctx context.Context, cfg config.Config) (*services, error) {
	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	roles := dirpg.NewRoleRepository(pool)
	users := dirpg.NewUserRepository(pool)
	tokens := dirpg.NewTokenRepository(pool)
	students := dirpg.NewStudentRepository(pool)
	tx := dirpg.NewTransactor(pool)

	mapper, err := directory.NewMapper(users)
	if err != nil {
		pool.Close()
		return nil, err
	}

	auditLog := store.NewAuditLog(pool)
	opts := []directory.Option{directory.WithAudit(auditLog)}

	if cfg.SMTP.Host != "" {
		mailer, mailErr := mail.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		if mailErr != nil {
			pool.Close()
			return nil, mailErr
		}
		opts = append(opts, directory.WithMailer(mailer))
	}

	dirSvc, err := directory.NewService(roles, users, tokens, students, tx, mapper, opts...)
	if err != nil {
		pool.Close()
		return nil, err
	}

	authSvc, err := auth.NewService(dirpg.NewCredentialStore(tokens, users), mapper)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &services{
		pool:      pool,
		directory: dirSvc,
		auth:      authSvc,
		audit:     auditLog,
	}, nil
}

// Close releases the underlying connection pool.
func (s *services) Close() {
	s.pool.Close()
}
