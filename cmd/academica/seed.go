// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/academica/academica/internal/directory"
	dirpg "github.com/academica/academica/internal/directory/postgres"
	"github.com/academica/academica/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedRoles are the account roles every installation starts with.
var seedRoles = []string{
	string(directory.KindTeacher),
	string(directory.KindDirector),
	string(directory.KindAdministrator),
	string(directory.KindGuardian),
}

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with the initial roles",
		Long: `Creates the standard account roles (profesor, directivo, administrador,
acudiente). This command is idempotent - it will not create duplicates if
run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	appCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Add timeout to prevent indefinite hangs
	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, appCfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	roles := dirpg.NewRoleRepository(pool)

	created := 0
	for _, name := range seedRoles {
		role := &directory.Role{Name: name}
		if err := roles.Create(ctx, role); err != nil {
			if errors.Is(err, directory.ErrDuplicate) {
				slog.Info("role already exists, skipping", "role", name)
				continue
			}
			return err
		}
		cmd.Printf("Created role: %s\n", name)
		created++
	}

	if created == 0 {
		cmd.Println("All roles already present, nothing to do")
	} else {
		cmd.Println("Seeding complete!")
	}
	return nil
}
