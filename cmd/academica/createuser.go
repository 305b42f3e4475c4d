// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/academica/academica/internal/directory"
)

// createUserConfig holds configuration for the create-user command.
type createUserConfig struct {
	kind       string
	role       string
	firstName  string
	middleName string
	lastName   string
	secondLast string
	age        int
	email      string
	phone      string
	timeout    time.Duration
}

// NewCreateUserCmd creates the create-user subcommand.
func NewCreateUserCmd() *cobra.Command {
	cfg := &createUserConfig{}

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Provision a new user account",
		Long: `Provision a new user account of the given kind. The username is derived
from the person's names and a temporary secret is generated; both are
printed exactly once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateUser(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.kind, "kind", "", "user kind (profesor, directivo, administrador, acudiente)")
	cmd.Flags().StringVar(&cfg.role, "role", "", "role name (defaults to the kind)")
	cmd.Flags().StringVar(&cfg.firstName, "first-name", "", "first given name (required)")
	cmd.Flags().StringVar(&cfg.middleName, "middle-name", "", "second given name")
	cmd.Flags().StringVar(&cfg.lastName, "last-name", "", "first family name (required)")
	cmd.Flags().StringVar(&cfg.secondLast, "second-last-name", "", "second family name")
	cmd.Flags().IntVar(&cfg.age, "age", 0, "age in years")
	cmd.Flags().StringVar(&cfg.email, "email", "", "email address")
	cmd.Flags().StringVar(&cfg.phone, "phone", "", "phone number")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations")

	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")

	return cmd
}

func runCreateUser(cmd *cobra.Command, _ []string, cfg *createUserConfig) error {
	kind, err := directory.ParseKind(cfg.kind)
	if err != nil {
		return err
	}
	roleName := cfg.role
	if roleName == "" {
		roleName = string(kind)
	}

	appCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	svc, err := dial(ctx, appCfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	candidate := &directory.User{
		Kind:             kind,
		FirstGivenName:   cfg.firstName,
		SecondGivenName:  cfg.middleName,
		FirstFamilyName:  cfg.lastName,
		SecondFamilyName: cfg.secondLast,
		Age:              cfg.age,
		Email:            cfg.email,
		Phone:            cfg.phone,
	}

	created, err := svc.directory.CreateUser(ctx, candidate, roleName)
	if err != nil {
		return err
	}

	cmd.Printf("Created %s: %s (id %d)\n", created.Kind, created.FullName(), created.ID)
	cmd.Printf("Username: %s\n", created.Token.Username)
	cmd.Printf("Temporary secret: %s\n", created.Token.Secret)
	cmd.Println("The secret is shown only once; store it now.")
	return nil
}
