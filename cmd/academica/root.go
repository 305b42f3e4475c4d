// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Academica CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "academica",
		Short: "Academica - school administration backend",
		Long: `Academica is a school administration backend that provisions staff
and guardian accounts with derived usernames, verifies credentials with a
shared lockout, and serves the directory over HTTP.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	cmd.AddCommand(NewCreateUserCmd())
	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewAuditCmd())

	return cmd
}
