// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package main

import (
	"bufio"
	"context"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// loginConfig holds configuration for the login command.
type loginConfig struct {
	secret  string
	timeout time.Duration
}

// NewLoginCmd creates the login subcommand.
func NewLoginCmd() *cobra.Command {
	cfg := &loginConfig{}

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Verify a username and secret against the directory",
		Long: `Verify a username and secret the same way the API login endpoint does.
The secret is read from standard input unless --secret is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.secret, "secret", "", "secret (read from stdin when omitted)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string, cfg *loginConfig) error {
	username := args[0]

	secret := cfg.secret
	if secret == "" {
		cmd.Print("Secret: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return oops.Code("AUTH_NO_MATCH").
				With("operation", "read secret from stdin").
				Wrap(err)
		}
		secret = strings.TrimRight(line, "\r\n")
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

	user, err := svc.auth.Authenticate(ctx, username, secret)
	if err != nil {
		return err
	}

	cmd.Printf("Authenticated %s (%s, id %d)\n", user.Token.Username, user.Kind, user.ID)
	cmd.Printf("Name: %s\n", user.FullName())
	if len(user.Students) > 0 {
		cmd.Println("Students:")
		for _, st := range user.Students {
			name := strings.TrimSpace(strings.Join([]string{
				st.FirstGivenName, st.SecondGivenName, st.FirstFamilyName, st.SecondFamilyName,
			}, " "))
			cmd.Printf("  %s (%s)\n", strings.Join(strings.Fields(name), " "), st.Status)
		}
	}
	return nil
}
