// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

// auditConfig holds configuration for the audit command.
type auditConfig struct {
	limit   int
	timeout time.Duration
}

// NewAuditCmd creates the audit subcommand.
func NewAuditCmd() *cobra.Command {
	cfg := &auditConfig{}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent audit events",
		Long:  `List the most recent audit events, newest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, args, cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.limit, "limit", 50, "maximum number of events to list")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations")

	return cmd
}

func runAudit(cmd *cobra.Command, _ []string, cfg *auditConfig) error {
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

	events, err := svc.audit.Recent(ctx, cfg.limit)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		cmd.Println("No audit events recorded")
		return nil
	}

	for _, ev := range events {
		detail := ""
		if len(ev.Detail) > 0 {
			raw, marshalErr := json.Marshal(ev.Detail)
			if marshalErr == nil {
				detail = " " + string(raw)
			}
		}
		cmd.Printf("%s %s %s %s%s\n",
			ev.CreatedAt.Format(time.RFC3339), ev.ID, ev.Type, ev.Subject, detail)
	}
	return nil
}
