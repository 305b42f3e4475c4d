// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academica/academica/pkg/errutil"
)

func TestNewCreateUserCmd_Flags(t *testing.T) {
	cmd := NewCreateUserCmd()

	for _, flag := range []string{"kind", "role", "first-name", "middle-name", "last-name", "second-last-name", "age", "email", "phone", "timeout"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %q", flag)
	}
}

func TestRunCreateUser_UnknownKind(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&bytes.Buffer{})

	cfg := &createUserConfig{
		kind:      "bedel",
		firstName: "Ana",
		lastName:  "Rojas",
		timeout:   30 * time.Second,
	}
	err := runCreateUser(cmd, nil, cfg)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "USER_KIND_UNKNOWN")
}

func TestRunCreateUser_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	configFile = ""

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&bytes.Buffer{})

	cfg := &createUserConfig{
		kind:      "profesor",
		firstName: "Ana",
		lastName:  "Rojas",
		timeout:   30 * time.Second,
	}
	err := runCreateUser(cmd, nil, cfg)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestNewCreateUserCmd_RequiredFlags(t *testing.T) {
	cmd := NewCreateUserCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--first-name", "Ana"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}
