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

func TestNewLoginCmd(t *testing.T) {
	cmd := NewLoginCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "login <username>", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("secret"))
	assert.NotNil(t, cmd.Flags().Lookup("timeout"))
}

func TestNewLoginCmd_RequiresUsernameArg(t *testing.T) {
	cmd := NewLoginCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestRunLogin_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	configFile = ""

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(&bytes.Buffer{})

	cfg := &loginConfig{secret: "Ab3!xY9@", timeout: 30 * time.Second}
	err := runLogin(cmd, []string{"mperezg"}, cfg)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestRunLogin_ReadsSecretFromStdin(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	configFile = ""

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetIn(bytes.NewBufferString("Ab3!xY9@\n"))

	cfg := &loginConfig{timeout: 30 * time.Second}
	err := runLogin(cmd, []string{"mperezg"}, cfg)

	// Config loading fails after the secret prompt, which shows the prompt
	// was written and the secret consumed without error.
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	assert.Contains(t, out.String(), "Secret:")
}
