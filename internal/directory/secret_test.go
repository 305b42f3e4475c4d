// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package directory_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academica/academica/internal/directory"
)

func TestGenerateSecret_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		secret, err := directory.GenerateSecret()
		require.NoError(t, err)
		assert.Len(t, secret, directory.SecretLength)
		for _, r := range secret {
			assert.Truef(t, strings.ContainsRune(directory.SecretAlphabet, r),
				"secret %q contains %q outside the alphabet", secret, r)
		}
	}
}

func TestGenerateSecret_NotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		secret, err := directory.GenerateSecret()
		require.NoError(t, err)
		seen[secret] = true
	}
	assert.Greater(t, len(seen), 1, "twenty draws should not all collide")
}

func TestSecretAlphabet_NoDuplicateSymbols(t *testing.T) {
	seen := make(map[rune]bool)
	for _, r := range directory.SecretAlphabet {
		assert.Falsef(t, seen[r], "alphabet repeats %q", r)
		seen[r] = true
	}
}
