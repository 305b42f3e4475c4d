// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package directory

import (
	"crypto/rand"
	"math/big"

	"github.com/samber/oops"
)

// Temporary credential secrets are 8 characters drawn uniformly from this
// alphabet. Recipients are expected to change them on first login.
const (
	SecretLength   = 8
	SecretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$"
)

// GenerateSecret produces a random temporary secret. Each position is drawn
// with crypto/rand.Int, so the distribution over the alphabet is uniform.
func GenerateSecret() (string, error) {
	max := big.NewInt(int64(len(SecretAlphabet)))
	buf := make([]byte, SecretLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", oops.Code("SECRET_GENERATE_FAILED").
				With("operation", "crypto/rand.Int").
				Wrap(err)
		}
		buf[i] = SecretAlphabet[n.Int64()]
	}
	return string(buf), nil
}
