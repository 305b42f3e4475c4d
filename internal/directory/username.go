// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package directory

import (
	"strings"

	"github.com/samber/oops"
)

// diacriticReplacer folds the Spanish diacritics that occur in name fields.
// Input is lowercased before replacement, so only lowercase forms appear.
var diacriticReplacer = strings.NewReplacer(
	"á", "a",
	"é", "e",
	"í", "i",
	"ó", "o",
	"ú", "u",
	"ü", "u",
	"ñ", "n",
)

// DeriveUsername builds a login username from name fields: the initial of
// the first given name, the initial of the second given name when present,
// the full first family name, and the initial of the second family name
// when present. The result is lowercased, diacritics are folded, and
// anything outside [a-z0-9] is dropped.
//
// The first given name and first family name are mandatory; without them
// there is nothing to derive from.
func DeriveUsername(firstGiven, secondGiven, firstFamily, secondFamily string) (string, error) {
	firstGiven = strings.TrimSpace(firstGiven)
	firstFamily = strings.TrimSpace(firstFamily)
	if firstGiven == "" || firstFamily == "" {
		return "", oops.Code("USER_NAME_REQUIRED").
			Errorf("first given name and first family name are required to derive a username")
	}

	var b strings.Builder
	b.WriteString(initial(firstGiven))
	if s := strings.TrimSpace(secondGiven); s != "" {
		b.WriteString(initial(s))
	}
	b.WriteString(firstFamily)
	if s := strings.TrimSpace(secondFamily); s != "" {
		b.WriteString(initial(s))
	}

	username := normalizeUsername(b.String())
	if username == "" {
		return "", oops.Code("USER_NAME_REQUIRED").
			Errorf("name fields contain no usable characters for a username")
	}
	return username, nil
}

// initial returns the first rune of s as a string.
func initial(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// normalizeUsername lowercases, folds diacritics, and strips every
// character outside [a-z0-9].
func normalizeUsername(s string) string {
	s = diacriticReplacer.Replace(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
