// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package directory

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a storage uniqueness constraint rejects a
// write. Repositories translate driver constraint violations into this
// sentinel so the service layer can surface them as validation failures.
var ErrDuplicate = errors.New("duplicate value")

// ErrUnknownKind is returned when a stored user row carries a discriminator
// outside the known variants. This is a data-integrity condition, not a
// user error.
var ErrUnknownKind = errors.New("unrecognized user kind")
