// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package player

import "errors"

// ErrNotFound is returned when a requested player or row does not exist.
var ErrNotFound = errors.New("not found")
