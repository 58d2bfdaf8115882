// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

// Package account provides the authentication gate that guards player
// loading: account lookup by descriptor, credential or session verification,
// and roster resolution of the requested character name.
package account
