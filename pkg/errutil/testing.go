// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode fails the test unless err is an oops error carrying the
// given code. The full error is included in the failure message so a
// mismatched code can be traced without re-running under a debugger.
func AssertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.Truef(t, ok, "want oops error with code %q, got %T: %v", code, err, err)
	assert.Equalf(t, code, oopsErr.Code(), "error: %v", err)
}

// AssertErrorContext fails the test unless err is an oops error carrying
// the given context entry.
func AssertErrorContext(t *testing.T, err error, key string, value any) {
	t.Helper()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.Truef(t, ok, "want oops error with context %q=%v, got %T: %v", key, value, err, err)
	ctx := oopsErr.Context()
	require.Containsf(t, ctx, key, "error context: %v", ctx)
	assert.Equal(t, value, ctx[key])
}

// AssertFacet fails the test unless err names the given pipeline facet.
// Load and save errors tag the sub-loader or sub-saver that failed under
// the "facet" context key; tests use this to pin down which stage broke.
func AssertFacet(t *testing.T, err error, facet string) {
	t.Helper()
	AssertErrorContext(t, err, "facet", facet)
}
