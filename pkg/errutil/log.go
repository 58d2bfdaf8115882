// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

// Package errutil bridges oops-wrapped errors and the rest of the
// toolchain: slog output on the serving side, assertion helpers on the
// testing side.
package errutil

import (
	"log/slog"
	"sort"

	"github.com/samber/oops"
)

// Attrs flattens an error into slog attributes. Oops errors contribute
// their code and every context entry as a top-level attribute, so fields
// like the failing facet or the player name stay queryable in log
// aggregation instead of being buried in one nested blob. Context keys
// are emitted in sorted order to keep output stable. Plain errors
// contribute only the error string.
func Attrs(err error) []any {
	attrs := []any{"error", err.Error()}

	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return attrs
	}
	if code := oopsErr.Code(); code != "" {
		attrs = append(attrs, "code", code)
	}

	ctx := oopsErr.Context()
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, k, ctx[k])
	}
	return attrs
}

// LogError writes err at error level with its flattened attributes.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, Attrs(err)...)
}
