// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

// Package player defines the player aggregate and the load pipeline that
// populates it from a point-in-time store snapshot. The aggregate is composed
// of independent facets (experience, skills, inventory, depot, prey, ...);
// each facet has exactly one sub-loader and, on the persistence side, one
// sub-saver. The aggregate is exclusively owned by the session performing a
// load or save; the package does not lock it internally.
package player
