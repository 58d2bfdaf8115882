// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"
)

// FlagSpecialVIP marks groups whose members appear on VIP lists regardless
// of online state.
const FlagSpecialVIP uint64 = 1 << 21

// GroupLookup resolves group capabilities. Only the special-VIP capability
// is needed by this package; everything else about groups is out of scope.
type GroupLookup interface {
	SpecialVIP(ctx context.Context, groupID uint16) (bool, error)
}

// GroupRepository implements GroupLookup against the groups table.
type GroupRepository struct {
	db DB
}

// NewGroupRepository creates a PostgreSQL group repository.
func NewGroupRepository(db DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// SpecialVIP reports whether the group carries the special-VIP flag.
// An unknown group has no capabilities.
func (r *GroupRepository) SpecialVIP(ctx context.Context, groupID uint16) (bool, error) {
	var flags uint64
	err := r.db.QueryRow(ctx, `SELECT flags FROM groups WHERE id = $1`, groupID).Scan(&flags)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, oops.Code("GROUP_LOOKUP_FAILED").With("group_id", groupID).Wrap(err)
	}
	return flags&FlagSpecialVIP != 0, nil
}

// Compile-time interface check.
var _ GroupLookup = (*GroupRepository)(nil)
