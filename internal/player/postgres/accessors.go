// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/duskhaven/duskhaven/internal/player"
)

// NameByID returns a player's name.
func (r *PlayerRepository) NameByID(ctx context.Context, id uint32) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `SELECT name FROM players WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", oops.Code("PLAYER_NOT_FOUND").With("id", id).Wrap(player.ErrNotFound)
	}
	if err != nil {
		return "", oops.Code("PLAYER_LOOKUP_FAILED").With("id", id).Wrap(err)
	}
	return name, nil
}

// IDByName returns a player's id.
func (r *PlayerRepository) IDByName(ctx context.Context, name string) (uint32, error) {
	var id uint32
	err := r.db.QueryRow(ctx, `SELECT id FROM players WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("PLAYER_NOT_FOUND").With("name", name).Wrap(player.ErrNotFound)
	}
	if err != nil {
		return 0, oops.Code("PLAYER_LOOKUP_FAILED").With("name", name).Wrap(err)
	}
	return id, nil
}

// NameInfo is the result of an extended name lookup.
type NameInfo struct {
	ID   uint32
	Name string
	// SpecialVIP is true when the player's group carries the special-VIP
	// capability, resolved through the group lookup.
	SpecialVIP bool
}

// IDByNameExt looks a player up by name and returns the canonical spelling,
// id, and special-VIP capability.
func (r *PlayerRepository) IDByNameExt(ctx context.Context, name string) (*NameInfo, error) {
	var (
		info    NameInfo
		groupID uint16
	)
	err := r.db.QueryRow(ctx,
		`SELECT name, id, group_id FROM players WHERE name = $1`, name).
		Scan(&info.Name, &info.ID, &groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLAYER_NOT_FOUND").With("name", name).Wrap(player.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PLAYER_LOOKUP_FAILED").With("name", name).Wrap(err)
	}

	specialVIP, err := r.groups.SpecialVIP(ctx, groupID)
	if err != nil {
		return nil, oops.Code("PLAYER_LOOKUP_FAILED").With("name", name).Wrap(err)
	}
	info.SpecialVIP = specialVIP
	return &info, nil
}

// FormatName returns the canonical spelling of a player name as stored.
func (r *PlayerRepository) FormatName(ctx context.Context, name string) (string, error) {
	var canonical string
	err := r.db.QueryRow(ctx, `SELECT name FROM players WHERE name = $1`, name).Scan(&canonical)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", oops.Code("PLAYER_NOT_FOUND").With("name", name).Wrap(player.ErrNotFound)
	}
	if err != nil {
		return "", oops.Code("PLAYER_LOOKUP_FAILED").With("name", name).Wrap(err)
	}
	return canonical, nil
}

// IncreaseBankBalance adds amount to a player's bank balance.
func (r *PlayerRepository) IncreaseBankBalance(ctx context.Context, id uint32, amount uint64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE players SET balance = balance + $2 WHERE id = $1`, id, amount)
	if err != nil {
		return oops.Code("BALANCE_UPDATE_FAILED").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("PLAYER_NOT_FOUND").With("id", id).Wrap(player.ErrNotFound)
	}
	return nil
}

// HasBiddedOnHouse reports whether the player is the highest bidder on any
// house auction.
func (r *PlayerRepository) HasBiddedOnHouse(ctx context.Context, id uint32) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM houses WHERE highest_bidder = $1)`, id).Scan(&exists)
	if err != nil {
		return false, oops.Code("HOUSE_BID_LOOKUP_FAILED").With("id", id).Wrap(err)
	}
	return exists, nil
}
