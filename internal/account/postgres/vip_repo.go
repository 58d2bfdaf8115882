// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/duskhaven/duskhaven/internal/account"
)

// VIPRepository implements account.VIPRepository using PostgreSQL.
//
// The viplist carries no uniqueness constraint on (account, player):
// concurrent adds can produce duplicate rows, and edits apply to all of
// them. Known gap, kept deliberately.
type VIPRepository struct {
	db DB
}

// NewVIPRepository creates a PostgreSQL VIP repository.
func NewVIPRepository(db DB) *VIPRepository {
	return &VIPRepository{db: db}
}

// Entries returns the account's VIP list with the watched players' names.
func (r *VIPRepository) Entries(ctx context.Context, accountID uint32) ([]account.VIPEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT v.account_id, v.player_id, p.name, v.description, v.icon, v.notify
		FROM account_viplist v
		JOIN players p ON p.id = v.player_id
		WHERE v.account_id = $1
		ORDER BY p.name
	`, accountID)
	if err != nil {
		return nil, oops.Code("VIP_QUERY_FAILED").With("account_id", accountID).Wrap(err)
	}
	defer rows.Close()

	entries := make([]account.VIPEntry, 0)
	for rows.Next() {
		var entry account.VIPEntry
		if err := rows.Scan(&entry.AccountID, &entry.PlayerID, &entry.Name,
			&entry.Description, &entry.Icon, &entry.Notify); err != nil {
			return nil, oops.Code("VIP_SCAN_FAILED").With("account_id", accountID).Wrap(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("VIP_ITERATE_FAILED").With("account_id", accountID).Wrap(err)
	}
	return entries, nil
}

// Add inserts a VIP entry. A missing watched player surfaces as
// account.ErrNotFound via the foreign key.
func (r *VIPRepository) Add(ctx context.Context, entry account.VIPEntry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO account_viplist (account_id, player_id, description, icon, notify)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.AccountID, entry.PlayerID, entry.Description, entry.Icon, entry.Notify)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return oops.Code("VIP_PLAYER_NOT_FOUND").
				With("player_id", entry.PlayerID).
				Wrap(account.ErrNotFound)
		}
		return oops.Code("VIP_ADD_FAILED").
			With("account_id", entry.AccountID).
			With("player_id", entry.PlayerID).
			Wrap(err)
	}
	return nil
}

// Edit updates the description, icon and notify flag of an entry.
func (r *VIPRepository) Edit(ctx context.Context, entry account.VIPEntry) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE account_viplist SET description = $3, icon = $4, notify = $5
		WHERE account_id = $1 AND player_id = $2
	`, entry.AccountID, entry.PlayerID, entry.Description, entry.Icon, entry.Notify)
	if err != nil {
		return oops.Code("VIP_EDIT_FAILED").
			With("account_id", entry.AccountID).
			With("player_id", entry.PlayerID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("VIP_ENTRY_NOT_FOUND").
			With("account_id", entry.AccountID).
			With("player_id", entry.PlayerID).
			Wrap(account.ErrNotFound)
	}
	return nil
}

// Remove deletes an entry (all duplicate rows included).
func (r *VIPRepository) Remove(ctx context.Context, accountID, playerID uint32) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM account_viplist WHERE account_id = $1 AND player_id = $2
	`, accountID, playerID)
	if err != nil {
		return oops.Code("VIP_REMOVE_FAILED").
			With("account_id", accountID).
			With("player_id", playerID).
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ account.VIPRepository = (*VIPRepository)(nil)
