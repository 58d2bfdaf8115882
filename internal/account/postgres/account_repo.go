// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

// Package postgres implements the account, session and VIP repositories on
// PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/duskhaven/duskhaven/internal/account"
)

// DB is the pool surface the repositories need. *pgxpool.Pool satisfies it,
// as does pgxmock.PgxPoolIface in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements account.Repository using PostgreSQL.
type AccountRepository struct {
	db DB
}

// NewAccountRepository creates a PostgreSQL account repository.
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByDescriptor retrieves an account by its descriptor.
func (r *AccountRepository) GetByDescriptor(ctx context.Context, descriptor string) (*account.Account, error) {
	var acc account.Account
	err := r.db.QueryRow(ctx, `
		SELECT id, descriptor, password_hash, type, premium_ends_at, created_at
		FROM accounts WHERE descriptor = $1
	`, descriptor).Scan(&acc.ID, &acc.Descriptor, &acc.PasswordHash, &acc.Type,
		&acc.PremiumEndsAt, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").With("descriptor", descriptor).Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").With("descriptor", descriptor).Wrap(err)
	}
	return &acc, nil
}

// TypeByID returns the account type, defaulting to TypeNormal when the
// account is missing.
func (r *AccountRepository) TypeByID(ctx context.Context, id uint32) (account.Type, error) {
	var typ account.Type
	err := r.db.QueryRow(ctx, `SELECT type FROM accounts WHERE id = $1`, id).Scan(&typ)
	if errors.Is(err, pgx.ErrNoRows) {
		return account.TypeNormal, nil
	}
	if err != nil {
		return account.TypeNormal, oops.Code("ACCOUNT_TYPE_FAILED").With("id", id).Wrap(err)
	}
	return typ, nil
}

// Roster returns the account's characters as name -> player id, excluding
// soft-deleted characters.
func (r *AccountRepository) Roster(ctx context.Context, accountID uint32) (map[string]uint32, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, id FROM players
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY name
	`, accountID)
	if err != nil {
		return nil, oops.Code("ROSTER_QUERY_FAILED").With("account_id", accountID).Wrap(err)
	}
	defer rows.Close()

	roster := make(map[string]uint32)
	for rows.Next() {
		var (
			name string
			id   uint32
		)
		if err := rows.Scan(&name, &id); err != nil {
			return nil, oops.Code("ROSTER_SCAN_FAILED").With("account_id", accountID).Wrap(err)
		}
		roster[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROSTER_ITERATE_FAILED").With("account_id", accountID).Wrap(err)
	}
	return roster, nil
}

// Compile-time interface check.
var _ account.Repository = (*AccountRepository)(nil)
