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

// SessionRepository implements account.SessionRepository using PostgreSQL.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a PostgreSQL session repository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *account.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO account_sessions (id, account_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, session.ID.String(), session.AccountID, session.TokenHash,
		session.ExpiresAt, session.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("SESSION_DUPLICATE").With("account_id", session.AccountID).Wrap(err)
		}
		return oops.Code("SESSION_CREATE_FAILED").With("account_id", session.AccountID).Wrap(err)
	}
	return nil
}

// HasValid reports whether the account holds any unexpired session.
func (r *SessionRepository) HasValid(ctx context.Context, accountID uint32) (bool, error) {
	var valid bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM account_sessions
			WHERE account_id = $1 AND expires_at > NOW()
		)
	`, accountID).Scan(&valid)
	if err != nil {
		return false, oops.Code("SESSION_QUERY_FAILED").With("account_id", accountID).Wrap(err)
	}
	return valid, nil
}

// Delete removes a session by token hash.
func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM account_sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(account.ErrNotFound)
	}
	return nil
}

// Compile-time interface check.
var _ account.SessionRepository = (*SessionRepository)(nil)
