// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

// Package postgres persists the player aggregate in PostgreSQL: snapshot
// fetches feeding the load pipeline, the transactional save pipeline, and
// the simple lookup accessors around them.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier abstracts query execution over *pgxpool.Pool and pgx.Tx so the
// same repository methods run inside or outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the pool surface the repositories need. *pgxpool.Pool satisfies it,
// as does pgxmock.PgxPoolIface in tests.
type DB interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// txKey carries the active pgx.Tx through context during a save run.
type txKey struct{}

// q returns the transaction stored in ctx, or the pool when none is active.
func q(ctx context.Context, db DB) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}
