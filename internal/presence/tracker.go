// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

// Package presence tracks which player ids are currently connected. The set
// is the one piece of shared mutable cross-session state in the persistence
// core; the matching players_online rows exist so "who is online" stays
// queryable without scanning sessions, and are best-effort after an unclean
// shutdown.
package presence

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// DB is the store surface the tracker needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Tracker is a process-wide deduplicated set of online player ids. The
// presence check and mutation are one atomic step under the mutex, so
// concurrent connects for the same id never double-count.
type Tracker struct {
	mu     sync.Mutex
	online map[uint32]struct{}
	db     DB
	log    *slog.Logger
}

// NewTracker creates a presence tracker.
func NewTracker(db DB, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		online: make(map[uint32]struct{}),
		db:     db,
		log:    log,
	}
}

// MarkOnline records the player as connected. A non-positive id or an
// already-present id is a no-op, including for the gauge. A stale
// players_online row left by an unclean shutdown is tolerated.
func (t *Tracker) MarkOnline(ctx context.Context, id uint32) error {
	if id == 0 {
		return nil
	}

	t.mu.Lock()
	if _, present := t.online[id]; present {
		t.mu.Unlock()
		return nil
	}
	t.online[id] = struct{}{}
	PlayersOnline.Inc()
	t.mu.Unlock()

	if _, err := t.db.Exec(ctx, `INSERT INTO players_online (player_id) VALUES ($1)`, id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			t.log.Warn("stale players_online row", "player_id", id)
			return nil
		}
		t.log.Error("players_online insert failed", "player_id", id, "error", err)
		return oops.Code("PRESENCE_INSERT_FAILED").With("player_id", id).Wrap(err)
	}
	return nil
}

// MarkOffline removes the player from presence. An absent id is a full
// no-op: the gauge only ever moves for ids that were actually present.
func (t *Tracker) MarkOffline(ctx context.Context, id uint32) error {
	t.mu.Lock()
	if _, present := t.online[id]; !present {
		t.mu.Unlock()
		return nil
	}
	delete(t.online, id)
	PlayersOnline.Dec()
	t.mu.Unlock()

	if _, err := t.db.Exec(ctx, `DELETE FROM players_online WHERE player_id = $1`, id); err != nil {
		t.log.Error("players_online delete failed", "player_id", id, "error", err)
		return oops.Code("PRESENCE_DELETE_FAILED").With("player_id", id).Wrap(err)
	}
	return nil
}

// Reset clears all presence state, in memory and in the store. Called at
// startup so rows left by an unclean shutdown don't report ghosts.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	PlayersOnline.Sub(float64(len(t.online)))
	t.online = make(map[uint32]struct{})
	t.mu.Unlock()

	if _, err := t.db.Exec(ctx, `DELETE FROM players_online`); err != nil {
		t.log.Error("players_online reset failed", "error", err)
		return oops.Code("PRESENCE_RESET_FAILED").Wrap(err)
	}
	return nil
}

// IsOnline reports whether the player id is currently present.
func (t *Tracker) IsOnline(id uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, present := t.online[id]
	return present
}

// Count returns the number of present player ids.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.online)
}
