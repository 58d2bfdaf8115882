// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// AuthMode selects how credentials are verified.
type AuthMode string

// Authentication modes.
const (
	// AuthModePassword verifies the supplied password against the stored hash.
	AuthModePassword AuthMode = "password"
	// AuthModeSession requires a valid unexpired session on the account and
	// ignores the supplied password entirely.
	AuthModeSession AuthMode = "session"
)

// Gate validates account credentials and resolves which character under the
// account may proceed to loading. It performs no writes.
type Gate struct {
	accounts Repository
	sessions SessionRepository
	hasher   PasswordHasher
	mode     AuthMode
	log      *slog.Logger
}

// NewGate creates an authentication gate.
func NewGate(accounts Repository, sessions SessionRepository, hasher PasswordHasher, mode AuthMode, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		mode:     mode,
		log:      log,
	}
}

// Authenticate resolves an account descriptor and credential to an account
// id, verifying that characterName belongs to the account's roster. Every
// failure collapses to a denial at the session boundary; the distinct error
// codes exist for diagnostics only and must not reach the end user.
func (g *Gate) Authenticate(ctx context.Context, descriptor, password, characterName string) (uint32, error) {
	acc, err := g.accounts.GetByDescriptor(ctx, descriptor)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			g.log.Error("account not found", "descriptor", descriptor)
			return 0, oops.Code("ACCOUNT_NOT_FOUND").With("descriptor", descriptor).Wrap(err)
		}
		g.log.Error("account load failed", "descriptor", descriptor, "error", err)
		return 0, oops.Code("ACCOUNT_LOAD_FAILED").With("descriptor", descriptor).Wrap(err)
	}

	if err := g.verify(ctx, acc, password); err != nil {
		return 0, err
	}

	// Reload: authentication may have changed account state (token
	// issuance); the roster check must run against the fresh row.
	acc, err = g.accounts.GetByDescriptor(ctx, descriptor)
	if err != nil {
		g.log.Error("account reload failed", "descriptor", descriptor, "error", err)
		return 0, oops.Code("ACCOUNT_LOAD_FAILED").With("descriptor", descriptor).Wrap(err)
	}

	roster, err := g.accounts.Roster(ctx, acc.ID)
	if err != nil {
		g.log.Error("roster load failed", "descriptor", descriptor, "error", err)
		return 0, oops.Code("ROSTER_LOAD_FAILED").With("account_id", acc.ID).Wrap(err)
	}

	if roster[characterName] == 0 {
		g.log.Error("character not found or deleted",
			"descriptor", descriptor, "character", characterName)
		return 0, oops.Code("CHARACTER_NOT_FOUND").
			With("account_id", acc.ID).
			With("character", characterName).
			Errorf("character not in roster")
	}

	return acc.ID, nil
}

// verify applies the configured authentication mode. The rejection error is
// deliberately identical for every credential failure so it cannot leak
// which factor failed.
func (g *Gate) verify(ctx context.Context, acc *Account, password string) error {
	rejected := func() error {
		g.log.Warn("authentication rejected", "account_id", acc.ID)
		return oops.Code("AUTH_REJECTED").Errorf("authentication rejected")
	}

	if g.mode == AuthModeSession {
		valid, err := g.sessions.HasValid(ctx, acc.ID)
		if err != nil {
			g.log.Error("session check failed", "account_id", acc.ID, "error", err)
			return oops.Code("AUTH_REJECTED").Wrap(err)
		}
		if !valid {
			return rejected()
		}
		return nil
	}

	match, err := g.hasher.Verify(password, acc.PasswordHash)
	if err != nil {
		g.log.Error("password verification failed", "account_id", acc.ID, "error", err)
		return oops.Code("AUTH_REJECTED").Wrap(err)
	}
	if !match {
		return rejected()
	}
	return nil
}
