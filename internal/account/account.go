// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package account

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested account or entry does not exist.
var ErrNotFound = errors.New("not found")

// Type is the account privilege tier.
type Type uint8

// Account types, lowest privilege first.
const (
	TypeNormal Type = iota + 1
	TypeTutor
	TypeSeniorTutor
	TypeGameMaster
	TypeGod
)

// Account is an authentication principal owning zero or more characters.
// Loaded fresh at each authentication attempt, never cached across calls.
type Account struct {
	ID            uint32
	Descriptor    string
	PasswordHash  string
	Type          Type
	PremiumEndsAt time.Time
	CreatedAt     time.Time
}

// VIPEntry is one watched player on an account's VIP list. Name is joined
// from the players table on read and ignored on write.
type VIPEntry struct {
	AccountID   uint32
	PlayerID    uint32
	Name        string
	Description string
	Icon        uint32
	Notify      bool
}

// Repository manages account reads. Authentication never writes accounts.
type Repository interface {
	// GetByDescriptor retrieves an account by its descriptor (email for
	// current protocols, account number for old ones).
	GetByDescriptor(ctx context.Context, descriptor string) (*Account, error)

	// TypeByID returns the account type, defaulting to TypeNormal when the
	// account is missing.
	TypeByID(ctx context.Context, id uint32) (Type, error)

	// Roster returns the account's characters as name -> player id. A zero
	// or absent entry means the character does not exist or is deleted.
	Roster(ctx context.Context, accountID uint32) (map[string]uint32, error)
}

// SessionRepository manages login session tokens.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// HasValid reports whether the account holds any unexpired session.
	HasValid(ctx context.Context, accountID uint32) (bool, error)

	// Delete removes a session by token hash.
	Delete(ctx context.Context, tokenHash string) error
}

// VIPRepository manages an account's VIP list.
type VIPRepository interface {
	Entries(ctx context.Context, accountID uint32) ([]VIPEntry, error)
	Add(ctx context.Context, entry VIPEntry) error
	Edit(ctx context.Context, entry VIPEntry) error
	Remove(ctx context.Context, accountID, playerID uint32) error
}
