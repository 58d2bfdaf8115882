// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package account

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionTokenExpiry is how long a login session stays valid.
const SessionTokenExpiry = 24 * time.Hour

// Session is one issued login session. Only the token hash is stored; the
// plaintext token is handed to the client once and never persisted.
type Session struct {
	ID        ulid.ULID
	AccountID uint32
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewSession creates a session for an account with a fresh expiry.
func NewSession(accountID uint32, tokenHash string) (*Session, error) {
	if accountID == 0 {
		return nil, oops.Code("SESSION_INVALID_ACCOUNT").Errorf("account id cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_EMPTY_TOKEN").Errorf("token hash cannot be empty")
	}
	now := time.Now()
	return &Session{
		ID:        ulid.Make(),
		AccountID: accountID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(SessionTokenExpiry),
		CreatedAt: now,
	}, nil
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// GenerateSessionToken returns a fresh plaintext token and its storage hash.
// The token combines a ULID with random entropy so it is both sortable in
// logs and unguessable.
func GenerateSessionToken() (token, tokenHash string, err error) {
	entropy := make([]byte, 16)
	if _, err := rand.Read(entropy); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_FAILED").Wrap(err)
	}
	token = ulid.Make().String() + hex.EncodeToString(entropy)
	return token, HashSessionToken(token), nil
}

// HashSessionToken hashes a plaintext token for storage and lookup.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
