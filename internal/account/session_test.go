// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskhaven/duskhaven/pkg/errutil"
)

func TestNewSession(t *testing.T) {
	s, err := NewSession(7, "deadbeef")
	require.NoError(t, err)

	assert.NotZero(t, s.ID)
	assert.Equal(t, uint32(7), s.AccountID)
	assert.Equal(t, "deadbeef", s.TokenHash)
	assert.WithinDuration(t, time.Now().Add(SessionTokenExpiry), s.ExpiresAt, time.Minute)
	assert.False(t, s.IsExpired())
}

func TestNewSession_Invalid(t *testing.T) {
	_, err := NewSession(0, "deadbeef")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "SESSION_INVALID_ACCOUNT")

	_, err = NewSession(7, "")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "SESSION_EMPTY_TOKEN")
}

func TestSession_IsExpired(t *testing.T) {
	s := &Session{ExpiresAt: time.Now().Add(-time.Second)}
	assert.True(t, s.IsExpired())
}

func TestGenerateSessionToken(t *testing.T) {
	token, hash, err := GenerateSessionToken()
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Equal(t, HashSessionToken(token), hash)
	assert.NotEqual(t, token, hash, "plaintext must never equal the stored hash")

	second, _, err := GenerateSessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, second)
}

func TestHashSessionToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashSessionToken("abc"), HashSessionToken("abc"))
	assert.Len(t, HashSessionToken("abc"), 64)
}
