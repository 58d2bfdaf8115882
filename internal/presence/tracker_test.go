// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package presence

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/duskhaven/duskhaven/pkg/errutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeDB records executed statements and serves canned errors.
type fakeDB struct {
	execs []string
	err   error
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, f.err
}

func TestTracker_MarkOnline(t *testing.T) {
	db := &fakeDB{}
	tracker := NewTracker(db, nil)
	before := testutil.ToFloat64(PlayersOnline)

	require.NoError(t, tracker.MarkOnline(context.Background(), 4077))

	assert.True(t, tracker.IsOnline(4077))
	assert.Equal(t, 1, tracker.Count())
	assert.Equal(t, before+1, testutil.ToFloat64(PlayersOnline))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "INSERT INTO players_online")
}

func TestTracker_MarkOnline_DoubleConnectCountsOnce(t *testing.T) {
	db := &fakeDB{}
	tracker := NewTracker(db, nil)
	before := testutil.ToFloat64(PlayersOnline)

	require.NoError(t, tracker.MarkOnline(context.Background(), 4077))
	require.NoError(t, tracker.MarkOnline(context.Background(), 4077))

	assert.Equal(t, 1, tracker.Count())
	assert.Equal(t, before+1, testutil.ToFloat64(PlayersOnline))
	assert.Len(t, db.execs, 1, "the second connect must not touch the store")

	require.NoError(t, tracker.MarkOffline(context.Background(), 4077))
	assert.Equal(t, before, testutil.ToFloat64(PlayersOnline))
}

func TestTracker_MarkOnline_ZeroID(t *testing.T) {
	db := &fakeDB{}
	tracker := NewTracker(db, nil)

	require.NoError(t, tracker.MarkOnline(context.Background(), 0))
	assert.Zero(t, tracker.Count())
	assert.Empty(t, db.execs)
}

func TestTracker_MarkOnline_StaleRowTolerated(t *testing.T) {
	db := &fakeDB{err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}}
	tracker := NewTracker(db, nil)
	defer func() { require.NoError(t, tracker.MarkOffline(context.Background(), 4077)) }()

	require.NoError(t, tracker.MarkOnline(context.Background(), 4077),
		"a leftover row from an unclean shutdown is not an error")
	assert.True(t, tracker.IsOnline(4077))
	db.err = nil
}

func TestTracker_MarkOnline_InsertFailure(t *testing.T) {
	db := &fakeDB{err: errors.New("connection reset")}
	tracker := NewTracker(db, nil)
	defer func() {
		db.err = nil
		require.NoError(t, tracker.MarkOffline(context.Background(), 4077))
	}()

	err := tracker.MarkOnline(context.Background(), 4077)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "PRESENCE_INSERT_FAILED")
}

func TestTracker_MarkOffline_AbsentIsNoop(t *testing.T) {
	db := &fakeDB{}
	tracker := NewTracker(db, nil)
	before := testutil.ToFloat64(PlayersOnline)

	require.NoError(t, tracker.MarkOffline(context.Background(), 4077))

	assert.Equal(t, before, testutil.ToFloat64(PlayersOnline),
		"the gauge only moves for ids that were present")
	assert.Empty(t, db.execs, "no store round trip for an absent id")
}

func TestTracker_OnlineOfflineCycle(t *testing.T) {
	db := &fakeDB{}
	tracker := NewTracker(db, nil)

	require.NoError(t, tracker.MarkOnline(context.Background(), 4077))
	require.NoError(t, tracker.MarkOffline(context.Background(), 4077))
	require.NoError(t, tracker.MarkOnline(context.Background(), 4077))
	require.NoError(t, tracker.MarkOffline(context.Background(), 4077))

	assert.False(t, tracker.IsOnline(4077))
	assert.Zero(t, tracker.Count())
	assert.Len(t, db.execs, 4)
}

func TestTracker_Reset(t *testing.T) {
	db := &fakeDB{}
	tracker := NewTracker(db, nil)
	before := testutil.ToFloat64(PlayersOnline)

	require.NoError(t, tracker.MarkOnline(context.Background(), 4077))
	require.NoError(t, tracker.MarkOnline(context.Background(), 4078))

	require.NoError(t, tracker.Reset(context.Background()))

	assert.Zero(t, tracker.Count())
	assert.False(t, tracker.IsOnline(4077))
	assert.Equal(t, before, testutil.ToFloat64(PlayersOnline))
	assert.Contains(t, db.execs[len(db.execs)-1], "DELETE FROM players_online")
}

func TestTracker_Reset_StoreFailure(t *testing.T) {
	db := &fakeDB{err: errors.New("connection reset")}
	tracker := NewTracker(db, nil)

	err := tracker.Reset(context.Background())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "PRESENCE_RESET_FAILED")
	assert.Zero(t, tracker.Count(), "in-memory state clears even when the store write fails")
}
