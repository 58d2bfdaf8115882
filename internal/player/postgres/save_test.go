// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskhaven/duskhaven/internal/player"
	"github.com/duskhaven/duskhaven/pkg/errutil"
)

// savablePlayer returns a minimal aggregate that exercises every sub-saver.
func savablePlayer() *player.Player {
	return &player.Player{
		ID:    4077,
		Name:  "Morgana",
		Level: 82,
	}
}

// expectBaseSave queues the base saver: the primary row update plus the
// skills delete-then-reinsert.
func expectBaseSave(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec(`UPDATE players SET`).
		WithArgs(anyArgs(32)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM player_skills`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	for range player.SkillCount {
		mock.ExpectExec(`INSERT INTO player_skills`).
			WithArgs(anyArgs(4)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
}

// expectFullSave queues every expectation of a successful save of an
// otherwise empty aggregate, from begin to commit.
func expectFullSave(mock pgxmock.PgxPoolIface) {
	mock.ExpectBegin()
	expectBaseSave(mock)
	for _, table := range []string{
		"player_stash", "player_spells", "player_kills",
	} {
		mock.ExpectExec(`DELETE FROM ` + table).
			WithArgs(anyArgs(1)...).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(`DELETE FROM player_charms`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO player_charms`).
		WithArgs(anyArgs(5)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, table := range []string{
		"player_items", "player_depotitems", "player_rewards",
		"player_inboxitems", "player_prey", "player_taskhunt",
		"forge_history",
	} {
		mock.ExpectExec(`DELETE FROM ` + table).
			WithArgs(anyArgs(1)...).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(`DELETE FROM player_bosstiary`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO player_bosstiary`).
		WithArgs(anyArgs(6)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM player_wheeldata`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM player_storage`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()
}

// anyArgs returns n placeholder matchers for positions a test does not pin.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestSave_CommitsWhenAllSaversSucceed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := savablePlayer()
	expectFullSave(mock)

	repo := NewPlayerRepository(mock, nil)
	require.NoError(t, repo.Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_RollsBackOnFacetFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := savablePlayer()

	mock.ExpectBegin()
	expectBaseSave(mock)
	mock.ExpectExec(`DELETE FROM player_stash`).
		WithArgs(anyArgs(1)...).
		WillReturnError(errors.New("relation gone"))
	mock.ExpectRollback()

	repo := NewPlayerRepository(mock, nil)
	err = repo.Save(context.Background(), p)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "PLAYER_SAVE_FAILED")
	errutil.AssertFacet(t, err, "stash")
	errutil.AssertErrorContext(t, err, "player", "Morgana")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_BaseRowCarriesIdentityColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := savablePlayer()
	p.GroupID = 6
	p.Sex = 1
	p.Vocation = 4

	mock.ExpectBegin()
	// Group, sex, and vocation are loaded with the base row; a save that
	// drops them would silently reset the character's identity.
	mock.ExpectExec(`UPDATE players SET\s+group_id = \$2, sex = \$3, vocation = \$4`).
		WithArgs(append([]any{p.ID, uint16(6), uint8(1), uint8(4)}, anyArgs(28)...)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM player_skills`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	for range player.SkillCount {
		mock.ExpectExec(`INSERT INTO player_skills`).
			WithArgs(anyArgs(4)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	for _, table := range []string{
		"player_stash", "player_spells", "player_kills",
	} {
		mock.ExpectExec(`DELETE FROM ` + table).
			WithArgs(anyArgs(1)...).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(`DELETE FROM player_charms`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO player_charms`).
		WithArgs(anyArgs(5)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, table := range []string{
		"player_items", "player_depotitems", "player_rewards",
		"player_inboxitems", "player_prey", "player_taskhunt",
		"forge_history",
	} {
		mock.ExpectExec(`DELETE FROM ` + table).
			WithArgs(anyArgs(1)...).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(`DELETE FROM player_bosstiary`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO player_bosstiary`).
		WithArgs(anyArgs(6)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM player_wheeldata`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM player_storage`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	repo := NewPlayerRepository(mock, nil)
	require.NoError(t, repo.Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_UnknownPlayerRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := savablePlayer()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE players SET`).
		WithArgs(anyArgs(32)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	repo := NewPlayerRepository(mock, nil)
	err = repo.Save(context.Background(), p)
	require.Error(t, err)
	require.ErrorIs(t, err, player.ErrNotFound)
	errutil.AssertFacet(t, err, "base")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_NilPlayer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPlayerRepository(mock, nil)
	err = repo.Save(context.Background(), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "PLAYER_SAVE_FAILED")
	assert.NoError(t, mock.ExpectationsWereMet(), "no store calls for a nil player")
}

func TestSave_StorageWrittenInKeyOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := savablePlayer()
	p.Storage = map[uint32]int32{30016: 4, 30015: 1}

	mock.ExpectBegin()
	expectBaseSave(mock)
	for _, table := range []string{
		"player_stash", "player_spells", "player_kills",
	} {
		mock.ExpectExec(`DELETE FROM ` + table).
			WithArgs(anyArgs(1)...).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(`DELETE FROM player_charms`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO player_charms`).
		WithArgs(anyArgs(5)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	for _, table := range []string{
		"player_items", "player_depotitems", "player_rewards",
		"player_inboxitems", "player_prey", "player_taskhunt",
		"forge_history",
	} {
		mock.ExpectExec(`DELETE FROM ` + table).
			WithArgs(anyArgs(1)...).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(`DELETE FROM player_bosstiary`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO player_bosstiary`).
		WithArgs(anyArgs(6)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM player_wheeldata`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM player_storage`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	// Map iteration is randomized; the saver must still insert keys sorted.
	mock.ExpectExec(`INSERT INTO player_storage`).
		WithArgs(p.ID, uint32(30015), int32(1)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO player_storage`).
		WithArgs(p.ID, uint32(30016), int32(4)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewPlayerRepository(mock, nil)
	require.NoError(t, repo.Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_InventoryRowsFlattenedWithSerials(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	p := savablePlayer()
	p.Inventory = []*player.Item{
		{TypeID: 1988, SlotID: 3, Children: []*player.Item{
			{TypeID: 2160, Count: 50},
		}},
	}

	mock.ExpectBegin()
	expectBaseSave(mock)
	for _, table := range []string{
		"player_stash", "player_spells", "player_kills",
	} {
		mock.ExpectExec(`DELETE FROM ` + table).
			WithArgs(anyArgs(1)...).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(`DELETE FROM player_charms`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO player_charms`).
		WithArgs(anyArgs(5)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectExec(`DELETE FROM player_items`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO player_items`).
		WithArgs(p.ID, int32(101), int32(3), uint16(1988), int32(0), []byte(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO player_items`).
		WithArgs(p.ID, int32(102), int32(101), uint16(2160), int32(50), []byte(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	for _, table := range []string{
		"player_depotitems", "player_rewards",
		"player_inboxitems", "player_prey", "player_taskhunt",
		"forge_history",
	} {
		mock.ExpectExec(`DELETE FROM ` + table).
			WithArgs(anyArgs(1)...).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectExec(`DELETE FROM player_bosstiary`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO player_bosstiary`).
		WithArgs(anyArgs(6)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM player_wheeldata`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM player_storage`).
		WithArgs(anyArgs(1)...).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	repo := NewPlayerRepository(mock, nil)
	require.NoError(t, repo.Save(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}
