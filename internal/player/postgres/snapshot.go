// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/duskhaven/duskhaven/internal/player"
)

const playerColumns = `
	id, account_id, name, group_id, sex, vocation, town_id,
	posx, posy, posz, cap, balance, stamina, lastlogin,
	level, experience, health, healthmax, mana, manamax,
	maglevel, manaspent, soul, blessings, conditions,
	looktype, lookhead, lookbody, looklegs, lookfeet, lookaddons, lookmount,
	skull, skull_time`

// PlayerRepository implements snapshot reads, the transactional save
// pipeline, and the simple player lookups on PostgreSQL.
type PlayerRepository struct {
	db     DB
	tx     *Transactor
	groups GroupLookup
}

// NewPlayerRepository creates a PostgreSQL player repository.
func NewPlayerRepository(db DB, groups GroupLookup) *PlayerRepository {
	return &PlayerRepository{db: db, tx: NewTransactor(db), groups: groups}
}

// SnapshotByID fetches a point-in-time snapshot of the player's primary row
// and the child rows of every facet the given depth needs.
func (r *PlayerRepository) SnapshotByID(ctx context.Context, id uint32, depth player.Depth) (*player.Snapshot, error) {
	row := r.db.QueryRow(ctx,
		`SELECT`+playerColumns+` FROM players WHERE id = $1 AND deleted_at IS NULL`, id)
	return r.snapshot(ctx, row, depth)
}

// SnapshotByName is SnapshotByID keyed by the player's name.
func (r *PlayerRepository) SnapshotByName(ctx context.Context, name string, depth player.Depth) (*player.Snapshot, error) {
	row := r.db.QueryRow(ctx,
		`SELECT`+playerColumns+` FROM players WHERE name = $1 AND deleted_at IS NULL`, name)
	return r.snapshot(ctx, row, depth)
}

func (r *PlayerRepository) snapshot(ctx context.Context, row pgx.Row, depth player.Depth) (*player.Snapshot, error) {
	snap := &player.Snapshot{}
	if err := scanPlayerRow(row, &snap.Row); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, oops.Code("PLAYER_NOT_FOUND").Wrap(player.ErrNotFound)
		}
		return nil, oops.Code("PLAYER_SNAPSHOT_FAILED").With("facet", "base").Wrap(err)
	}

	type facetFetch struct {
		facet string
		fn    func(ctx context.Context, snap *player.Snapshot) error
	}
	fetches := []facetFetch{
		{"skills", r.fetchSkills},
		{"spells", r.fetchSpells},
		{"kills", r.fetchKills},
		{"guild", r.fetchGuild},
		{"stash", r.fetchStash},
		{"charms", r.fetchCharms},
		{"inventory", r.fetchInventory},
		{"store_inbox", r.fetchStoreInbox},
		{"depot", r.fetchDepot},
		{"rewards", r.fetchRewards},
		{"inbox", r.fetchInbox},
		{"storage", r.fetchStorage},
		{"vip", r.fetchVIP},
		{"prey", r.fetchPrey},
		{"task_hunting", r.fetchTaskHunting},
	}
	if depth == player.DepthFull {
		fetches = append(fetches,
			facetFetch{"forge_history", r.fetchForgeHistory},
			facetFetch{"bosstiary", r.fetchBosstiary},
			facetFetch{"wheel", r.fetchWheel},
		)
	}

	for _, f := range fetches {
		if err := f.fn(ctx, snap); err != nil {
			return nil, oops.Code("PLAYER_SNAPSHOT_FAILED").
				With("facet", f.facet).
				With("player", snap.Row.Name).
				Wrap(err)
		}
	}
	return snap, nil
}

func scanPlayerRow(row pgx.Row, out *player.Row) error {
	return row.Scan(
		&out.ID, &out.AccountID, &out.Name, &out.GroupID, &out.Sex, &out.Vocation, &out.TownID,
		&out.PosX, &out.PosY, &out.PosZ, &out.Capacity, &out.Balance, &out.Stamina, &out.LastLogin,
		&out.Level, &out.Experience, &out.Health, &out.HealthMax, &out.Mana, &out.ManaMax,
		&out.MagicLevel, &out.ManaSpent, &out.Soul, &out.Blessings, &out.Conditions,
		&out.LookType, &out.LookHead, &out.LookBody, &out.LookLegs, &out.LookFeet,
		&out.LookAddons, &out.LookMount,
		&out.SkullType, &out.SkullUntil,
	)
}

func (r *PlayerRepository) fetchSkills(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT skill_id, level, tries FROM player_skills WHERE player_id = $1 ORDER BY skill_id`,
		snap.Row.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row player.SkillRow
		if err := rows.Scan(&row.SkillID, &row.Level, &row.Tries); err != nil {
			return err
		}
		snap.Skills = append(snap.Skills, row)
	}
	return rows.Err()
}

func (r *PlayerRepository) fetchSpells(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT name FROM player_spells WHERE player_id = $1 ORDER BY name`, snap.Row.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		snap.Spells = append(snap.Spells, name)
	}
	return rows.Err()
}

func (r *PlayerRepository) fetchKills(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT target_id, time, unavenged FROM player_kills WHERE player_id = $1 ORDER BY time`,
		snap.Row.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var kill player.Kill
		if err := rows.Scan(&kill.TargetID, &kill.Time, &kill.Unavenged); err != nil {
			return err
		}
		snap.Kills = append(snap.Kills, kill)
	}
	return rows.Err()
}

func (r *PlayerRepository) fetchGuild(ctx context.Context, snap *player.Snapshot) error {
	var guild player.GuildRow
	err := r.db.QueryRow(ctx,
		`SELECT guild_id, rank_id, nick FROM guild_membership WHERE player_id = $1`,
		snap.Row.ID).Scan(&guild.GuildID, &guild.RankID, &guild.Nick)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	snap.Guild = &guild
	return nil
}

func (r *PlayerRepository) fetchStash(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT item_type, item_count FROM player_stash WHERE player_id = $1 ORDER BY item_type`,
		snap.Row.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row player.StashRow
		if err := rows.Scan(&row.TypeID, &row.Count); err != nil {
			return err
		}
		snap.Stash = append(snap.Stash, row)
	}
	return rows.Err()
}

func (r *PlayerRepository) fetchCharms(ctx context.Context, snap *player.Snapshot) error {
	var charms player.CharmRow
	err := r.db.QueryRow(ctx,
		`SELECT points, expansion, runes, tracker FROM player_charms WHERE player_id = $1`,
		snap.Row.ID).Scan(&charms.Points, &charms.Expansion, &charms.Runes, &charms.Tracker)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	snap.Charms = &charms
	return nil
}

func (r *PlayerRepository) fetchItemRows(ctx context.Context, table string, playerID uint32) ([]player.ItemRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT sid, pid, itemtype, count, attributes FROM `+table+
			` WHERE player_id = $1 ORDER BY sid`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []player.ItemRow
	for rows.Next() {
		var row player.ItemRow
		if err := rows.Scan(&row.SID, &row.PID, &row.TypeID, &row.Count, &row.Attributes); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *PlayerRepository) fetchInventory(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.fetchItemRows(ctx, "player_items", snap.Row.ID)
	snap.Items = rows
	return err
}

func (r *PlayerRepository) fetchStoreInbox(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.fetchItemRows(ctx, "player_storeinboxitems", snap.Row.ID)
	snap.StoreInbox = rows
	return err
}

func (r *PlayerRepository) fetchRewards(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.fetchItemRows(ctx, "player_rewards", snap.Row.ID)
	snap.Rewards = rows
	return err
}

func (r *PlayerRepository) fetchInbox(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.fetchItemRows(ctx, "player_inboxitems", snap.Row.ID)
	snap.Inbox = rows
	return err
}

func (r *PlayerRepository) fetchDepot(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT depot_id, sid, pid, itemtype, count, attributes
		 FROM player_depotitems WHERE player_id = $1 ORDER BY depot_id, sid`, snap.Row.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row player.DepotItemRow
		if err := rows.Scan(&row.DepotID, &row.SID, &row.PID, &row.TypeID, &row.Count, &row.Attributes); err != nil {
			return err
		}
		snap.Depot = append(snap.Depot, row)
	}
	return rows.Err()
}

func (r *PlayerRepository) fetchStorage(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT key, value FROM player_storage WHERE player_id = $1 ORDER BY key`, snap.Row.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row player.StorageRow
		if err := rows.Scan(&row.Key, &row.Value); err != nil {
			return err
		}
		snap.Storage = append(snap.Storage, row)
	}
	return rows.Err()
}

func (r *PlayerRepository) fetchVIP(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT player_id FROM account_viplist WHERE account_id = $1`, snap.Row.AccountID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id uint32
		if err := rows.Scan(&id); err != nil {
			return err
		}
		snap.VIP = append(snap.VIP, id)
	}
	return rows.Err()
}

func (r *PlayerRepository) fetchPrey(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT slot, state, race_id, option, bonus_type, bonus_rank, bonus_time,
		        free_reroll, monster_list
		 FROM player_prey WHERE player_id = $1 ORDER BY slot`, snap.Row.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row player.PreyRow
		if err := rows.Scan(&row.Slot, &row.State, &row.RaceID, &row.Option, &row.BonusType,
			&row.BonusRank, &row.BonusTime, &row.FreeReroll, &row.MonsterList); err != nil {
			return err
		}
		snap.Prey = append(snap.Prey, row)
	}
	return rows.Err()
}

func (r *PlayerRepository) fetchTaskHunting(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT slot, state, race_id, upgrade, kills, disabled_until, free_reroll, monster_list
		 FROM player_taskhunt WHERE player_id = $1 ORDER BY slot`, snap.Row.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row player.TaskHuntRow
		if err := rows.Scan(&row.Slot, &row.State, &row.RaceID, &row.Upgrade, &row.Kills,
			&row.DisabledUntil, &row.FreeReroll, &row.MonsterList); err != nil {
			return err
		}
		snap.TaskHunting = append(snap.TaskHunting, row)
	}
	return rows.Err()
}

func (r *PlayerRepository) fetchForgeHistory(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT action_type, description, bonus, success, done_at
		 FROM forge_history WHERE player_id = $1 ORDER BY done_at`, snap.Row.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var entry player.ForgeEntry
		if err := rows.Scan(&entry.ActionType, &entry.Description, &entry.Bonus,
			&entry.Success, &entry.CreatedAt); err != nil {
			return err
		}
		snap.Forge = append(snap.Forge, entry)
	}
	return rows.Err()
}

func (r *PlayerRepository) fetchBosstiary(ctx context.Context, snap *player.Snapshot) error {
	var row player.BosstiaryRow
	err := r.db.QueryRow(ctx,
		`SELECT points, boss_one, boss_two, remove_times, tracker
		 FROM player_bosstiary WHERE player_id = $1`, snap.Row.ID).
		Scan(&row.Points, &row.BossIDOne, &row.BossIDTwo, &row.RemoveTimes, &row.Tracker)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	snap.Bosstiary = &row
	return nil
}

func (r *PlayerRepository) fetchWheel(ctx context.Context, snap *player.Snapshot) error {
	rows, err := r.db.Query(ctx,
		`SELECT slot, points FROM player_wheeldata WHERE player_id = $1 ORDER BY slot`, snap.Row.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var slot player.WheelSlot
		if err := rows.Scan(&slot.Slot, &slot.Points); err != nil {
			return err
		}
		snap.Wheel = append(snap.Wheel, slot)
	}
	return rows.Err()
}
