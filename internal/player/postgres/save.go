// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/samber/oops"

	"github.com/duskhaven/duskhaven/internal/player"
)

type saverStep struct {
	facet string
	fn    func(r *PlayerRepository, ctx context.Context, p *player.Player) error
}

// saveSteps run in this order inside one transaction, fail-fast. Base
// identity and stats go first; the storage map goes last.
var saveSteps = []saverStep{
	{"base", (*PlayerRepository).saveBase},
	{"stash", (*PlayerRepository).saveStash},
	{"spells", (*PlayerRepository).saveSpells},
	{"kills", (*PlayerRepository).saveKills},
	{"bestiary", (*PlayerRepository).saveBestiary},
	{"inventory", (*PlayerRepository).saveInventory},
	{"depot", (*PlayerRepository).saveDepot},
	{"rewards", (*PlayerRepository).saveRewards},
	{"inbox", (*PlayerRepository).saveInbox},
	{"prey", (*PlayerRepository).savePrey},
	{"task_hunting", (*PlayerRepository).saveTaskHunting},
	{"forge_history", (*PlayerRepository).saveForgeHistory},
	{"bosstiary", (*PlayerRepository).saveBosstiary},
	{"wheel", (*PlayerRepository).saveWheel},
	{"storage", (*PlayerRepository).saveStorage},
}

// Save persists every facet of the aggregate as one atomic unit of work.
// The first sub-saver failure aborts the run, rolls back all writes made in
// the unit, and surfaces an error naming the failing facet and the player.
func (r *PlayerRepository) Save(ctx context.Context, p *player.Player) error {
	if p == nil {
		return oops.Code("PLAYER_SAVE_FAILED").Errorf("player is nil")
	}

	start := time.Now()
	err := r.tx.InTransaction(ctx, func(txCtx context.Context) error {
		for _, step := range saveSteps {
			if err := step.fn(r, txCtx, p); err != nil {
				RecordSaveFailure(step.facet)
				return oops.Code("PLAYER_SAVE_FAILED").
					With("facet", step.facet).
					With("player", p.Name).
					Wrap(err)
			}
		}
		return nil
	})
	RecordSaveDuration(time.Since(start), err == nil)
	return err
}

func (r *PlayerRepository) saveBase(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)

	var skullUntil int64
	if !p.SkullUntil.IsZero() {
		skullUntil = p.SkullUntil.Unix()
	}

	tag, err := db.Exec(ctx, `
		UPDATE players SET
			group_id = $2, sex = $3, vocation = $4,
			level = $5, experience = $6, health = $7, healthmax = $8,
			mana = $9, manamax = $10, maglevel = $11, manaspent = $12, soul = $13,
			blessings = $14, conditions = $15,
			looktype = $16, lookhead = $17, lookbody = $18, looklegs = $19,
			lookfeet = $20, lookaddons = $21, lookmount = $22,
			skull = $23, skull_time = $24,
			town_id = $25, posx = $26, posy = $27, posz = $28,
			cap = $29, balance = $30, stamina = $31, lastlogin = $32
		WHERE id = $1
	`, p.ID,
		p.GroupID, p.Sex, p.Vocation,
		p.Level, p.Experience, p.Health, p.HealthMax,
		p.Mana, p.ManaMax, p.MagicLevel, p.ManaSpent, p.Soul,
		p.Blessings[:], p.Conditions,
		p.Outfit.LookType, p.Outfit.LookHead, p.Outfit.LookBody, p.Outfit.LookLegs,
		p.Outfit.LookFeet, p.Outfit.LookAddons, p.Outfit.LookMount,
		p.SkullType, skullUntil,
		p.TownID, p.PosX, p.PosY, p.PosZ,
		p.Capacity, p.Balance, p.Stamina, p.LastLogin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return oops.With("id", p.ID).Wrap(player.ErrNotFound)
	}

	// Skills are base stats and travel with the first saver.
	if _, err := db.Exec(ctx, `DELETE FROM player_skills WHERE player_id = $1`, p.ID); err != nil {
		return err
	}
	for skillID, skill := range p.Skills {
		if _, err := db.Exec(ctx, `
			INSERT INTO player_skills (player_id, skill_id, level, tries)
			VALUES ($1, $2, $3, $4)
		`, p.ID, skillID, skill.Level, skill.Tries); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlayerRepository) saveStash(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM player_stash WHERE player_id = $1`, p.ID); err != nil {
		return err
	}

	types := make([]uint16, 0, len(p.Stash))
	for typeID := range p.Stash {
		types = append(types, typeID)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, typeID := range types {
		if _, err := db.Exec(ctx, `
			INSERT INTO player_stash (player_id, item_type, item_count)
			VALUES ($1, $2, $3)
		`, p.ID, typeID, p.Stash[typeID]); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlayerRepository) saveSpells(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM player_spells WHERE player_id = $1`, p.ID); err != nil {
		return err
	}
	for _, name := range p.Spells {
		if _, err := db.Exec(ctx, `
			INSERT INTO player_spells (player_id, name) VALUES ($1, $2)
		`, p.ID, name); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlayerRepository) saveKills(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM player_kills WHERE player_id = $1`, p.ID); err != nil {
		return err
	}
	for _, kill := range p.Kills {
		if _, err := db.Exec(ctx, `
			INSERT INTO player_kills (player_id, target_id, time, unavenged)
			VALUES ($1, $2, $3, $4)
		`, p.ID, kill.TargetID, kill.Time, kill.Unavenged); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlayerRepository) saveBestiary(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM player_charms WHERE player_id = $1`, p.ID); err != nil {
		return err
	}
	_, err := db.Exec(ctx, `
		INSERT INTO player_charms (player_id, points, expansion, runes, tracker)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.Charms.Points, p.Charms.Expansion, p.Charms.Runes,
		player.EncodeRaceList(p.Charms.Tracker))
	return err
}

func (r *PlayerRepository) saveItemRows(ctx context.Context, table string, playerID uint32, rows []player.ItemRow) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM `+table+` WHERE player_id = $1`, playerID); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := db.Exec(ctx, `
			INSERT INTO `+table+` (player_id, sid, pid, itemtype, count, attributes)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, playerID, row.SID, row.PID, row.TypeID, row.Count, row.Attributes); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlayerRepository) saveInventory(ctx context.Context, p *player.Player) error {
	return r.saveItemRows(ctx, "player_items", p.ID, player.FlattenItemTree(p.Inventory))
}

func (r *PlayerRepository) saveRewards(ctx context.Context, p *player.Player) error {
	return r.saveItemRows(ctx, "player_rewards", p.ID, player.FlattenItemTree(p.Rewards))
}

func (r *PlayerRepository) saveInbox(ctx context.Context, p *player.Player) error {
	return r.saveItemRows(ctx, "player_inboxitems", p.ID, player.FlattenItemTree(p.Inbox))
}

func (r *PlayerRepository) saveDepot(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM player_depotitems WHERE player_id = $1`, p.ID); err != nil {
		return err
	}
	for _, box := range p.Depots {
		for _, row := range player.FlattenItemTree(box.Items) {
			if _, err := db.Exec(ctx, `
				INSERT INTO player_depotitems (player_id, depot_id, sid, pid, itemtype, count, attributes)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, p.ID, box.DepotID, row.SID, row.PID, row.TypeID, row.Count, row.Attributes); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *PlayerRepository) savePrey(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM player_prey WHERE player_id = $1`, p.ID); err != nil {
		return err
	}
	for _, slot := range p.Prey {
		if _, err := db.Exec(ctx, `
			INSERT INTO player_prey (player_id, slot, state, race_id, option, bonus_type,
				bonus_rank, bonus_time, free_reroll, monster_list)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, p.ID, slot.Slot, slot.State, slot.RaceID, slot.Option, slot.BonusType,
			slot.BonusRank, slot.BonusTime, slot.FreeReroll,
			player.EncodeRaceList(slot.MonsterList)); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlayerRepository) saveTaskHunting(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM player_taskhunt WHERE player_id = $1`, p.ID); err != nil {
		return err
	}
	for _, slot := range p.TaskHunting {
		if _, err := db.Exec(ctx, `
			INSERT INTO player_taskhunt (player_id, slot, state, race_id, upgrade, kills,
				disabled_until, free_reroll, monster_list)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, p.ID, slot.Slot, slot.State, slot.RaceID, slot.Upgrade, slot.Kills,
			slot.DisabledUntil, slot.FreeReroll,
			player.EncodeRaceList(slot.MonsterList)); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlayerRepository) saveForgeHistory(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM forge_history WHERE player_id = $1`, p.ID); err != nil {
		return err
	}
	for _, entry := range p.ForgeHistory {
		if _, err := db.Exec(ctx, `
			INSERT INTO forge_history (player_id, action_type, description, bonus, success, done_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.ID, entry.ActionType, entry.Description, entry.Bonus, entry.Success, entry.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlayerRepository) saveBosstiary(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM player_bosstiary WHERE player_id = $1`, p.ID); err != nil {
		return err
	}
	_, err := db.Exec(ctx, `
		INSERT INTO player_bosstiary (player_id, points, boss_one, boss_two, remove_times, tracker)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Bosstiary.Points, p.Bosstiary.BossIDOne, p.Bosstiary.BossIDTwo,
		p.Bosstiary.RemoveTimes, player.EncodeRaceList(p.Bosstiary.Tracker))
	return err
}

func (r *PlayerRepository) saveWheel(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM player_wheeldata WHERE player_id = $1`, p.ID); err != nil {
		return err
	}
	for _, slot := range p.Wheel {
		if _, err := db.Exec(ctx, `
			INSERT INTO player_wheeldata (player_id, slot, points) VALUES ($1, $2, $3)
		`, p.ID, slot.Slot, slot.Points); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlayerRepository) saveStorage(ctx context.Context, p *player.Player) error {
	db := q(ctx, r.db)
	if _, err := db.Exec(ctx, `DELETE FROM player_storage WHERE player_id = $1`, p.ID); err != nil {
		return err
	}

	keys := make([]uint32, 0, len(p.Storage))
	for key := range p.Storage {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		if _, err := db.Exec(ctx, `
			INSERT INTO player_storage (player_id, key, value) VALUES ($1, $2, $3)
		`, p.ID, key, p.Storage[key]); err != nil {
			return err
		}
	}
	return nil
}
