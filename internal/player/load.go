// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package player

import (
	"time"

	"github.com/samber/oops"
)

// Depth selects how much of the aggregate a load populates.
type Depth uint8

const (
	// DepthShallow populates only the facets needed while the player is not
	// actively in the world: identity through task hunting. Forge history,
	// bosstiary and the derived recomputations are skipped.
	DepthShallow Depth = iota

	// DepthFull populates every facet and recomputes derived values.
	DepthFull
)

// Equipment slot bounds for inventory root items.
const (
	slotFirst int32 = 1
	slotLast  int32 = 11
)

type loaderStep struct {
	facet string
	fn    func(p *Player, snap *Snapshot) error
}

// shallowSteps always run, in this order. The order carries no data
// dependency between facets; it exists for deterministic diagnostics.
var shallowSteps = []loaderStep{
	{"base", loadBase},
	{"experience", loadExperience},
	{"blessings", loadBlessings},
	{"conditions", loadConditions},
	{"outfit", loadOutfit},
	{"skull", loadSkull},
	{"skills", loadSkills},
	{"kills", loadKills},
	{"guild", loadGuild},
	{"stash", loadStash},
	{"charms", loadCharms},
	{"inventory", loadInventory},
	{"store_inbox", loadStoreInbox},
	{"depot", loadDepot},
	{"rewards", loadRewards},
	{"inbox", loadInbox},
	{"storage", loadStorage},
	{"vip", loadVIP},
	{"prey", loadPrey},
	{"task_hunting", loadTaskHunting},
}

// deepSteps run only for DepthFull.
var deepSteps = []loaderStep{
	{"forge_history", loadForgeHistory},
	{"bosstiary", loadBosstiary},
	{"initialize", loadInitialize},
	{"derived", loadDerived},
}

// Load populates the aggregate from the snapshot, running sub-loaders in a
// fixed order and aborting on the first failure. After a failure the
// aggregate is partially populated and must be discarded by the caller.
func Load(p *Player, snap *Snapshot, depth Depth) error {
	if p == nil {
		return oops.Code("PLAYER_LOAD_FAILED").Errorf("player is nil")
	}
	if snap == nil {
		return oops.Code("PLAYER_LOAD_FAILED").Errorf("snapshot is nil")
	}

	run := func(steps []loaderStep) error {
		for _, step := range steps {
			if err := step.fn(p, snap); err != nil {
				return oops.Code("PLAYER_LOAD_FAILED").
					With("facet", step.facet).
					With("player", snap.Row.Name).
					Wrap(err)
			}
		}
		return nil
	}

	if err := run(shallowSteps); err != nil {
		return err
	}
	if depth == DepthShallow {
		return nil
	}
	return run(deepSteps)
}

func loadBase(p *Player, snap *Snapshot) error {
	row := snap.Row
	if row.ID == 0 {
		return oops.Errorf("player row has zero id")
	}
	if row.Name == "" {
		return oops.With("id", row.ID).Errorf("player row has empty name")
	}

	p.ID = row.ID
	p.AccountID = row.AccountID
	p.Name = row.Name
	p.GroupID = row.GroupID
	p.Sex = row.Sex
	p.Vocation = row.Vocation
	p.TownID = row.TownID
	p.PosX = row.PosX
	p.PosY = row.PosY
	p.PosZ = row.PosZ
	p.Capacity = row.Capacity
	p.Balance = row.Balance
	p.Stamina = row.Stamina
	p.LastLogin = row.LastLogin
	return nil
}

func loadExperience(p *Player, snap *Snapshot) error {
	row := snap.Row
	if row.Level == 0 {
		return oops.Errorf("player level is zero")
	}
	p.Level = row.Level
	p.Experience = row.Experience
	p.HealthMax = row.HealthMax
	p.Health = min(row.Health, row.HealthMax)
	p.ManaMax = row.ManaMax
	p.Mana = min(row.Mana, row.ManaMax)
	p.MagicLevel = row.MagicLevel
	p.ManaSpent = row.ManaSpent
	p.Soul = row.Soul
	return nil
}

func loadBlessings(p *Player, snap *Snapshot) error {
	blob := snap.Row.Blessings
	switch len(blob) {
	case 0:
		p.Blessings = [BlessingCount]uint8{}
	case BlessingCount:
		copy(p.Blessings[:], blob)
	default:
		return oops.With("length", len(blob)).
			Errorf("blessings column must hold 0 or %d bytes", BlessingCount)
	}
	return nil
}

func loadConditions(p *Player, snap *Snapshot) error {
	if len(snap.Row.Conditions) == 0 {
		p.Conditions = nil
		return nil
	}
	p.Conditions = append([]byte(nil), snap.Row.Conditions...)
	return nil
}

func loadOutfit(p *Player, snap *Snapshot) error {
	row := snap.Row
	if row.LookAddons > 3 {
		return oops.With("addons", row.LookAddons).Errorf("outfit addons out of range")
	}
	p.Outfit = Outfit{
		LookType:   row.LookType,
		LookHead:   row.LookHead,
		LookBody:   row.LookBody,
		LookLegs:   row.LookLegs,
		LookFeet:   row.LookFeet,
		LookAddons: row.LookAddons,
		LookMount:  row.LookMount,
	}
	return nil
}

func loadSkull(p *Player, snap *Snapshot) error {
	row := snap.Row
	if row.SkullType > SkullOrange {
		return oops.With("skull", row.SkullType).Errorf("unknown skull type")
	}
	until := time.Unix(row.SkullUntil, 0)
	if row.SkullType == SkullNone || !until.After(time.Now()) {
		// Expired skulls are dropped on load rather than carried around.
		p.SkullType = SkullNone
		p.SkullUntil = time.Time{}
		return nil
	}
	p.SkullType = row.SkullType
	p.SkullUntil = until
	return nil
}

func loadSkills(p *Player, snap *Snapshot) error {
	for _, row := range snap.Skills {
		if row.SkillID < 0 || row.SkillID >= SkillCount {
			return oops.With("skill_id", row.SkillID).Errorf("skill id out of range")
		}
		p.Skills[row.SkillID] = Skill{Level: row.Level, Tries: row.Tries}
	}
	p.Spells = append([]string(nil), snap.Spells...)
	return nil
}

func loadKills(p *Player, snap *Snapshot) error {
	for _, kill := range snap.Kills {
		if kill.TargetID == 0 {
			return oops.Errorf("kill row has zero target id")
		}
	}
	p.Kills = append([]Kill(nil), snap.Kills...)
	return nil
}

func loadGuild(p *Player, snap *Snapshot) error {
	if snap.Guild == nil {
		p.Guild = nil
		return nil
	}
	if snap.Guild.GuildID == 0 {
		return oops.Errorf("guild membership row has zero guild id")
	}
	p.Guild = &GuildMembership{
		GuildID: snap.Guild.GuildID,
		RankID:  snap.Guild.RankID,
		Nick:    snap.Guild.Nick,
	}
	return nil
}

func loadStash(p *Player, snap *Snapshot) error {
	p.Stash = make(map[uint16]uint32, len(snap.Stash))
	for _, row := range snap.Stash {
		// The store keys stash rows by item type; a duplicate means two
		// stacks of the same type and is merged.
		p.Stash[row.TypeID] += row.Count
	}
	return nil
}

func loadCharms(p *Player, snap *Snapshot) error {
	if snap.Charms == nil {
		p.Charms = Charms{}
		return nil
	}
	tracker, err := DecodeRaceList(snap.Charms.Tracker)
	if err != nil {
		return err
	}
	p.Charms = Charms{
		Points:    snap.Charms.Points,
		Expansion: snap.Charms.Expansion,
		Runes:     snap.Charms.Runes,
		Tracker:   tracker,
	}
	return nil
}

func loadInventory(p *Player, snap *Snapshot) error {
	items, err := BuildItemTree(snap.Items)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.SlotID < slotFirst || item.SlotID > slotLast {
			return oops.With("slot", item.SlotID).Errorf("inventory slot out of range")
		}
	}
	p.Inventory = items
	return nil
}

func loadStoreInbox(p *Player, snap *Snapshot) error {
	items, err := BuildItemTree(snap.StoreInbox)
	if err != nil {
		return err
	}
	p.StoreInbox = items
	return nil
}

func loadDepot(p *Player, snap *Snapshot) error {
	var boxes []DepotBox
	index := make(map[uint32]int)
	byBox := make(map[uint32][]ItemRow)

	for _, row := range snap.Depot {
		if _, seen := index[row.DepotID]; !seen {
			index[row.DepotID] = len(boxes)
			boxes = append(boxes, DepotBox{DepotID: row.DepotID})
		}
		byBox[row.DepotID] = append(byBox[row.DepotID], row.ItemRow)
	}

	for depotID, rows := range byBox {
		items, err := BuildItemTree(rows)
		if err != nil {
			return oops.With("depot_id", depotID).Wrap(err)
		}
		boxes[index[depotID]].Items = items
	}

	p.Depots = boxes
	return nil
}

func loadRewards(p *Player, snap *Snapshot) error {
	items, err := BuildItemTree(snap.Rewards)
	if err != nil {
		return err
	}
	p.Rewards = items
	return nil
}

func loadInbox(p *Player, snap *Snapshot) error {
	items, err := BuildItemTree(snap.Inbox)
	if err != nil {
		return err
	}
	p.Inbox = items
	return nil
}

func loadStorage(p *Player, snap *Snapshot) error {
	p.Storage = make(map[uint32]int32, len(snap.Storage))
	for _, row := range snap.Storage {
		if _, dup := p.Storage[row.Key]; dup {
			return oops.With("key", row.Key).Errorf("duplicate storage key")
		}
		p.Storage[row.Key] = row.Value
	}
	return nil
}

func loadVIP(p *Player, snap *Snapshot) error {
	p.VIP = append([]uint32(nil), snap.VIP...)
	return nil
}

func loadPrey(p *Player, snap *Snapshot) error {
	slots := make([]PreySlot, 0, len(snap.Prey))
	for _, row := range snap.Prey {
		if row.Slot >= PreySlotCount {
			return oops.With("slot", row.Slot).Errorf("prey slot out of range")
		}
		monsters, err := DecodeRaceList(row.MonsterList)
		if err != nil {
			return oops.With("slot", row.Slot).Wrap(err)
		}
		slots = append(slots, PreySlot{
			Slot:        row.Slot,
			State:       row.State,
			RaceID:      row.RaceID,
			Option:      row.Option,
			BonusType:   row.BonusType,
			BonusRank:   row.BonusRank,
			BonusTime:   row.BonusTime,
			FreeReroll:  row.FreeReroll,
			MonsterList: monsters,
		})
	}
	p.Prey = slots
	return nil
}

func loadTaskHunting(p *Player, snap *Snapshot) error {
	slots := make([]TaskHuntSlot, 0, len(snap.TaskHunting))
	for _, row := range snap.TaskHunting {
		if row.Slot >= PreySlotCount {
			return oops.With("slot", row.Slot).Errorf("task hunting slot out of range")
		}
		monsters, err := DecodeRaceList(row.MonsterList)
		if err != nil {
			return oops.With("slot", row.Slot).Wrap(err)
		}
		slots = append(slots, TaskHuntSlot{
			Slot:          row.Slot,
			State:         row.State,
			RaceID:        row.RaceID,
			Upgrade:       row.Upgrade,
			Kills:         row.Kills,
			DisabledUntil: row.DisabledUntil,
			FreeReroll:    row.FreeReroll,
			MonsterList:   monsters,
		})
	}
	p.TaskHunting = slots
	return nil
}

func loadForgeHistory(p *Player, snap *Snapshot) error {
	p.ForgeHistory = append([]ForgeEntry(nil), snap.Forge...)
	return nil
}

func loadBosstiary(p *Player, snap *Snapshot) error {
	if snap.Bosstiary == nil {
		p.Bosstiary = Bosstiary{}
		return nil
	}
	tracker, err := DecodeRaceList(snap.Bosstiary.Tracker)
	if err != nil {
		return err
	}
	p.Bosstiary = Bosstiary{
		Points:      snap.Bosstiary.Points,
		BossIDOne:   snap.Bosstiary.BossIDOne,
		BossIDTwo:   snap.Bosstiary.BossIDTwo,
		RemoveTimes: snap.Bosstiary.RemoveTimes,
		Tracker:     tracker,
	}
	return nil
}

// loadInitialize fills in the structural gaps a fresh-from-store aggregate
// may have: wheel slot points, every prey and task-hunting slot (even if the
// store never wrote one), and addressable map facets.
func loadInitialize(p *Player, snap *Snapshot) error {
	if p.Stash == nil {
		p.Stash = make(map[uint16]uint32)
	}
	if p.Storage == nil {
		p.Storage = make(map[uint32]int32)
	}
	p.Wheel = append([]WheelSlot(nil), snap.Wheel...)

	haveSlot := func(slot uint8) bool {
		for _, s := range p.Prey {
			if s.Slot == slot {
				return true
			}
		}
		return false
	}
	haveTask := func(slot uint8) bool {
		for _, s := range p.TaskHunting {
			if s.Slot == slot {
				return true
			}
		}
		return false
	}
	for slot := uint8(0); slot < PreySlotCount; slot++ {
		if !haveSlot(slot) {
			p.Prey = append(p.Prey, PreySlot{Slot: slot})
		}
		if !haveTask(slot) {
			p.TaskHunting = append(p.TaskHunting, TaskHuntSlot{Slot: slot})
		}
	}
	return nil
}

// loadDerived recomputes cached values from everything already loaded.
func loadDerived(p *Player, _ *Snapshot) error {
	p.Derived.LevelPercent = levelPercent(p.Level, p.Experience)
	p.Derived.CarriedItems = CountItems(p.Inventory)

	stored := CountItems(p.StoreInbox) + CountItems(p.Rewards) + CountItems(p.Inbox)
	for _, box := range p.Depots {
		stored += CountItems(box.Items)
	}
	p.Derived.StoredItems = stored

	held := 0
	for _, charges := range p.Blessings {
		if charges > 0 {
			held++
		}
	}
	p.Derived.BlessingsHeld = held
	return nil
}

// ExperienceForLevel returns the total experience required to reach level.
func ExperienceForLevel(level uint32) uint64 {
	l := uint64(level)
	if l == 0 {
		return 0
	}
	return (50*l*l*l - 300*l*l + 850*l - 600) / 3
}

// levelPercent computes progress through the current level in whole percent.
func levelPercent(level uint32, experience uint64) uint8 {
	current := ExperienceForLevel(level)
	next := ExperienceForLevel(level + 1)
	if experience <= current || next <= current {
		return 0
	}
	if experience >= next {
		return 100
	}
	return uint8((experience - current) * 100 / (next - current))
}
