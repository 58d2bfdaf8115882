// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package player

import (
	"time"
)

// SkillCount is the number of trainable skills (fist through fishing).
const SkillCount = 7

// Skill identifiers, used as array indexes and as skill_id in the store.
const (
	SkillFist = iota
	SkillClub
	SkillSword
	SkillAxe
	SkillDistance
	SkillShielding
	SkillFishing
)

// BlessingCount is the number of blessing slots a player can hold.
const BlessingCount = 8

// PreySlotCount is the number of prey and task-hunting slots.
const PreySlotCount = 3

// Skull types.
const (
	SkullNone uint8 = iota
	SkullYellow
	SkullGreen
	SkullWhite
	SkullRed
	SkullBlack
	SkullOrange
)

// Outfit is the player's default look.
type Outfit struct {
	LookType   uint16
	LookHead   uint8
	LookBody   uint8
	LookLegs   uint8
	LookFeet   uint8
	LookAddons uint8
	LookMount  uint16
}

// Skill is one trainable skill facet entry.
type Skill struct {
	Level uint16
	Tries uint64
}

// Kill is one unavenged or historical frag.
type Kill struct {
	TargetID  uint32
	Time      time.Time
	Unavenged bool
}

// GuildMembership links a player to a guild rank. Nil means no guild.
type GuildMembership struct {
	GuildID uint32
	RankID  uint32
	Nick    string
}

// Charms is the bestiary charm facet: points, expansion and the raw rune
// unlock bitmask, plus the monsters pinned on the cyclopedia tracker.
type Charms struct {
	Points    uint32
	Expansion bool
	Runes     uint64
	Tracker   []uint16
}

// Item is one item node in a container tree. Top-level items carry a SlotID
// (equipment slot, depot box id, or 0 for loose mail); nested items hang off
// Children.
type Item struct {
	TypeID     uint16
	Count      int32
	Attributes []byte
	SlotID     int32
	Children   []*Item
}

// DepotBox groups the items stored in one depot town box.
type DepotBox struct {
	DepotID uint32
	Items   []*Item
}

// PreySlot is one prey hunting slot.
type PreySlot struct {
	Slot        uint8
	State       uint8
	RaceID      uint16
	Option      uint8
	BonusType   uint8
	BonusRank   uint8
	BonusTime   uint16
	FreeReroll  int64
	MonsterList []uint16
}

// TaskHuntSlot is one task-hunting slot.
type TaskHuntSlot struct {
	Slot          uint8
	State         uint8
	RaceID        uint16
	Upgrade       bool
	Kills         uint16
	DisabledUntil int64
	FreeReroll    int64
	MonsterList   []uint16
}

// ForgeEntry is one line of forge conversion/fusion history.
type ForgeEntry struct {
	ActionType  uint8
	Description string
	Bonus       uint8
	Success     bool
	CreatedAt   time.Time
}

// Bosstiary is the boss-tracking facet.
type Bosstiary struct {
	Points      uint32
	BossIDOne   uint32
	BossIDTwo   uint32
	RemoveTimes uint32
	Tracker     []uint16
}

// WheelSlot records the points invested in one wheel-of-destiny slot.
type WheelSlot struct {
	Slot   uint8
	Points uint16
}

// Derived holds values recomputed from the rest of the aggregate after a
// full-depth load. Never persisted.
type Derived struct {
	LevelPercent  uint8
	CarriedItems  int
	StoredItems   int
	BlessingsHeld int
}

// Player is the aggregate entity: one character's complete persisted state,
// composed of independent facets. All sub-loaders write into it and all
// sub-savers read from it. Not safe for concurrent pipeline runs.
type Player struct {
	// Identity / base facts.
	ID        uint32
	AccountID uint32
	Name      string
	GroupID   uint16
	Sex       uint8
	Vocation  uint8
	TownID    uint32
	PosX      uint16
	PosY      uint16
	PosZ      uint8
	Capacity  uint32
	Balance   uint64
	Stamina   uint16
	LastLogin time.Time

	// Experience and vitals.
	Level      uint32
	Experience uint64
	Health     int32
	HealthMax  int32
	Mana       int32
	ManaMax    int32
	MagicLevel uint16
	ManaSpent  uint64
	Soul       uint8

	Blessings  [BlessingCount]uint8
	Conditions []byte
	Outfit     Outfit

	SkullType  uint8
	SkullUntil time.Time

	Skills [SkillCount]Skill
	Spells []string

	Kills []Kill
	Guild *GuildMembership

	Stash  map[uint16]uint32
	Charms Charms

	Inventory  []*Item
	StoreInbox []*Item
	Depots     []DepotBox
	Rewards    []*Item
	Inbox      []*Item

	Storage map[uint32]int32
	VIP     []uint32

	Prey        []PreySlot
	TaskHunting []TaskHuntSlot

	// Deep-load facets; untouched by a shallow load.
	ForgeHistory []ForgeEntry
	Bosstiary    Bosstiary
	Wheel        []WheelSlot

	Derived Derived
}

// Reset clears every facet so the aggregate can be reused for a fresh load.
func (p *Player) Reset() {
	*p = Player{}
}
