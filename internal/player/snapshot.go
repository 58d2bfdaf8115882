// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package player

import "time"

// Snapshot is an immutable, point-in-time materialization of one player read:
// the flat primary row plus independently addressable child rows per facet.
// The load pipeline consumes it read-only; it is never written back.
type Snapshot struct {
	Row Row

	Skills      []SkillRow
	Spells      []string
	Kills       []Kill
	Guild       *GuildRow
	Stash       []StashRow
	Charms      *CharmRow
	Items       []ItemRow
	StoreInbox  []ItemRow
	Depot       []DepotItemRow
	Rewards     []ItemRow
	Inbox       []ItemRow
	Storage     []StorageRow
	VIP         []uint32
	Prey        []PreyRow
	TaskHunting []TaskHuntRow

	// Deep-load facets. Left empty by shallow snapshot fetches.
	Forge     []ForgeEntry
	Bosstiary *BosstiaryRow
	Wheel     []WheelSlot
}

// Row holds the flat columns of the player's primary row.
type Row struct {
	ID         uint32
	AccountID  uint32
	Name       string
	GroupID    uint16
	Sex        uint8
	Vocation   uint8
	TownID     uint32
	PosX       uint16
	PosY       uint16
	PosZ       uint8
	Capacity   uint32
	Balance    uint64
	Stamina    uint16
	LastLogin  time.Time
	Level      uint32
	Experience uint64
	Health     int32
	HealthMax  int32
	Mana       int32
	ManaMax    int32
	MagicLevel uint16
	ManaSpent  uint64
	Soul       uint8
	Blessings  []byte
	Conditions []byte
	LookType   uint16
	LookHead   uint8
	LookBody   uint8
	LookLegs   uint8
	LookFeet   uint8
	LookAddons uint8
	LookMount  uint16
	SkullType  uint8
	SkullUntil int64
}

// SkillRow is one child row of the skills facet.
type SkillRow struct {
	SkillID int16
	Level   uint16
	Tries   uint64
}

// GuildRow is the optional guild membership child row.
type GuildRow struct {
	GuildID uint32
	RankID  uint32
	Nick    string
}

// StashRow is one stashed item stack.
type StashRow struct {
	TypeID uint16
	Count  uint32
}

// CharmRow is the optional bestiary charm child row.
type CharmRow struct {
	Points    uint32
	Expansion bool
	Runes     uint64
	Tracker   []byte
}

// ItemRow is one flat item row using the sid/pid tree encoding: rows with
// PID below FirstItemSID are roots (PID is the slot), any other PID nests
// the row under the item whose SID equals it. Parents precede children.
type ItemRow struct {
	SID        int32
	PID        int32
	TypeID     uint16
	Count      int32
	Attributes []byte
}

// DepotItemRow is an ItemRow scoped to one depot box.
type DepotItemRow struct {
	DepotID uint32
	ItemRow
}

// StorageRow is one key-value storage entry.
type StorageRow struct {
	Key   uint32
	Value int32
}

// PreyRow is one prey slot child row; MonsterList is the packed race-id blob.
type PreyRow struct {
	Slot        uint8
	State       uint8
	RaceID      uint16
	Option      uint8
	BonusType   uint8
	BonusRank   uint8
	BonusTime   uint16
	FreeReroll  int64
	MonsterList []byte
}

// TaskHuntRow is one task-hunting slot child row.
type TaskHuntRow struct {
	Slot          uint8
	State         uint8
	RaceID        uint16
	Upgrade       bool
	Kills         uint16
	DisabledUntil int64
	FreeReroll    int64
	MonsterList   []byte
}

// BosstiaryRow is the optional bosstiary child row.
type BosstiaryRow struct {
	Points      uint32
	BossIDOne   uint32
	BossIDTwo   uint32
	RemoveTimes uint32
	Tracker     []byte
}
