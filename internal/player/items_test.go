// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskhaven/duskhaven/pkg/errutil"
)

func TestBuildItemTree_NestsChildrenUnderParents(t *testing.T) {
	rows := []ItemRow{
		{SID: 101, PID: 3, TypeID: 1988},               // backpack in slot 3
		{SID: 102, PID: 101, TypeID: 2160, Count: 50},  // crystal coins inside
		{SID: 103, PID: 101, TypeID: 1987},             // bag inside backpack
		{SID: 104, PID: 103, TypeID: 2152, Count: 100}, // platinum inside bag
		{SID: 105, PID: 5, TypeID: 2400},               // sword in slot 5
	}

	roots, err := BuildItemTree(rows)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	backpack := roots[0]
	assert.Equal(t, int32(3), backpack.SlotID)
	require.Len(t, backpack.Children, 2)
	assert.Equal(t, uint16(2160), backpack.Children[0].TypeID)

	bag := backpack.Children[1]
	require.Len(t, bag.Children, 1)
	assert.Equal(t, int32(100), bag.Children[0].Count)

	assert.Equal(t, int32(5), roots[1].SlotID)
	assert.Empty(t, roots[1].Children)
}

func TestBuildItemTree_OrphanFailsFacet(t *testing.T) {
	rows := []ItemRow{
		{SID: 101, PID: 3, TypeID: 1988},
		{SID: 102, PID: 999, TypeID: 2160}, // parent 999 never seen
	}

	_, err := BuildItemTree(rows)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ITEM_ROW_ORPHANED")
	errutil.AssertErrorContext(t, err, "pid", int32(999))
}

func TestBuildItemTree_ChildBeforeParentIsOrphan(t *testing.T) {
	// Parents must precede children; a forward reference is an orphan even
	// though the sid appears later.
	rows := []ItemRow{
		{SID: 102, PID: 103, TypeID: 2160},
		{SID: 103, PID: 3, TypeID: 1988},
	}

	_, err := BuildItemTree(rows)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ITEM_ROW_ORPHANED")
}

func TestBuildItemTree_SIDBelowFirstSerial(t *testing.T) {
	rows := []ItemRow{{SID: 100, PID: 3, TypeID: 1988}}

	_, err := BuildItemTree(rows)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ITEM_ROW_INVALID")
}

func TestBuildItemTree_DuplicateSID(t *testing.T) {
	rows := []ItemRow{
		{SID: 101, PID: 3, TypeID: 1988},
		{SID: 101, PID: 4, TypeID: 2400},
	}

	_, err := BuildItemTree(rows)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ITEM_ROW_INVALID")
}

func TestBuildItemTree_Empty(t *testing.T) {
	roots, err := BuildItemTree(nil)
	require.NoError(t, err)
	assert.Empty(t, roots)
}

func TestFlattenItemTree_RoundTrip(t *testing.T) {
	rows := []ItemRow{
		{SID: 101, PID: 3, TypeID: 1988},
		{SID: 102, PID: 101, TypeID: 2160, Count: 50},
		{SID: 103, PID: 101, TypeID: 1987},
		{SID: 104, PID: 103, TypeID: 2152, Count: 100, Attributes: []byte{0x01, 0x02}},
		{SID: 105, PID: 5, TypeID: 2400},
	}

	roots, err := BuildItemTree(rows)
	require.NoError(t, err)

	assert.Equal(t, rows, FlattenItemTree(roots), "flatten must invert build")
}

func TestFlattenItemTree_Idempotent(t *testing.T) {
	roots := []*Item{
		{TypeID: 1988, SlotID: 3, Children: []*Item{
			{TypeID: 2160, Count: 50},
		}},
	}

	first := FlattenItemTree(roots)
	second := FlattenItemTree(roots)
	assert.Equal(t, first, second, "repeated flatten of unchanged trees must match")
}

func TestCountItems(t *testing.T) {
	roots := []*Item{
		{TypeID: 1988, Children: []*Item{
			{TypeID: 2160},
			{TypeID: 1987, Children: []*Item{
				{TypeID: 2152},
			}},
		}},
		{TypeID: 2400},
	}

	assert.Equal(t, 5, CountItems(roots))
	assert.Equal(t, 0, CountItems(nil))
}
