// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package player

import (
	"github.com/samber/oops"
)

// FirstItemSID is the first serial id assigned to stored item rows. PIDs
// below it address equipment slots or depot boxes; PIDs at or above it
// address a parent item row by its SID.
const FirstItemSID int32 = 101

// BuildItemTree reconstructs container trees from flat sid/pid rows.
// Rows must list parents before children; a child whose PID matches no
// earlier SID is an orphan and fails the whole facet.
func BuildItemTree(rows []ItemRow) ([]*Item, error) {
	roots := make([]*Item, 0, len(rows))
	bySID := make(map[int32]*Item, len(rows))

	for _, row := range rows {
		if row.SID < FirstItemSID {
			return nil, oops.Code("ITEM_ROW_INVALID").
				With("sid", row.SID).
				Errorf("item sid %d below first serial %d", row.SID, FirstItemSID)
		}
		if _, dup := bySID[row.SID]; dup {
			return nil, oops.Code("ITEM_ROW_INVALID").
				With("sid", row.SID).
				Errorf("duplicate item sid %d", row.SID)
		}

		item := &Item{
			TypeID:     row.TypeID,
			Count:      row.Count,
			Attributes: row.Attributes,
		}
		bySID[row.SID] = item

		if row.PID < FirstItemSID {
			item.SlotID = row.PID
			roots = append(roots, item)
			continue
		}

		parent, ok := bySID[row.PID]
		if !ok {
			return nil, oops.Code("ITEM_ROW_ORPHANED").
				With("sid", row.SID).
				With("pid", row.PID).
				Errorf("item row %d references unknown parent %d", row.SID, row.PID)
		}
		parent.Children = append(parent.Children, item)
	}

	return roots, nil
}

// FlattenItemTree is the inverse of BuildItemTree: it walks the trees
// depth-first, assigns serial ids starting at FirstItemSID, and emits flat
// rows with parents preceding children. Running it twice over the same trees
// yields identical rows, which keeps delete-then-reinsert savers idempotent.
func FlattenItemTree(roots []*Item) []ItemRow {
	rows := make([]ItemRow, 0, len(roots))
	nextSID := FirstItemSID

	var walk func(item *Item, pid int32)
	walk = func(item *Item, pid int32) {
		sid := nextSID
		nextSID++
		rows = append(rows, ItemRow{
			SID:        sid,
			PID:        pid,
			TypeID:     item.TypeID,
			Count:      item.Count,
			Attributes: item.Attributes,
		})
		for _, child := range item.Children {
			walk(child, sid)
		}
	}

	for _, root := range roots {
		walk(root, root.SlotID)
	}
	return rows
}

// CountItems returns the total number of items in the given trees,
// containers included.
func CountItems(roots []*Item) int {
	total := 0
	for _, root := range roots {
		total += 1 + CountItems(root.Children)
	}
	return total
}
