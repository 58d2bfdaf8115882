// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package player

import (
	"encoding/binary"

	"github.com/samber/oops"
)

// EncodeRaceList packs race ids into the little-endian blob format used by
// the prey, task-hunting, charm and bosstiary tracker columns.
func EncodeRaceList(races []uint16) []byte {
	if len(races) == 0 {
		return nil
	}
	buf := make([]byte, 2*len(races))
	for i, race := range races {
		binary.LittleEndian.PutUint16(buf[2*i:], race)
	}
	return buf
}

// DecodeRaceList unpacks a race-id blob. A nil or empty blob decodes to nil;
// an odd-length blob is malformed and fails the owning facet.
func DecodeRaceList(blob []byte) ([]uint16, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	if len(blob)%2 != 0 {
		return nil, oops.Code("RACE_LIST_MALFORMED").
			With("length", len(blob)).
			Errorf("race list blob has odd length %d", len(blob))
	}
	races := make([]uint16, len(blob)/2)
	for i := range races {
		races[i] = binary.LittleEndian.Uint16(blob[2*i:])
	}
	return races, nil
}
