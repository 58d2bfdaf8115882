// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package postgres

import (
	"context"
	"time"

	"github.com/duskhaven/duskhaven/internal/player"
)

// LoadByID fetches a snapshot and runs the load pipeline over it,
// returning a fully populated aggregate. On any sub-loader failure the
// partial aggregate is discarded.
func (r *PlayerRepository) LoadByID(ctx context.Context, id uint32, depth player.Depth) (*player.Player, error) {
	start := time.Now()
	p, err := r.load(ctx, depth, func(ctx context.Context) (*player.Snapshot, error) {
		return r.SnapshotByID(ctx, id, depth)
	})
	RecordLoadDuration(time.Since(start), err == nil)
	return p, err
}

// LoadByName is LoadByID keyed by the player's name.
func (r *PlayerRepository) LoadByName(ctx context.Context, name string, depth player.Depth) (*player.Player, error) {
	start := time.Now()
	p, err := r.load(ctx, depth, func(ctx context.Context) (*player.Snapshot, error) {
		return r.SnapshotByName(ctx, name, depth)
	})
	RecordLoadDuration(time.Since(start), err == nil)
	return p, err
}

func (r *PlayerRepository) load(ctx context.Context, depth player.Depth, fetch func(context.Context) (*player.Snapshot, error)) (*player.Player, error) {
	snap, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	p := &player.Player{}
	if err := player.Load(p, snap, depth); err != nil {
		return nil, err
	}
	return p, nil
}
