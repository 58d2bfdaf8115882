// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/duskhaven/duskhaven/internal/config"
	"github.com/duskhaven/duskhaven/internal/store"
)

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database and presence status",
		Long:  `Check database connectivity and report the schema version and row counts.`,
		RunE:  runStatus,
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	cmd.Println("Database: reachable")

	m, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Schema version: %d (dirty: %v)\n", version, dirty)

	var accounts, players, online int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&accounts); err != nil {
		return oops.Code("STATUS_QUERY_FAILED").With("table", "accounts").Wrap(err)
	}
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM players WHERE deleted_at IS NULL`).Scan(&players); err != nil {
		return oops.Code("STATUS_QUERY_FAILED").With("table", "players").Wrap(err)
	}
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM players_online`).Scan(&online); err != nil {
		return oops.Code("STATUS_QUERY_FAILED").With("table", "players_online").Wrap(err)
	}

	cmd.Printf("Accounts: %d\n", accounts)
	cmd.Printf("Players: %d\n", players)
	cmd.Printf("Online: %d\n", online)
	return nil
}
