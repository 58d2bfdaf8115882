// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/duskhaven/duskhaven/internal/config"
	"github.com/duskhaven/duskhaven/internal/store"
)

// NewMigrateCmd creates the migrate subcommand with up/down/status verbs.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long:  `Apply, roll back, or inspect schema migrations on the PostgreSQL database.`,
	}

	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  runMigrateUp,
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations (drops all data)",
			RunE:  runMigrateDown,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current migration version",
			RunE:  runMigrateStatus,
		},
	)

	return cmd
}

func newMigrator(cmd *cobra.Command) (*store.Migrator, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return store.NewMigrator(cfg.Database.URL)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	cmd.Println("Running migrations...")
	if err := m.Up(); err != nil {
		return err
	}
	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	cmd.Println("Rolling back migrations...")
	if err := m.Down(); err != nil {
		return err
	}
	cmd.Println("Rollback completed")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	m, err := newMigrator(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 && !dirty {
		cmd.Println("No migrations applied")
		return nil
	}
	cmd.Printf("Version: %d (dirty: %v)\n", version, dirty)
	return nil
}
