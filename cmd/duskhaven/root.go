// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Duskhaven CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duskhaven",
		Short: "Duskhaven - player persistence server",
		Long: `Duskhaven runs the player persistence service: character load and
save pipelines, account authentication, and online presence tracking.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
