// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Duskhaven Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/duskhaven/duskhaven/internal/config"
	"github.com/duskhaven/duskhaven/internal/logging"
	"github.com/duskhaven/duskhaven/internal/observability"
	playerpg "github.com/duskhaven/duskhaven/internal/player/postgres"
	"github.com/duskhaven/duskhaven/internal/presence"
	"github.com/duskhaven/duskhaven/internal/store"
	"github.com/duskhaven/duskhaven/pkg/errutil"
)

// serveFlags holds the flags specific to the serve command that are not
// part of the config tree.
type serveFlags struct {
	automigrate bool
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the persistence service",
		Long: `Start the persistence service: connects to PostgreSQL, applies pending
schema migrations, resets presence state, and serves metrics and health
probes until interrupted. The load/save pipelines and the authentication
gate are exposed as a library to the embedding game server.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, flags, nil)
		},
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	cmd.Flags().String("auth-mode", config.DefaultAuthMode, "authentication mode (password or session)")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&flags.automigrate, "automigrate", true, "apply pending migrations on startup")

	return cmd
}

// runServeWithDeps starts the persistence service with injectable
// dependencies. If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, flags *serveFlags, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}

	// Set up default factories
	if deps.PoolFactory == nil {
		deps.PoolFactory = func(ctx context.Context, url string) (Pool, error) {
			return store.Connect(ctx, url)
		}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(url string) (AutoMigrator, error) {
			return store.NewMigrator(url)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("duskhaven", version, cfg.Log.Format, cfg.Log.Level)

	slog.Info("starting persistence service",
		"auth_mode", cfg.Auth.Mode,
		"log_format", cfg.Log.Format,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := deps.PoolFactory(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	defer pool.Close()

	slog.Info("connected to database")

	if flags.automigrate {
		migrator, err := deps.MigratorFactory(cfg.Database.URL)
		if err != nil {
			return oops.Code("MIGRATION_INIT_FAILED").Wrap(err)
		}
		migrateErr := migrator.Up()
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr)
		}
		if migrateErr != nil {
			return oops.Code("MIGRATION_FAILED").Wrap(migrateErr)
		}
		slog.Info("schema migrations applied")
	}

	// Drop presence rows left behind by an unclean shutdown.
	tracker := presence.NewTracker(pool, slog.Default())
	if err := tracker.Reset(ctx); err != nil {
		return err
	}

	// Start observability server if configured
	var obsServer ObservabilityServer
	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		playerpg.RegisterMetrics(obsServer.Registry())
		presence.RegisterMetrics(obsServer.Registry())

		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(obsErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Persistence service started")
	slog.Info("persistence service ready")

	// Wait for shutdown signal or cancellation
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	// Graceful shutdown
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", errutil.Attrs(err)...)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// monitorServerErrors monitors a server's error channel and cancels the
// context on error so a background server failure triggers graceful
// shutdown of the whole process. It exits when an error is received, the
// channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			errutil.LogError(slog.Default().With("server", serverName),
				"server error, triggering shutdown", err)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}
