package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/duskhaven/duskhaven/internal/observability"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// PoolFactory opens the database connection pool.
	// Default: store.Connect
	PoolFactory func(ctx context.Context, url string) (Pool, error)

	// MigratorFactory creates a schema migrator for automigrate.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (AutoMigrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// Pool interface wraps the pgxpool.Pool methods used by serve.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// AutoMigrator interface wraps the store.Migrator methods used by automigrate.
type AutoMigrator interface {
	Up() error
	Close() error
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Registry() prometheus.Registerer
}
