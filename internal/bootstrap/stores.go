// Package bootstrap holds the wiring shared by the service binaries.
package bootstrap

import (
	"context"
	"fmt"

	"attendance.service/internal/adapters/memstore"
	"attendance.service/internal/config"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
	"attendance.service/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// NeedsDatabase reports whether the employee cache backend requires PostgreSQL.
func NeedsDatabase(cfg config.Config) bool {
	return cfg.EmployeeCacheBackend != config.BackendMemory
}

// OpenEmployeeStore builds the employee cache for the configured backend.
// pool may be nil for the memory backend.
func OpenEmployeeStore(cfg config.Config, pool *pgxpool.Pool) (repository.EmployeeStore, error) {
	switch cfg.EmployeeCacheBackend {
	case config.BackendMemory:
		return memstore.New()
	case config.BackendPostgres, "":
		if pool == nil {
			return nil, fmt.Errorf("employee cache backend %q needs a database pool", config.BackendPostgres)
		}
		return repository.NewEmployeeCacheRepository(pool), nil
	default:
		return nil, fmt.Errorf("unknown employee cache backend %q", cfg.EmployeeCacheBackend)
	}
}

// OpenDatabase connects the pgx pool, applying migrations first when RUN_MIGRATIONS is set.
func OpenDatabase(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.RunMigrations {
		if err := MigrateDatabase(ctx, cfg, database.MigrateUp); err != nil {
			return nil, err
		}
	}
	return database.NewPool(ctx, cfg)
}

// MigrateDatabase runs one migration action over an instrumented database/sql handle.
func MigrateDatabase(ctx context.Context, cfg config.Config, action string) error {
	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	status, err := database.Migrate(db, action)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", action, err)
	}
	log.Ctx(ctx).Info().
		Str("action", action).
		Uint("version", status.Version).
		Bool("dirty", status.Dirty).
		Bool("applied", status.Applied).
		Msg("Database migrations checked")
	return nil
}

// DeadLetterSink returns sink when a dead-letter queue is configured and nil otherwise,
// so handlers skip dead-lettering instead of failing on every rejected event.
func DeadLetterSink(ctx context.Context, cfg config.Config, sink messaging.DeadLetterSink) messaging.DeadLetterSink {
	if cfg.DeadLetterQueueURL == "" {
		log.Ctx(ctx).Warn().Msg("DEAD_LETTER_QUEUE_URL is empty, rejected employee events are only logged")
		return nil
	}
	return sink
}
