package db

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/alumnet/apiserver/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// newMigrator opens a dedicated connection; closing the migrator closes it.
func newMigrator(ctx context.Context, cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	conn, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies every pending up migration.
func MigrateUp(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) error {
	m, err := newMigrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	logVersion(m, logger)
	return nil
}

// MigrateDown rolls back the given number of migrations, or all of them when
// steps is zero.
func MigrateDown(ctx context.Context, cfg config.DatabaseConfig, steps int, logger *zap.Logger) error {
	m, err := newMigrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = m.Close()
	}()

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	logVersion(m, logger)
	return nil
}

func logVersion(m *migrate.Migrate, logger *zap.Logger) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("database has no migrations applied")
	case err != nil:
		logger.Warn("could not read migration version", zap.Error(err))
	case dirty:
		logger.Warn("database migration is dirty", zap.Uint("version", version))
	default:
		logger.Info("database migrated", zap.Uint("version", version))
	}
}
