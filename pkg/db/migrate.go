package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"makerspace/migrations"
	"makerspace/pkg/config"
)

// Migrate applies all pending up migrations. When cfg.MigrationsPath is empty
// the SQL files embedded in the binary are used.
func Migrate(cfg config.Config) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return err
	}
	return nil
}

// MigrationVersion reports the applied schema version.
func MigrationVersion(cfg config.Config) (uint, bool, error) {
	m, err := newMigrator(cfg)
	if err != nil {
		return 0, false, err
	}
	defer func() { _, _ = m.Close() }()

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func newMigrator(cfg config.Config) (*migrate.Migrate, error) {
	if cfg.MigrationsPath != "" {
		return migrate.New(cfg.MigrationsPath, MigrationConnString(cfg))
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("embedded migrations: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", src, MigrationConnString(cfg))
}
