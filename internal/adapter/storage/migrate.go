package storage

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/storage/migrations"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/config"
)

// Migrate applies the embedded schema for driver. It opens its own
// connection, so it is safe to call before or after NewConnection.
func Migrate(driver, dsn string) error {
	src, err := iofs.New(migrations.FS, driver)
	if err != nil {
		return fmt.Errorf("open migrations for %s: %w", driver, err)
	}

	databaseURL, err := migrationURL(driver, dsn)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func migrationURL(driver, dsn string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return dsn, nil
	case config.DriverSQLite:
		return "sqlite://" + dsn, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}
