package database

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus is the schema version recorded in a database
type MigrationStatus struct {
	Applied bool
	Version uint
	Dirty   bool
}

// migrationDatabaseURL reads the URL straight from the environment so the
// migrate commands work without pool settings
func migrationDatabaseURL() string {
	return ConstructDatabaseURL(os.Getenv("DATABASE_URL"), os.Getenv("DATABASE_NAME"))
}

// MigrateUp applies all pending migrations to the configured database
func MigrateUp() error {
	return RunMigrationsWithURL(migrationDatabaseURL())
}

// RunMigrationsWithURL applies all pending migrations to databaseURL
func RunMigrationsWithURL(databaseURL string) error {
	return withMigrate(databaseURL, func(m *migrate.Migrate) error {
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Debug("Schema is up to date")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logVersion(m, "Schema migrated")
		return nil
	})
}

// MigrateDown rolls back stepsStr migrations on the configured database
func MigrateDown(stepsStr string) error {
	steps, err := strconv.Atoi(stepsStr)
	if err != nil || steps <= 0 {
		return fmt.Errorf("invalid steps value %q", stepsStr)
	}

	return withMigrate(migrationDatabaseURL(), func(m *migrate.Migrate) error {
		err := m.Steps(-steps)
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No migrations to roll back")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		logVersion(m, "Schema rolled back")
		return nil
	})
}

// MigrateStatus logs the schema version of the configured database
func MigrateStatus() error {
	status, err := ReadMigrationStatus(migrationDatabaseURL())
	if err != nil {
		return err
	}
	if !status.Applied {
		log.Info("No migrations have been applied yet")
		return nil
	}
	log.WithFields(log.Fields{
		"version": status.Version,
		"dirty":   status.Dirty,
	}).Info("Current migration version")
	return nil
}

// ReadMigrationStatus returns the schema version of databaseURL
func ReadMigrationStatus(databaseURL string) (*MigrationStatus, error) {
	status := &MigrationStatus{}
	err := withMigrate(databaseURL, func(m *migrate.Migrate) error {
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get migration version: %w", err)
		}
		status.Applied, status.Version, status.Dirty = true, version, dirty
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func withMigrate(databaseURL string, fn func(m *migrate.Migrate) error) error {
	log.WithField("database", redactURL(databaseURL)).Debug("Opening migration connection")

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	driver, err := postgres.WithInstance(stdlib.OpenDB(*config.ConnConfig), &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	return fn(m)
}

func logVersion(m *migrate.Migrate, msg string) {
	version, dirty, err := m.Version()
	if err != nil {
		log.WithError(err).Info(msg)
		return
	}
	log.WithFields(log.Fields{"version": version, "dirty": dirty}).Info(msg)
}

// redactURL hides the password of a database URL for logging
func redactURL(databaseURL string) string {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "<unparseable>"
	}
	return parsed.Redacted()
}
