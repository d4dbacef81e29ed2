package tabstore

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/cohortpulse/cohortpulse/schema"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate runs store migrations against an open connection.
// - targetVersion < 0 migrates to the latest version.
// - targetVersion == 0 rolls back all migrations.
// - targetVersion > 0 migrates to that version.
func Migrate(db *sql.DB, backend schema.StoreBackend, targetVersion int) error {
	var driver database.Driver
	var err error

	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case schema.PostgreSQLBackend:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return fmt.Errorf("migrations are not supported for backend %s", backend)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	migrationFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "cohortpulse", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	currentVersion, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("store is in a dirty state at version %d; fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}

// MigrateTo opens a connection for the given backend and migrates it to the
// target version. Unlike Open it does not require an already-migrated store,
// so it works against a fresh database.
func MigrateTo(backend schema.StoreBackend, connStr string, targetVersion int) error {
	var driverName string
	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
	case schema.MySQLBackend:
		driverName = "mysql"
	case schema.PostgreSQLBackend:
		driverName = "pgx"
	default:
		return fmt.Errorf("migrations are not supported for backend %s", backend)
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", backend, err)
	}
	defer func() { _ = db.Close() }()
	if backend == schema.SQLiteBackend {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to %s store: %w", backend, err)
	}
	return Migrate(db, backend, targetVersion)
}
