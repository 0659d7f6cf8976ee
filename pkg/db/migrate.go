package db

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	schema "github.com/doodlesbykumbi/password-manager-in-go/db"
)

// MigrationsTable is the golang-migrate bookkeeping table. A dedicated name
// leaves schema_migrations free for the host application.
const MigrationsTable = "passmgr_schema_migrations"

// ErrNoVersion is returned by Version before any migration has run
var ErrNoVersion = errors.New("no migrations have been applied yet")

// Migrator applies the schema migrations
type Migrator struct {
	m *migrate.Migrate
}

// MigrationURL returns dbURL with the custom migrations table parameter
func MigrationURL(dbURL string) string {
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + MigrationsTable
	}
	return dbURL + "?x-migrations-table=" + MigrationsTable
}

// NewMigrator creates a Migrator for dbURL. Migrations are read from the
// embedded files, or from sourcePath on disk when it is not empty.
func NewMigrator(dbURL, sourcePath string) (*Migrator, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var (
		m   *migrate.Migrate
		err error
	)
	if sourcePath != "" {
		m, err = migrate.New("file://"+sourcePath, MigrationURL(dbURL))
	} else {
		var migrationsFS fs.FS
		migrationsFS, err = fs.Sub(schema.Migrations, "migrations")
		if err != nil {
			return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
		}
		d, dErr := iofs.New(migrationsFS, ".")
		if dErr != nil {
			return nil, fmt.Errorf("failed to create iofs driver: %w", dErr)
		}
		m, err = migrate.NewWithSourceInstance("iofs", d, MigrationURL(dbURL))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Up applies all pending migrations. It reports false when the schema was
// already up to date.
func (m *Migrator) Up() (bool, error) {
	if err := m.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("migration failed: %w", err)
	}
	return true, nil
}

// Down rolls back the given number of migrations
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	if err := m.m.Steps(-steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

// Version returns the applied schema version and whether it is dirty
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, ErrNoVersion
		}
		return 0, false, err
	}
	return version, dirty, nil
}

// Close releases the source and database handles
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

// MigrationFiles lists the embedded up migrations in order
func MigrationFiles() ([]string, error) {
	migrationsFS, err := fs.Sub(schema.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
