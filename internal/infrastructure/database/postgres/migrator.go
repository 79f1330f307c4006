package postgres

import (
	goerrors "errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file source driver

	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Schema migrations (golang-migrate)
// ─────────────────────────────────────────────────────────────────────────────

// RunMigrations applies all pending migrations from migrationsPath (a
// golang-migrate source URL such as "file://migrations"). It is called on
// startup and by `hscode migrate up`. A database that is already up to date
// is not an error.
func RunMigrations(dbURL string, migrationsPath string) error {
	m, err := migrate.New(migrationsPath, dbURL)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBConnectionError, "failed to create migrate instance")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !goerrors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to run migrations")
	}
	return nil
}

// RollbackMigrations rolls the schema back by the given number of steps.
// Used by `hscode migrate down`.
func RollbackMigrations(dbURL string, migrationsPath string, steps int) error {
	if steps <= 0 {
		return errors.InvalidParam("steps must be greater than 0")
	}

	m, err := migrate.New(migrationsPath, dbURL)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBConnectionError, "failed to create migrate instance")
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil {
		if goerrors.Is(err, migrate.ErrNoChange) {
			return errors.InvalidState("no migrations to roll back")
		}
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to roll back migrations")
	}
	return nil
}

// MigrationStatus reports the currently applied migration version and whether
// the schema is dirty. A dirty schema means a previous migration failed partway
// and needs manual repair before further migrations run.
func MigrationStatus(dbURL string, migrationsPath string) (version uint, dirty bool, err error) {
	m, err := migrate.New(migrationsPath, dbURL)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.CodeDBConnectionError, "failed to create migrate instance")
	}
	defer m.Close()

	version, dirty, err = m.Version()
	if err != nil {
		if goerrors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, errors.CodeDBQueryError, "failed to read migration version")
	}
	return version, dirty, nil
}

// ForceMigrationVersion overwrites the recorded schema version without running
// any migration. Only for recovering from a dirty state.
func ForceMigrationVersion(dbURL string, migrationsPath string, version int) error {
	m, err := migrate.New(migrationsPath, dbURL)
	if err != nil {
		return errors.Wrap(err, errors.CodeDBConnectionError, "failed to create migrate instance")
	}
	defer m.Close()

	if err := m.Force(version); err != nil {
		return errors.Wrap(err, errors.CodeDBQueryError, "failed to force migration version")
	}
	return nil
}

//Personal.AI order the ending
