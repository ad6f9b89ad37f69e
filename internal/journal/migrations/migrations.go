// Package migrations holds the run journal's schema and applies it with
// golang-migrate. Schema files are embedded in the binary.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var schemaFiles embed.FS

var (
	// ErrNoSchema means the journal has never been migrated.
	ErrNoSchema = errors.New("journal has no schema")

	// ErrSchemaBehind means MigrateUp would bring the journal up to date.
	ErrSchemaBehind = errors.New("journal schema is older than this logtidy")

	// ErrSchemaAhead means the journal was written by a newer logtidy.
	ErrSchemaAhead = errors.New("journal schema is newer than this logtidy")

	// ErrSchemaDirty means an earlier migration stopped halfway.
	ErrSchemaDirty = errors.New("journal schema is dirty")
)

// CheckSchema compares the journal's schema version with the embedded
// schema files. A nil error means the journal can be used as is.
func CheckSchema(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	// not closed: Close would also close db

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return ErrNoSchema
	}
	if err != nil {
		return fmt.Errorf("reading journal schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("%w at version %d", ErrSchemaDirty, version)
	}

	latest, err := embeddedVersion()
	if err != nil {
		return err
	}
	switch {
	case version < latest:
		return fmt.Errorf("%w: at version %d, want %d", ErrSchemaBehind, version, latest)
	case version > latest:
		return fmt.Errorf("%w: at version %d, this binary knows %d", ErrSchemaAhead, version, latest)
	}
	return nil
}

// MigrateUp applies every pending schema file. It is a no-op on an
// up-to-date journal.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying journal schema: %w", err)
	}
	return nil
}

// Prepare brings a journal to the embedded schema version. A journal from a
// newer logtidy or one left dirty is refused untouched.
func Prepare(db *sql.DB) error {
	err := CheckSchema(db)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNoSchema) && !errors.Is(err, ErrSchemaBehind) {
		return err
	}
	if err := MigrateUp(db); err != nil {
		return err
	}
	return CheckSchema(db)
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(schemaFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("loading journal schema files: %w", err)
	}

	drv, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("attaching schema tracking to journal: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("preparing journal schema migration: %w", err)
	}
	return m, nil
}

func embeddedVersion() (uint, error) {
	src, err := iofs.New(schemaFiles, "files")
	if err != nil {
		return 0, fmt.Errorf("loading journal schema files: %w", err)
	}
	defer src.Close()

	v, err := LatestVersion(src)
	if err != nil {
		return 0, fmt.Errorf("finding latest journal schema: %w", err)
	}
	return v, nil
}

// LatestVersion walks src to its last version.
func LatestVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			// end of chain
			return v, nil
		}
		v = next
	}
}
