package history

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// ErrDirtySchema means an earlier upgrade stopped halfway. The journal is not
// used until the schema is repaired by hand.
var ErrDirtySchema = errors.New("history schema is dirty")

// upgradeSchema brings the journal tables to the latest embedded version and
// returns that version. The migrate instance is left open because closing it
// would close db too.
func upgradeSchema(db *sql.DB) (uint, error) {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("failed to attach migrations to history database: %w", err)
	}

	source, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to read embedded history schema: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare history schema upgrade: %w", err)
	}

	err = m.Up()
	var dirty migrate.ErrDirty
	switch {
	case errors.As(err, &dirty):
		return 0, fmt.Errorf("%w at version %d", ErrDirtySchema, dirty.Version)
	case err != nil && !errors.Is(err, migrate.ErrNoChange):
		return 0, fmt.Errorf("failed to upgrade history schema: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read history schema version: %w", err)
	}

	return version, nil
}
