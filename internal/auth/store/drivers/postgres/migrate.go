package postgres

import (
	"fmt"

	"github.com/aussiebroadwan/novastudy/internal/auth/store"
	"github.com/aussiebroadwan/novastudy/internal/auth/store/drivers/postgres/migrations"

	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
)

// ApplyMigrations brings the schema up to date from the embedded files.
func (s *Store) ApplyMigrations() error {
	driver, err := pgmigrate.WithInstance(s.db, &pgmigrate.Config{})
	if err != nil {
		return fmt.Errorf("postgres driver: %w", err)
	}
	return store.Migrate(migrations.Migrations, "postgres", driver)
}
