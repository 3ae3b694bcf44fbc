// Package migration runs and scaffolds the SQL schema migrations.
package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Status is the schema version recorded in schema_migrations. Version 0
// means nothing has been applied.
type Status struct {
	Version uint
	Dirty   bool
}

// Migrator applies the numbered SQL files in a migrations directory
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// New binds a Migrator to an open postgres connection
func New(db *sql.DB, dir string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("load migrations from %s: %w", dir, err)
	}
	return &Migrator{m: m, logger: logger.Named("migrate")}, nil
}

// apply runs step and logs the resulting status. A run with nothing to do
// succeeds.
func (mg *Migrator) apply(op string, step func() error, fields ...zap.Field) error {
	log := mg.logger.With(append(fields, zap.String("op", op))...)
	log.Info("Migration started")

	err := step()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("Schema already current")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}

	st, err := mg.Status()
	if err != nil {
		return err
	}
	log.Info("Migration finished", zap.Uint("version", st.Version), zap.Bool("dirty", st.Dirty))
	return nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	return mg.apply("up", mg.m.Up)
}

// Down reverts every applied migration
func (mg *Migrator) Down() error {
	return mg.apply("down", mg.m.Down)
}

// Steps moves n migrations forward, or back when n is negative
func (mg *Migrator) Steps(n int) error {
	return mg.apply("steps", func() error { return mg.m.Steps(n) }, zap.Int("steps", n))
}

// GoTo migrates up or down to version
func (mg *Migrator) GoTo(version uint) error {
	return mg.apply("goto", func() error { return mg.m.Migrate(version) }, zap.Uint("target", version))
}

func (mg *Migrator) Status() (Status, error) {
	version, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return Status{}, nil
	case err != nil:
		return Status{}, fmt.Errorf("read migration version: %w", err)
	}
	return Status{Version: version, Dirty: dirty}, nil
}

// Force records version without running anything. Used to clear a dirty
// flag after a failed migration was repaired by hand.
func (mg *Migrator) Force(version int) error {
	mg.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every object in the database
func (mg *Migrator) Drop() error {
	mg.logger.Warn("Dropping all database objects")
	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
