package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	pgdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	readyInterval = 500 * time.Millisecond
	readyAttempts = 30
)

// RunMigrations brings the ledger schema up to date and logs the resulting version.
func RunMigrations(ctx context.Context, db *DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	sqldb, err := sql.Open("pgx", db.Pool.Config().ConnString())
	if err != nil {
		return fmt.Errorf("open sql db: %w", err)
	}
	defer sqldb.Close()

	// a fresh server may refuse connections for a few seconds
	ready := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(readyInterval), readyAttempts), ctx)
	if err := backoff.Retry(func() error { return sqldb.PingContext(ctx) }, ready); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	m, err := newMigrator(sqldb)
	if err != nil {
		return err
	}
	defer m.Close()
	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return fmt.Errorf("migrate up: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("migrate version: %w", err)
	}
	log.Info("pg.schema_ready", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func newMigrator(sqldb *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrate src: %w", err)
	}
	driver, err := pgdriver.WithInstance(sqldb, &pgdriver.Config{MigrationsTable: "stakeledger_schema_migrations"})
	if err != nil {
		return nil, fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migrate init: %w", err)
	}
	return m, nil
}
