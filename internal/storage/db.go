// Package storage persists finished sessions and answers the history and
// stats queries. It speaks two dialects through database/sql: embedded
// SQLite for the default single-user install, Postgres for a shared one.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/mobil80solutionsservices-ctrl/Posturely-sub001/internal/config"
)

// DB wraps a database handle and provides repository methods.
type DB struct {
	sql    *sql.DB
	driver string
}

// Open connects to the configured database and verifies it is reachable.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	driver, dsn := cfg.DSN()
	h, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// modernc sqlite serializes writes itself; a single connection
		// avoids table-lock errors under concurrent use.
		h.SetMaxOpenConns(1)
	}
	if err := h.PingContext(ctx); err != nil {
		h.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{sql: h, driver: driver}, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error {
	return db.sql.Close()
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(cfg config.DatabaseConfig, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
