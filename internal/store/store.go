package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"gitlab.com/dirk.krummacker/people-notebook/internal/config"
)

//go:embed migrations/sqlite3/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when an entity with the requested id does not exist.
var ErrNotFound = errors.New("not found")

// Store is the handle to the notebook database. It is created once at startup and handed to
// the HTTP service and the reminder scheduler; there is no package level connection.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// New wraps an already opened database. The database argument can be a real database for
// production use or a mock database within unit tests. No migrations are run.
func New(db *sqlx.DB) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Open connects to the database selected by the configuration and migrates it to the latest
// schema version.
//
// SQLite is configured with a single connection, WAL journaling, a 5 second busy timeout and
// enforced foreign keys. The parent directory of the database file is created if necessary.
func Open(cfg *config.Config) (*Store, error) {
	var db *sqlx.DB
	var err error
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err = openSQLite(cfg.DBPath)
	case config.DriverMySQL:
		db, err = openMySQL(cfg.DBDSN)
	default:
		err = fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, err
	}

	s := New(db)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func openSQLite(path string) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	dsn := "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	db, err := sqlx.Open(config.DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func openMySQL(dsn string) (*sqlx.DB, error) {
	mysqlCfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	mysqlCfg.ParseTime = true
	// migration files contain several statements each
	mysqlCfg.MultiStatements = true
	db, err := sqlx.Open(config.DriverMySQL, mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate applies all embedded migrations of the store's SQL dialect that have not been
// applied yet. Migrations only ever add tables, columns and indexes. Calling it on an up to
// date database is a no-op.
func (s *Store) Migrate() error {
	driverName := s.db.DriverName()
	source, err := iofs.New(migrationsFS, "migrations/"+driverName)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var m *migrate.Migrate
	switch driverName {
	case config.DriverSQLite:
		driver, err := migratesqlite.WithInstance(s.db.DB, &migratesqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to create migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, driverName, driver)
		if err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
	case config.DriverMySQL:
		driver, err := migratemysql.WithInstance(s.db.DB, &migratemysql.Config{})
		if err != nil {
			return fmt.Errorf("failed to create migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", source, driverName, driver)
		if err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
	default:
		return fmt.Errorf("no migrations for driver %q", driverName)
	}

	// m.Close is not called on purpose: it would close the shared database handle.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Version returns the currently applied schema version.
func (s *Store) Version() (uint, error) {
	var version uint
	err := s.db.Get(&version, "SELECT version FROM schema_migrations LIMIT 1")
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Ping verifies that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// notFound translates sql.ErrNoRows into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
