package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/satheeshds/fintrack/config"
	"github.com/satheeshds/fintrack/ledger"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Open connects to the configured database. SQLite runs in WAL mode with
// foreign keys on and writes timestamps in a sortable text format; the file's
// directory is created if missing.
func Open(cfg *config.Config) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		conn, err = sql.Open("pgx", cfg.DatabaseURL)
	default:
		conn, err = openSQLite(cfg.DBPath)
	}
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	slog.Info("database connected", "driver", cfg.DBDriver)
	return conn, nil
}

func openSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return conn, nil
}

// Migrate applies the embedded migrations for driver. Safe to call on every start.
func Migrate(ctx context.Context, conn *sql.DB, driver string) error {
	dialect, dir := goose.DialectSQLite3, "migrations/sqlite"
	if driver == config.DriverPostgres {
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}
	provider, err := goose.NewProvider(dialect, conn, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	for _, r := range results {
		slog.Info("applied migration", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// Store implements ledger.Store, auth.UserStore and the CRUD the handlers need
// over one *sql.DB.
type Store struct {
	db       *sql.DB
	postgres bool
}

func NewStore(conn *sql.DB, driver string) *Store {
	return &Store{db: conn, postgres: driver == config.DriverPostgres}
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface{ Scan(...any) error }

// notFound turns sql.ErrNoRows into ledger.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrNotFound
	}
	return err
}

// forUpdate locks selected rows on postgres; sqlite serializes writers already.
func (s *Store) forUpdate() string {
	if s.postgres {
		return " FOR UPDATE"
	}
	return ""
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func execOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
