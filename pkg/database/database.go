package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver      string        `envconfig:"DRIVER" split_words:"true" default:"sqlite"`
	DSN         string        `envconfig:"DSN" split_words:"true" default:"file:data/reservations.db?_busy_timeout=5000"`
	Debug       bool          `envconfig:"DEBUG" split_words:"true" default:"false"`
	DialTimeout time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
}

// Open returns a bun DB for the configured driver. SQLite databases are
// limited to one open connection since every write is serialized anyway.
func Open(cfg Config) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("database dsn is required")
	}

	var db *bun.DB
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverSQLite, "sqlite3", "":
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres, "pg":
		opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
		if cfg.DialTimeout > 0 {
			opts = append(opts, pgdriver.WithDialTimeout(cfg.DialTimeout))
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if cfg.Debug {
		db.AddQueryHook(queryLogger{})
	}
	return db, nil
}

// ensureSQLiteDir creates the parent directory of a file-backed DSN.
func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.HasPrefix(path, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite directory: %w", err)
	}
	return nil
}
