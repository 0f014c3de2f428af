// Package database handles connection management and migration execution
// using goose. It supports SQLite (the default, via mattn/go-sqlite3) and
// PostgreSQL (via pgx), selected by driver name.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var embedMigrations embed.FS

// Driver names accepted by Connect and Migrate.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// sqliteUnicodeDriver is go-sqlite3 with lower() replaced by a Unicode
// case fold, so title searches fold "É" like PostgreSQL does. SQLite's
// built-in lower() only folds ASCII.
const sqliteUnicodeDriver = "sqlite3_unicode"

func init() {
	sql.Register(sqliteUnicodeDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", strings.ToLower, true)
		},
	})
}

// sqliteParams are appended to SQLite DSNs that do not set them already.
// Foreign keys are off by default in SQLite; _txlock=immediate takes the
// write lock at BEGIN so read-then-write transactions wait on busy_timeout
// instead of failing with SQLITE_BUSY.
var sqliteParams = []string{
	"_foreign_keys=on",
	"_busy_timeout=5000",
	"_journal_mode=WAL",
	"_txlock=immediate",
}

// Connect opens a connection pool for the given driver and DSN.
// It verifies the connection with a ping before returning.
func Connect(driver, dsn string) (*sql.DB, error) {
	sqlDriver := driver
	switch driver {
	case DriverSQLite:
		dsn = SQLiteDSN(dsn)
		sqlDriver = sqliteUnicodeDriver
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}

	slog.Info("database connected", "driver", driver)
	return db, nil
}

// SQLiteDSN adds the connection parameters the stores rely on.
func SQLiteDSN(dsn string) string {
	for _, p := range sqliteParams {
		key := p[:strings.Index(p, "=")+1]
		if strings.Contains(dsn, key) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + p
		} else {
			dsn += "?" + p
		}
	}
	return dsn
}

// Migrate runs all pending goose migrations for the driver's dialect.
// Migrations are embedded at compile time so no external files are needed
// at runtime.
func Migrate(db *sql.DB, driver string) error {
	dialect, dir := "sqlite3", "migrations/sqlite"
	if driver == DriverPostgres {
		dialect, dir = "postgres", "migrations/postgres"
	}

	goose.SetBaseFS(embedMigrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.Info("database migrations applied", "dialect", dialect)
	return nil
}
