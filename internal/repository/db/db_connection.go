package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Open opens a database for the given driver and fails fast if it cannot be reached.
// The schema is not touched; call Migrate for that.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		return openSQLite(dsn)
	case DriverPostgres:
		return openPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite is not great with many writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func openPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// prepareGoose points goose at the embedded migrations of the driver's dialect
// and returns the directory to run from.
func prepareGoose(driver string, log goose.Logger) (string, error) {
	var dialect, dir string
	switch driver {
	case DriverSQLite:
		dialect, dir = "sqlite3", "migrations/sqlite"
	case DriverPostgres:
		dialect, dir = "postgres", "migrations/postgres"
	default:
		return "", fmt.Errorf("unsupported db driver %q", driver)
	}

	if log == nil {
		log = goose.NopLogger()
	}
	goose.SetLogger(log)
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect %q: %w", dialect, err)
	}
	return dir, nil
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sql.DB, driver string, log goose.Logger) error {
	dir, err := prepareGoose(driver, log)
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Reset rolls back every applied migration, dropping all tables.
func Reset(ctx context.Context, db *sql.DB, driver string, log goose.Logger) error {
	dir, err := prepareGoose(driver, log)
	if err != nil {
		return err
	}
	if err := goose.ResetContext(ctx, db, dir); err != nil {
		return fmt.Errorf("reset migrations: %w", err)
	}
	return nil
}

// Rebind rewrites '?' placeholders into the driver's native form.
// Queries in this project never contain literal question marks.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
