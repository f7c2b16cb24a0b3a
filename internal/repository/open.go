package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured database and verifies the connection
func Open(ctx context.Context, driver, conn string) (*sql.DB, error) {
	switch normalizeDriver(driver) {
	case DriverPostgres:
		db, err := sql.Open(DriverPostgres, conn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, nil
	case DriverSQLite:
		if conn == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		if dir := filepath.Dir(conn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		db, err := sql.Open(DriverSQLite, conn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite prefers a single writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
		_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000")
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver: %q", driver)
	}
}

func normalizeDriver(driver string) string {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "sqlite3" {
		return DriverSQLite
	}
	return driver
}

var placeholderRe = regexp.MustCompile(`\$\d+`)

// rebind rewrites $N placeholders for drivers that only take '?'.
// Queries must use their placeholders in ascending order.
func rebind(driver, query string) string {
	if driver != DriverSQLite {
		return query
	}
	return placeholderRe.ReplaceAllString(query, "?")
}

func migrations(driver string) []string {
	amountType, timeType := "NUMERIC(20,4)", "TIMESTAMPTZ"
	if driver == DriverSQLite {
		amountType, timeType = "TEXT", "DATETIME"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS recurring_schedules (
			id               TEXT PRIMARY KEY,
			owner_id         TEXT NOT NULL,
			category_id      TEXT,
			movement_type    TEXT NOT NULL,
			regularity       TEXT NOT NULL,
			description      TEXT NOT NULL,
			amount           ` + amountType + ` NOT NULL,
			periodicity      TEXT NOT NULL,
			next_occurrence  ` + timeType + `,
			end_date         ` + timeType + `,
			active           BOOLEAN NOT NULL,
			execution_count  INTEGER NOT NULL DEFAULT 0,
			max_executions   INTEGER,
			last_executed_at ` + timeType + `,
			created_at       ` + timeType + ` NOT NULL,
			updated_at       ` + timeType + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recurring_schedules_owner ON recurring_schedules(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recurring_schedules_active ON recurring_schedules(active, next_occurrence)`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id            TEXT PRIMARY KEY,
			schedule_id   TEXT NOT NULL,
			owner_id      TEXT NOT NULL,
			movement_type TEXT NOT NULL,
			amount        ` + amountType + ` NOT NULL,
			description   TEXT NOT NULL,
			occurred_at   ` + timeType + ` NOT NULL,
			created_at    ` + timeType + ` NOT NULL,
			UNIQUE(schedule_id, occurred_at)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_schedule ON ledger_entries(schedule_id)`,
	}
}
