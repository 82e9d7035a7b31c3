package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
//
// The pool is limited to a single connection: SQLite allows one writer at
// a time, and a single connection makes every transaction (position
// rewrites, cascading deletes) run to completion before the next begins.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// RowCounts is the number of rows in each table.
type RowCounts struct {
	Users          int `db:"users" json:"users"`
	Preferences    int `db:"preferences" json:"preferences"`
	Projects       int `db:"projects" json:"projects"`
	Contexts       int `db:"contexts" json:"contexts"`
	Todos          int `db:"todos" json:"todos"`
	RecurringTodos int `db:"recurring_todos" json:"recurring_todos"`
	Notes          int `db:"notes" json:"notes"`
	Dependencies   int `db:"dependencies" json:"dependencies"`
}

// Counts returns table sizes across all users.
func (s *SQLiteStore) Counts(ctx context.Context) (RowCounts, error) {
	var c RowCounts
	err := s.db.GetContext(ctx, &c, `
		SELECT
			(SELECT COUNT(*) FROM users)           AS users,
			(SELECT COUNT(*) FROM preferences)     AS preferences,
			(SELECT COUNT(*) FROM projects)        AS projects,
			(SELECT COUNT(*) FROM contexts)        AS contexts,
			(SELECT COUNT(*) FROM todos)           AS todos,
			(SELECT COUNT(*) FROM recurring_todos) AS recurring_todos,
			(SELECT COUNT(*) FROM notes)           AS notes,
			(SELECT COUNT(*) FROM dependencies)    AS dependencies`)
	if err != nil {
		return RowCounts{}, fmt.Errorf("counting rows: %w", err)
	}
	return c, nil
}

// withTx runs fn inside a transaction, committing when it returns nil.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// now is the timestamp written to created_at/updated_at columns.
func now() time.Time {
	return time.Now().UTC()
}

// utcPtr normalises an optional timestamp to UTC so stored values compare
// correctly as text.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// groupCounts scans "key, count" rows into a map.
func groupCounts(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (map[string]int, error) {
	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key   *string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scanning group count: %w", err)
		}
		k := ""
		if key != nil {
			k = *key
		}
		counts[k] = count
	}
	return counts, rows.Err()
}
