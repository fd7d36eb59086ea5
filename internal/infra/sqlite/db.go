// Package sqlite implements the shared transactional store: accounts and
// the token ledger, the content registry (posts, corrections), and the
// append-only purchase ledger.
//
// Every mutating core operation is one transaction — read, validate, write,
// commit — and the uniqueness invariants live in the schema, not in
// read-then-write checks:
//   - UNIQUE(user_id, post_id, content_type) on purchases
//   - a partial unique index allowing one selected correction per post
//   - CHECK (token_balance >= 0) on accounts
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/candid-forum/candid/internal/domain"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB wraps the SQLite handle with typed store operations.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := &DB{db: sqlDB}
	if err := db.Migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the underlying handle.
func (db *DB) Close() error {
	return db.db.Close()
}

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Token accounts. Balance can never go negative.
		`CREATE TABLE IF NOT EXISTS accounts (
			user_id       TEXT PRIMARY KEY,
			token_balance INTEGER NOT NULL DEFAULT 0 CHECK (token_balance >= 0),
			created_at    TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Token ledger: one row per balance change, written in the same
		// transaction as the change itself.
		`CREATE TABLE IF NOT EXISTS token_ledger (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       TEXT NOT NULL,
			entry_type    TEXT NOT NULL,
			reason        TEXT NOT NULL,
			amount        INTEGER NOT NULL,
			post_id       TEXT,
			balance_after INTEGER NOT NULL,
			created_at    TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user ON token_ledger(user_id, id)`,

		// Interview posts.
		`CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			author_id  TEXT NOT NULL,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL DEFAULT '',
			status     TEXT NOT NULL DEFAULT 'pending',
			is_public  INTEGER NOT NULL DEFAULT 0,
			corrected  INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_status ON posts(status)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id)`,

		// Corrections attached to posts.
		`CREATE TABLE IF NOT EXISTS corrections (
			id             TEXT PRIMARY KEY,
			post_id        TEXT NOT NULL,
			author_id      TEXT NOT NULL,
			content        TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT 'pending',
			is_selected    INTEGER NOT NULL DEFAULT 0,
			tokens_awarded INTEGER NOT NULL DEFAULT 0,
			created_at     TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_corrections_post ON corrections(post_id)`,
		`CREATE INDEX IF NOT EXISTS idx_corrections_status ON corrections(status)`,
		// At most one selected correction per post, enforced by the store.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_corrections_selected
			ON corrections(post_id) WHERE is_selected = 1`,

		// Append-only purchase ledger. The unique constraint is the
		// idempotency check the unlock service relies on.
		`CREATE TABLE IF NOT EXISTS purchases (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			post_id      TEXT NOT NULL,
			content_type TEXT NOT NULL,
			tokens_spent INTEGER NOT NULL,
			created_at   TEXT NOT NULL DEFAULT (datetime('now')),
			UNIQUE(user_id, post_id, content_type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id)`,
	}
}

// Migrate applies all schema migrations.
func (db *DB) Migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on any error.
// Partial effects cannot leak: all writes commit together or none do.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %v: %w", err, domain.ErrUnavailable)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %v: %w", err, domain.ErrUnavailable)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique/primary-key constraint
// failure from the driver.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

// isCheckViolation reports whether err is a CHECK constraint failure
// (the non-negative balance guard).
func isCheckViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_CHECK
	}
	return false
}

// parseTime parses the TEXT timestamps written by datetime('now').
func parseTime(s string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04:05", s)
	return t
}
