// Package sqlite implements the books sink on SQLite using database/sql.
// SQLite has no dedicated bulk-load API like Postgres COPY, so CopyFrom runs
// a prepared INSERT inside one transaction per batch; for the volumes a
// single export produces this is comfortably fast.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, registers "sqlite"
)

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is passed directly to database/sql, e.g. "books.db" or
	// "file:books.db?cache=shared".
	DSN string
}

// Repository is a SQLite-backed books sink.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// Foreign keys default to off in SQLite; ignore the error if the
	// pragma is unsupported.
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	closeFn := func() { _ = db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// Destination DDL. book_id stays TEXT: the junction carries the source
// isbn13 string, which may not match any books row, so no foreign key to
// books is declared.
var createSchemaStmts = []string{
	`CREATE TABLE IF NOT EXISTS books (
		isbn13            INTEGER PRIMARY KEY,
		title             TEXT NOT NULL,
		avg_rating        REAL,
		isbn              TEXT,
		language          TEXT,
		pages             INTEGER,
		rating_count      INTEGER,
		text_review_count INTEGER,
		published         TEXT,
		publisher         TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS authors (
		author_id INTEGER PRIMARY KEY,
		name      TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS books_authors (
		book_id   TEXT    NOT NULL,
		author_id INTEGER NOT NULL REFERENCES authors(author_id),
		PRIMARY KEY (book_id, author_id)
	);`,
}

// CreateSchema applies the destination DDL. Existing tables are left alone.
func (r *Repository) CreateSchema(ctx context.Context) error {
	for _, stmt := range createSchemaStmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: create schema: %w", err)
		}
	}
	return nil
}

// CopyFrom inserts rows into table using a single transaction and a prepared
// statement. len(row) must equal len(columns) for every row.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("sqlite: insert %s: %w", table, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}
