// Package mssql implements the books sink on Microsoft SQL Server using the
// go-mssqldb bulk copy API (CopyIn) inside a transaction per batch.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// Config holds MSSQL repository configuration.
type Config struct {
	// DSN is a sqlserver:// connection string.
	DSN string
}

// Repository is an MSSQL-backed books sink.
type Repository struct {
	db *sql.DB
}

// NewRepository validates the DSN, opens a pool, and returns a Repository
// plus a close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate the DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mssql: ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// Destination DDL. book_id stays NVARCHAR: the junction carries the source
// isbn13 string, which may not match any books row, so no foreign key to
// books is declared.
var createSchemaStmts = []string{
	`IF OBJECT_ID('books', 'U') IS NULL
	CREATE TABLE books (
		isbn13            BIGINT PRIMARY KEY,
		title             NVARCHAR(MAX) NOT NULL,
		avg_rating        FLOAT,
		isbn              VARCHAR(10),
		language          NVARCHAR(16),
		pages             BIGINT,
		rating_count      BIGINT,
		text_review_count BIGINT,
		published         DATE,
		publisher         NVARCHAR(MAX)
	);`,
	`IF OBJECT_ID('authors', 'U') IS NULL
	CREATE TABLE authors (
		author_id BIGINT PRIMARY KEY,
		name      NVARCHAR(512) NOT NULL
	);`,
	`IF OBJECT_ID('books_authors', 'U') IS NULL
	CREATE TABLE books_authors (
		book_id   NVARCHAR(32) NOT NULL,
		author_id BIGINT       NOT NULL REFERENCES authors(author_id),
		PRIMARY KEY (book_id, author_id)
	);`,
}

// CreateSchema applies the destination DDL. Existing tables are left alone.
func (r *Repository) CreateSchema(ctx context.Context) error {
	for _, stmt := range createSchemaStmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mssql: create schema: %w", err)
		}
	}
	return nil
}

// CopyFrom performs a bulk insert directly into table via mssql.CopyIn.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}
