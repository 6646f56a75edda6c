// Package postgres implements the books sink on Postgres using pgx v5 and
// native COPY.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds Postgres repository configuration.
type Config struct {
	// DSN is the connection string for pgxpool (postgresql://...).
	DSN string
}

// Repository is a Postgres-backed books sink.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository and returns a close function for
// cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool}, closeFn, nil
}

// createSchemaSQL provisions the three destination tables. books_authors
// keeps book_id as text: the junction carries the source isbn13 string,
// which may not match any books row, so no foreign key to books is declared.
const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS books (
	isbn13            BIGINT PRIMARY KEY,
	title             TEXT NOT NULL,
	avg_rating        DOUBLE PRECISION,
	isbn              VARCHAR(10),
	language          TEXT,
	pages             BIGINT,
	rating_count      BIGINT,
	text_review_count BIGINT,
	published         DATE,
	publisher         TEXT
);
CREATE TABLE IF NOT EXISTS authors (
	author_id BIGINT PRIMARY KEY,
	name      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS books_authors (
	book_id   TEXT   NOT NULL,
	author_id BIGINT NOT NULL REFERENCES authors(author_id),
	PRIMARY KEY (book_id, author_id)
);`

// CreateSchema applies the destination DDL. Existing tables are left alone.
func (r *Repository) CreateSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createSchemaSQL); err != nil {
		return fmt.Errorf("postgres: create schema: %w", err)
	}
	return nil
}

// CopyFrom streams rows into table with COPY. Rows must align with columns;
// pgx reports the number of rows copied.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	n, err := conn.Conn().CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy %s: %w", table, err)
	}
	return n, nil
}
