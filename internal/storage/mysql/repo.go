// Package mysql implements the books sink on MySQL using database/sql and
// multi-row INSERT statements, the closest the protocol offers to a bulk
// load without LOAD DATA.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers "mysql"
)

// Config holds MySQL repository configuration.
type Config struct {
	// DSN is a go-sql-driver DSN, e.g. "user:pass@tcp(host:3306)/books?parseTime=true".
	DSN string
}

// Repository is a MySQL-backed books sink.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a connection pool and returns a Repository plus a
// close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// Destination DDL. book_id stays VARCHAR: the junction carries the source
// isbn13 string, which may not match any books row, so no foreign key to
// books is declared.
var createSchemaStmts = []string{
	`CREATE TABLE IF NOT EXISTS books (
		isbn13            BIGINT PRIMARY KEY,
		title             TEXT NOT NULL,
		avg_rating        DOUBLE,
		isbn              VARCHAR(10),
		language          VARCHAR(16),
		pages             BIGINT,
		rating_count      BIGINT,
		text_review_count BIGINT,
		published         DATE,
		publisher         TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS authors (
		author_id BIGINT PRIMARY KEY,
		name      VARCHAR(512) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS books_authors (
		book_id   VARCHAR(32) NOT NULL,
		author_id BIGINT      NOT NULL,
		PRIMARY KEY (book_id, author_id),
		FOREIGN KEY (author_id) REFERENCES authors(author_id)
	);`,
}

// CreateSchema applies the destination DDL. Existing tables are left alone.
func (r *Repository) CreateSchema(ctx context.Context) error {
	for _, stmt := range createSchemaStmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mysql: create schema: %w", err)
		}
	}
	return nil
}

// CopyFrom inserts rows into table with one multi-row INSERT per call. The
// loader keeps batches small enough to stay under max_allowed_packet.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tuple := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}

	res, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("mysql: insert %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mysql: rows affected: %w", err)
	}
	return n, nil
}
