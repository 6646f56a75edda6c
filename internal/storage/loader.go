// This file implements the batched loader that hands a finished pipeline
// result to a Repository. Books and authors go first, concurrently (neither
// table references the other); the junction rows load only after both are
// in, so an authors foreign key on books_authors always holds.
//
// Logging: one concise progress line per flushed batch with running totals,
// and a final per-table summary.
package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"booketl/internal/pipeline"
	"booketl/internal/schema"
)

// DefaultBatchSize is used when the caller passes a batch size of zero.
const DefaultBatchSize = 500

// Totals reports the rows each table accepted.
type Totals struct {
	Books     int64
	Authors   int64
	Junctions int64
}

// LoadCatalog writes res into repo in batches of batchSize rows and returns
// per-table totals. On error the totals reflect what had been inserted when
// the failure hit.
func LoadCatalog(ctx context.Context, repo Repository, res *pipeline.Result, batchSize int) (Totals, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var t Totals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := loadTable(gctx, repo, schema.BooksTable, schema.BooksColumns, schema.BookRows(res.Books), batchSize)
		t.Books = n
		return err
	})
	g.Go(func() error {
		n, err := loadTable(gctx, repo, schema.AuthorsTable, schema.AuthorsColumns, schema.AuthorRows(res.Authors), batchSize)
		t.Authors = n
		return err
	})
	if err := g.Wait(); err != nil {
		return t, err
	}

	n, err := loadTable(ctx, repo, schema.BooksAuthorsTable, schema.BooksAuthorsColumns, schema.BookAuthorRows(res.Links), batchSize)
	t.Junctions = n
	if err != nil {
		return t, err
	}

	log.Printf(
		"loader: done books=%s authors=%s junctions=%s",
		humanize.Comma(t.Books), humanize.Comma(t.Authors), humanize.Comma(t.Junctions),
	)
	return t, nil
}

// loadTable flushes rows into one table, batchSize at a time, logging
// per-batch progress with instantaneous rows/sec.
func loadTable(ctx context.Context, repo Repository, table string, columns []string, rows [][]any, batchSize int) (int64, error) {
	var (
		total   int64
		batches int64
		last    = time.Now()
	)
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := repo.CopyFrom(ctx, table, columns, rows[start:end])
		total += n
		if err != nil {
			return total, fmt.Errorf("load %s: %w", table, err)
		}

		batches++
		now := time.Now()
		rps := float64(0)
		if d := now.Sub(last); d > 0 {
			rps = float64(n) / d.Seconds()
		}
		log.Printf(
			"loader: %s batch #%d inserted=%s total=%s rps=%.0f",
			table, batches, humanize.Comma(n), humanize.Comma(total), rps,
		)
		last = now
	}
	return total, nil
}
