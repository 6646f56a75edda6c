// Package pipeline runs the books normalization pass: parse the delimited
// export, normalize each row, and decompose it into the three output
// collections handed whole to the storage layer.
//
// The pass is single-threaded and strictly forward: each record is fully
// normalized and decomposed before the next is looked at. The only state
// carried across records is the author-id counter, threaded explicitly and
// reset for every run.
package pipeline

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"

	"github.com/zeebo/xxh3"

	"booketl/internal/datasource"
	"booketl/internal/decompose"
	"booketl/internal/normalize"
	"booketl/internal/parser"
	"booketl/internal/schema"
	"booketl/pkg/records"
)

// Stats summarizes one pass.
type Stats struct {
	Rows            int // raw records read from the source
	Duplicates      int // rows dropped by the exact-duplicate filter
	DateErrors      int // records skipped over a malformed published date
	NumericWarnings int // fields degraded to the not-a-number sentinel
	Books           int
	Authors         int
	Junctions       int
}

// Result is the pipeline output: the three collections, complete, plus run
// stats. Ownership transfers to the caller; the pipeline keeps nothing.
type Result struct {
	Books   []schema.Book
	Authors []schema.Author
	Links   []schema.BookAuthor
	Stats   Stats
}

// Options control a single run.
type Options struct {
	// DropDuplicates drops any row whose fields are byte-identical to an
	// earlier row in the same file.
	DropDuplicates bool
}

// Run executes one full pass over src. A malformed published date skips the
// offending record and continues; numeric coercion failures degrade to the
// sentinel and continue; a structural read error aborts the run with a
// *parser.SourceReadError.
func Run(ctx context.Context, src datasource.Source, p parser.Parser, opt Options) (*Result, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		var srcErr *parser.SourceReadError
		if errors.As(err, &srcErr) {
			return nil, err
		}
		return nil, &parser.SourceReadError{Err: err}
	}
	defer rc.Close()

	raws, skipped, err := p.Parse(rc)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Printf("pipeline: parser skipped %d rows", skipped)
	}

	res := &Result{}
	res.Stats.Rows = len(raws)

	norm := &normalize.Normalizer{OnWarning: func(w normalize.Warning) {
		res.Stats.NumericWarnings++
		log.Printf("normalize: %s=%q is not numeric; using sentinel", w.Field, w.Value)
	}}

	var seen map[uint64]struct{}
	if opt.DropDuplicates {
		seen = make(map[uint64]struct{}, len(raws))
	}

	var nextAuthorID int64
	for i, raw := range raws {
		if seen != nil {
			h := hashRow(raw)
			if _, dup := seen[h]; dup {
				res.Stats.Duplicates++
				continue
			}
			seen[h] = struct{}{}
		}

		nb, err := norm.Normalize(raw)
		if err != nil {
			var dateErr *normalize.DateFormatError
			if errors.As(err, &dateErr) {
				res.Stats.DateErrors++
				log.Printf("record %d: %v; skipping", i+1, err)
				continue
			}
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}

		var out decompose.Result
		out, nextAuthorID = decompose.Decompose(nb, nextAuthorID)
		res.Books = append(res.Books, out.Books...)
		res.Authors = append(res.Authors, out.Authors...)
		res.Links = append(res.Links, out.Links...)
	}

	res.Stats.Books = len(res.Books)
	res.Stats.Authors = len(res.Authors)
	res.Stats.Junctions = len(res.Links)

	log.Printf(
		"pipeline: rows=%d books=%d authors=%d junctions=%d date_errors=%d numeric_warnings=%d duplicates=%d",
		res.Stats.Rows, res.Stats.Books, res.Stats.Authors, res.Stats.Junctions,
		res.Stats.DateErrors, res.Stats.NumericWarnings, res.Stats.Duplicates,
	)
	return res, nil
}

// hashRow hashes the raw fields with a length-prefixed layout so that field
// boundaries matter: {"a","bc"} and {"ab","c"} hash differently.
func hashRow(r records.RawRecord) uint64 {
	var h xxh3.Hasher
	var lenbuf [4]byte
	for _, f := range r {
		binary.LittleEndian.PutUint32(lenbuf[:], uint32(len(f)))
		_, _ = h.Write(lenbuf[:])
		_, _ = h.WriteString(f)
	}
	return h.Sum64()
}
