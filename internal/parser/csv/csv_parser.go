// Package csv implements the delimited-text parser for the books export. It
// wraps encoding/csv with optional source-encoding transcoding and BOM
// handling and yields positional RawRecords without interpreting field
// contents; all typing happens downstream in the normalizer.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"booketl/internal/parser"
	"booketl/pkg/records"
)

// Options configures the CSV parser. The zero value gives a comma-delimited,
// UTF-8, headerless read.
type Options struct {
	// HasHeader drops the first row. The pipeline is position-dependent, so
	// header names are never consulted; the row is simply discarded.
	HasHeader bool

	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// Encoding names the source byte encoding. "" or "utf-8" reads bytes as
	// is; "latin1" and "windows-1252" transcode before parsing.
	Encoding string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

var _ parser.Parser = (*Parser)(nil)

// Parse consumes every record from r in source order. Rows narrower than the
// full books layout are returned as-is (FieldsPerRecord is disabled); missing
// fields are the normalizer's problem, not the parser's. Any structural error
// from encoding/csv, such as an unterminated quote, aborts the read with a
// *parser.SourceReadError.
func (p *Parser) Parse(r io.Reader) ([]records.RawRecord, int, error) {
	dec, err := decodeReader(r, p.opt.Encoding)
	if err != nil {
		return nil, 0, err
	}

	cr := csv.NewReader(dec)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1

	var out []records.RawRecord
	n := 0
	for {
		n++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, &parser.SourceReadError{Line: n, Err: err}
		}
		if n == 1 {
			stripBOM(row)
			if p.opt.HasHeader {
				continue
			}
		}
		out = append(out, records.RawRecord(append([]string(nil), row...)))
	}
	return out, 0, nil
}

// decodeReader wraps r with a charset decoder when the source is not UTF-8.
func decodeReader(r io.Reader, enc string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported source encoding %q", enc)
	}
}

// utf8BOM is stripped from the first cell of the first row if present.
const utf8BOM = "\uFEFF"

func stripBOM(row []string) {
	if len(row) > 0 {
		row[0] = strings.TrimPrefix(row[0], utf8BOM)
	}
}
