// Package parser declares the contract implemented by record parsers and the
// fatal error type shared by them.
package parser

import (
	"fmt"
	"io"

	"booketl/pkg/records"
)

// Parser turns a byte stream into raw positional records, preserving source
// row order. The int result is the number of rows skipped by lenient parsers;
// the strict books parser always reports 0 and returns an error instead.
type Parser interface {
	Parse(r io.Reader) ([]records.RawRecord, int, error)
}

// SourceReadError reports a stream that could not be opened or parsed at the
// structural level (unreadable file, unterminated quote). It is fatal: the
// run aborts rather than continuing from a partial read.
type SourceReadError struct {
	Line int // 1-based source record, 0 when unknown
	Err  error
}

func (e *SourceReadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("source read: record %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("source read: %v", e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }
