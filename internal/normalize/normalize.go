// Package normalize converts one raw books-export row into typed fields and
// canonical forms: ISBN cleanup, author splitting, numeric coercion with a
// not-a-number sentinel, and day-first date parsing.
//
// Only a malformed published date fails a record. Every numeric field
// degrades to the nil sentinel instead, reported through an optional warning
// callback, so one garbled count never costs the whole row.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"booketl/internal/schema"
	"booketl/pkg/records"
)

// NormalizedBook carries the typed book fields plus what the decomposer still
// needs: the split author tokens and the uncoerced isbn13 string used as the
// junction key.
type NormalizedBook struct {
	Title           string
	AvgRating       *float64
	ISBN            string
	ISBN13          *int64
	ISBN13Raw       string
	Language        string
	Pages           *int64
	RatingCount     *int64
	TextReviewCount *int64
	Published       time.Time
	Publisher       string

	Authors []string
}

// DateFormatError reports a malformed published-date field.
type DateFormatError struct {
	Value  string
	Reason string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("published date %q: %s", e.Value, e.Reason)
}

// Warning describes one non-fatal numeric coercion failure.
type Warning struct {
	Field string
	Value string
}

// Normalizer applies the field-level conversions one record at a time.
// OnWarning, when set, receives a Warning for every field that degraded to
// the sentinel.
type Normalizer struct {
	OnWarning func(Warning)
}

// Normalize converts one raw row. It fails only with a *DateFormatError.
func (n *Normalizer) Normalize(raw records.RawRecord) (*NormalizedBook, error) {
	published, err := ParseDate(raw.Field(schema.ColPublished))
	if err != nil {
		return nil, err
	}

	isbn13Raw := CleanISBN(raw.Field(schema.ColISBN13))
	return &NormalizedBook{
		Title:           raw.Field(schema.ColTitle),
		AvgRating:       n.float(raw.Field(schema.ColAvgRating), "avg_rating"),
		ISBN:            CleanISBN(raw.Field(schema.ColISBN)),
		ISBN13:          n.integer(isbn13Raw, "isbn13"),
		ISBN13Raw:       isbn13Raw,
		Language:        raw.Field(schema.ColLanguage),
		Pages:           n.integer(raw.Field(schema.ColPages), "pages"),
		RatingCount:     n.integer(raw.Field(schema.ColRatingCount), "rating_count"),
		TextReviewCount: n.integer(raw.Field(schema.ColTextReviewCount), "text_review_count"),
		Published:       published,
		Publisher:       raw.Field(schema.ColPublisher),
		Authors:         SplitAuthors(raw.Field(schema.ColAuthors)),
	}, nil
}

// CleanISBN strips the spreadsheet-export escape from an ISBN field: one
// leading '=' plus all double quotes. Empty input stays empty; the transform
// is idempotent for any already-clean value.
func CleanISBN(s string) string {
	s = strings.TrimPrefix(s, "=")
	return strings.ReplaceAll(s, `"`, "")
}

// SplitAuthors splits a multi-valued author field on '/'. Tokens are kept
// exactly as split, whitespace included; a single-author string yields a
// one-element slice and "" yields [""].
func SplitAuthors(s string) []string {
	return strings.Split(s, "/")
}

// ParseDate parses the day-first slash date used by the export: "4/9/2006"
// is September 4, 2006. All three components must be numeric and in range;
// the day bound accounts for the month and leap years.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, &DateFormatError{Value: s, Reason: "want day/month/year"}
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, &DateFormatError{Value: s, Reason: "day is not numeric"}
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, &DateFormatError{Value: s, Reason: "month is not numeric"}
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return time.Time{}, &DateFormatError{Value: s, Reason: "year is not numeric"}
	}
	if month < 1 || month > 12 {
		return time.Time{}, &DateFormatError{Value: s, Reason: "month out of range"}
	}
	if day < 1 || day > daysIn(month, year) {
		return time.Time{}, &DateFormatError{Value: s, Reason: "day out of range"}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// daysIn returns the number of days in the given month, leap years included.
func daysIn(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// integer parses the leading integer prefix of s, e.g. "652" or "652 pages".
// A value with no usable prefix becomes the nil sentinel plus a warning.
func (n *Normalizer) integer(s, field string) *int64 {
	p := leadingNumber(strings.TrimSpace(s), false)
	if p != "" {
		if v, err := strconv.ParseInt(p, 10, 64); err == nil {
			return &v
		}
	}
	n.warn(field, s)
	return nil
}

// float parses the leading decimal prefix of s, e.g. "4.57" or "4.57 stars".
func (n *Normalizer) float(s, field string) *float64 {
	p := leadingNumber(strings.TrimSpace(s), true)
	if p != "" {
		if v, err := strconv.ParseFloat(p, 64); err == nil {
			return &v
		}
	}
	n.warn(field, s)
	return nil
}

func (n *Normalizer) warn(field, value string) {
	if n.OnWarning != nil {
		n.OnWarning(Warning{Field: field, Value: value})
	}
}

// leadingNumber returns the longest numeric prefix of s: an optional sign,
// digits, and (when allowPoint) a single decimal point. It returns "" when
// the prefix holds no digit at all.
func leadingNumber(s string, allowPoint bool) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := false
	pointSeen := false
scan:
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = true
		case c == '.' && allowPoint && !pointSeen:
			pointSeen = true
		default:
			break scan
		}
		i++
	}
	if !digits {
		return ""
	}
	return s[:i]
}
