// Package schema defines the relational shape produced by the books pipeline:
// the books table, the authors table, and the books_authors junction between
// them, plus the fixed column layout of the source export.
package schema

import "time"

// Layout is the published-date layout used by the export: day-first,
// slash-delimited, no zero padding.
const Layout = "2/1/2006"

// Column positions of the source export. The layout is fixed by convention of
// the dataset; header names are never consulted.
const (
	ColTitle = iota
	ColAuthors
	ColAvgRating
	ColISBN
	ColISBN13
	ColLanguage
	ColPages
	ColRatingCount
	ColTextReviewCount
	ColPublished
	ColPublisher

	NumColumns
)

// Book is one row of the books table. ISBN13 is the natural key. The pointer
// fields are nil when the source value did not coerce to a number; consumers
// must treat that distinctly from a valid zero.
type Book struct {
	ISBN13          int64     `db:"isbn13"`
	Title           string    `db:"title"`
	AvgRating       *float64  `db:"avg_rating"`
	ISBN            string    `db:"isbn"`
	Language        string    `db:"language"`
	Pages           *int64    `db:"pages"`
	RatingCount     *int64    `db:"rating_count"`
	TextReviewCount *int64    `db:"text_review_count"`
	Published       time.Time `db:"published"`
	Publisher       string    `db:"publisher"`
}

// Author is one row of the authors table. Ids are assigned sequentially from
// 0 within a single run and are not stable across runs; the same name on two
// books yields two rows.
type Author struct {
	AuthorID int64  `db:"author_id"`
	Name     string `db:"name"`
}

// BookAuthor links one Book to one Author. BookID carries the source isbn13
// string as given, not the coerced integer key of the books table.
type BookAuthor struct {
	BookID   string `db:"book_id"`
	AuthorID int64  `db:"author_id"`
}

// Destination table names and the column order used for bulk loads.
const (
	BooksTable        = "books"
	AuthorsTable      = "authors"
	BooksAuthorsTable = "books_authors"
)

var (
	BooksColumns = []string{
		"isbn13", "title", "avg_rating", "isbn", "language",
		"pages", "rating_count", "text_review_count", "published", "publisher",
	}
	AuthorsColumns      = []string{"author_id", "name"}
	BooksAuthorsColumns = []string{"book_id", "author_id"}
)

// Row flattens a Book into driver values aligned to BooksColumns. Pointer
// fields map to SQL NULL when nil.
func (b Book) Row() []any {
	return []any{
		b.ISBN13, b.Title, nullFloat(b.AvgRating), b.ISBN, b.Language,
		nullInt(b.Pages), nullInt(b.RatingCount), nullInt(b.TextReviewCount),
		b.Published, b.Publisher,
	}
}

// Row flattens an Author aligned to AuthorsColumns.
func (a Author) Row() []any { return []any{a.AuthorID, a.Name} }

// Row flattens a BookAuthor aligned to BooksAuthorsColumns.
func (ba BookAuthor) Row() []any { return []any{ba.BookID, ba.AuthorID} }

// BookRows converts a book collection into loader rows.
func BookRows(books []Book) [][]any {
	out := make([][]any, len(books))
	for i, b := range books {
		out[i] = b.Row()
	}
	return out
}

// AuthorRows converts an author collection into loader rows.
func AuthorRows(authors []Author) [][]any {
	out := make([][]any, len(authors))
	for i, a := range authors {
		out[i] = a.Row()
	}
	return out
}

// BookAuthorRows converts a junction collection into loader rows.
func BookAuthorRows(links []BookAuthor) [][]any {
	out := make([][]any, len(links))
	for i, l := range links {
		out[i] = l.Row()
	}
	return out
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
