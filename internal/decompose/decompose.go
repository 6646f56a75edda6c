// Package decompose turns normalized book records into relational rows: one
// book row, one author row per author token, and one junction row linking
// the book to each author.
package decompose

import (
	"booketl/internal/normalize"
	"booketl/internal/schema"
)

// Result collects the rows emitted for one input record.
type Result struct {
	Books   []schema.Book // zero or one entries
	Authors []schema.Author
	Links   []schema.BookAuthor
}

// Decompose emits the relational rows for one normalized record and returns
// the author-id counter advanced past the ids it assigned. The counter is
// explicit state: callers thread it through the run starting from 0, so a
// full pass is a pure function of (records, initial counter). Ids follow the
// order the authors appear in the source field.
//
// The book row is dropped when isbn13 did not coerce to a positive integer;
// the author and junction rows are still emitted, keyed by the source isbn13
// string. An empty author field still yields exactly one author/junction
// pair with an empty name.
func Decompose(nb *normalize.NormalizedBook, nextAuthorID int64) (Result, int64) {
	res := Result{
		Authors: make([]schema.Author, 0, len(nb.Authors)),
		Links:   make([]schema.BookAuthor, 0, len(nb.Authors)),
	}
	if nb.ISBN13 != nil && *nb.ISBN13 > 0 {
		res.Books = append(res.Books, schema.Book{
			ISBN13:          *nb.ISBN13,
			Title:           nb.Title,
			AvgRating:       nb.AvgRating,
			ISBN:            nb.ISBN,
			Language:        nb.Language,
			Pages:           nb.Pages,
			RatingCount:     nb.RatingCount,
			TextReviewCount: nb.TextReviewCount,
			Published:       nb.Published,
			Publisher:       nb.Publisher,
		})
	}
	for _, name := range nb.Authors {
		res.Authors = append(res.Authors, schema.Author{AuthorID: nextAuthorID, Name: name})
		res.Links = append(res.Links, schema.BookAuthor{BookID: nb.ISBN13Raw, AuthorID: nextAuthorID})
		nextAuthorID++
	}
	return res, nextAuthorID
}
