package pipeline_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"booketl/internal/datasource/file"
	"booketl/internal/parser"
	pcsv "booketl/internal/parser/csv"
	"booketl/internal/pipeline"
)

// stringSource serves a fixed document, for tests that do not want a file on
// disk.
type stringSource struct{ body string }

func (s stringSource) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func TestRunSampleFile(t *testing.T) {
	src := file.NewLocal("../../testdata/books_sample.csv")
	p := pcsv.NewParser(pcsv.Options{HasHeader: true})

	res, err := pipeline.Run(context.Background(), src, p, pipeline.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	st := res.Stats
	if st.Rows != 5 {
		t.Errorf("rows=%d want 5", st.Rows)
	}
	// One row loses its book to a blank isbn13, one whole record is skipped
	// over a bad date.
	if st.Books != 3 {
		t.Errorf("books=%d want 3", st.Books)
	}
	if st.Authors != 5 {
		t.Errorf("authors=%d want 5", st.Authors)
	}
	if st.DateErrors != 1 {
		t.Errorf("date_errors=%d want 1", st.DateErrors)
	}
	if st.NumericWarnings != 2 {
		t.Errorf("numeric_warnings=%d want 2", st.NumericWarnings)
	}

	// Every author row has exactly one junction row, always.
	if st.Authors != st.Junctions {
		t.Errorf("authors=%d junctions=%d, want equal", st.Authors, st.Junctions)
	}
	if st.Books > st.Rows {
		t.Errorf("books=%d exceeds rows=%d", st.Books, st.Rows)
	}

	// Author ids are the sequence 0..n-1 in source order, mirrored in the
	// junction rows.
	for i, a := range res.Authors {
		if a.AuthorID != int64(i) {
			t.Fatalf("author[%d].AuthorID=%d want %d", i, a.AuthorID, i)
		}
		if res.Links[i].AuthorID != int64(i) {
			t.Fatalf("link[%d].AuthorID=%d want %d", i, res.Links[i].AuthorID, i)
		}
	}
}

func TestRunKeepsJunctionForDroppedBook(t *testing.T) {
	doc := "title,authors,avg,isbn,isbn13,lang,pages,ratings,reviews,published,publisher\n" +
		"Orphaned,Some Author,4.0,0439785960,,eng,100,5,1,1/1/2000,Pub\n"
	p := pcsv.NewParser(pcsv.Options{HasHeader: true})

	res, err := pipeline.Run(context.Background(), stringSource{doc}, p, pipeline.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Books) != 0 {
		t.Fatalf("books=%d want 0", len(res.Books))
	}
	if len(res.Links) != 1 {
		t.Fatalf("links=%d want 1", len(res.Links))
	}
	if res.Links[0].BookID != "" {
		t.Fatalf("book_id=%q want empty", res.Links[0].BookID)
	}
}

func TestRunDropDuplicates(t *testing.T) {
	row := "Dupe,An Author,4.0,0439785960,9780439785969,eng,100,5,1,1/1/2000,Pub\n"
	doc := row + row + row
	p := pcsv.NewParser(pcsv.Options{})

	res, err := pipeline.Run(context.Background(), stringSource{doc}, p, pipeline.Options{DropDuplicates: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Stats.Duplicates != 2 {
		t.Errorf("duplicates=%d want 2", res.Stats.Duplicates)
	}
	if res.Stats.Books != 1 {
		t.Errorf("books=%d want 1", res.Stats.Books)
	}

	// Without the filter all three rows survive.
	res, err = pipeline.Run(context.Background(), stringSource{doc}, p, pipeline.Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Stats.Duplicates != 0 || res.Stats.Books != 3 {
		t.Errorf("duplicates=%d books=%d want 0/3", res.Stats.Duplicates, res.Stats.Books)
	}
}

func TestRunMissingFileIsSourceReadError(t *testing.T) {
	src := file.NewLocal("no/such/file.csv")
	p := pcsv.NewParser(pcsv.Options{})

	_, err := pipeline.Run(context.Background(), src, p, pipeline.Options{})
	if err == nil {
		t.Fatalf("expected error")
	}
	var srcErr *parser.SourceReadError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error %T, want *parser.SourceReadError", err)
	}
}

func TestRunMalformedCSVAborts(t *testing.T) {
	doc := "a,b\n\"broken,row\n"
	p := pcsv.NewParser(pcsv.Options{})

	_, err := pipeline.Run(context.Background(), stringSource{doc}, p, pipeline.Options{})
	var srcErr *parser.SourceReadError
	if !errors.As(err, &srcErr) {
		t.Fatalf("error %T (%v), want *parser.SourceReadError", err, err)
	}
	if srcErr.Line != 2 {
		t.Fatalf("line=%d want 2", srcErr.Line)
	}
}
