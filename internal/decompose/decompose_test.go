package decompose

import (
	"testing"

	"github.com/stretchr/testify/require"

	"booketl/internal/normalize"
)

func i64(v int64) *int64 { return &v }

func TestDecomposeAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	first := &normalize.NormalizedBook{
		Title:     "Half-Blood Prince",
		ISBN13:    i64(9780439785969),
		ISBN13Raw: "9780439785969",
		Authors:   []string{"J.K. Rowling", "Mary GrandPré"},
	}
	second := &normalize.NormalizedBook{
		Title:     "The Hunger Games",
		ISBN13:    i64(9780439023481),
		ISBN13Raw: "9780439023481",
		Authors:   []string{"Suzanne Collins"},
	}

	out, next := Decompose(first, 0)
	require.EqualValues(t, 2, next)
	require.Len(t, out.Books, 1)
	require.Len(t, out.Authors, 2)
	require.Len(t, out.Links, 2)
	require.EqualValues(t, 0, out.Authors[0].AuthorID)
	require.Equal(t, "J.K. Rowling", out.Authors[0].Name)
	require.EqualValues(t, 1, out.Authors[1].AuthorID)

	// The counter threads across records; the next record picks up where
	// the previous one stopped.
	out, next = Decompose(second, next)
	require.EqualValues(t, 3, next)
	require.EqualValues(t, 2, out.Authors[0].AuthorID)
	require.EqualValues(t, 2, out.Links[0].AuthorID)
}

func TestDecomposeJunctionKeyIsSourceString(t *testing.T) {
	t.Parallel()

	nb := &normalize.NormalizedBook{
		Title:     "Half-Blood Prince",
		ISBN13:    i64(9780439785969),
		ISBN13Raw: "9780439785969",
		Authors:   []string{"J.K. Rowling"},
	}

	out, _ := Decompose(nb, 0)
	require.Len(t, out.Links, 1)
	require.Equal(t, "9780439785969", out.Links[0].BookID)
}

func TestDecomposeDropsBookButKeepsAuthors(t *testing.T) {
	t.Parallel()

	// isbn13 failed numeric coercion: no book row, but the author and
	// junction rows still come out, keyed by the raw string.
	nb := &normalize.NormalizedBook{
		Title:     "A Short History of Nearly Everything",
		ISBN13:    nil,
		ISBN13Raw: "",
		Authors:   []string{"Bill Bryson", "William Roberts"},
	}

	out, next := Decompose(nb, 5)
	require.Empty(t, out.Books)
	require.Len(t, out.Authors, 2)
	require.Len(t, out.Links, 2)
	require.Equal(t, "", out.Links[0].BookID)
	require.EqualValues(t, 5, out.Authors[0].AuthorID)
	require.EqualValues(t, 7, next)
}

func TestDecomposeNonPositiveISBN13DropsBook(t *testing.T) {
	t.Parallel()

	nb := &normalize.NormalizedBook{
		ISBN13:    i64(0),
		ISBN13Raw: "0",
		Authors:   []string{"Anonymous"},
	}

	out, _ := Decompose(nb, 0)
	require.Empty(t, out.Books)
	require.Len(t, out.Links, 1)
}

func TestDecomposeEmptyAuthorField(t *testing.T) {
	t.Parallel()

	// Splitting "" yields one empty token, which still gets an id and a
	// junction row.
	nb := &normalize.NormalizedBook{
		ISBN13:    i64(9780141439518),
		ISBN13Raw: "9780141439518",
		Authors:   []string{""},
	}

	out, next := Decompose(nb, 0)
	require.Len(t, out.Authors, 1)
	require.Equal(t, "", out.Authors[0].Name)
	require.Len(t, out.Links, 1)
	require.EqualValues(t, 1, next)
}
