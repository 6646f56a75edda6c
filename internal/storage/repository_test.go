package storage

import (
	"context"
	"strings"
	"testing"
)

type fakeRepo struct{ kind string }

func (f *fakeRepo) CreateSchema(context.Context) error { return nil }
func (f *fakeRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}
func (f *fakeRepo) Close() {}

func TestRegisterAndNew(t *testing.T) {
	Register("fake-test", func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{kind: cfg.Kind}, nil
	})

	repo, err := New(context.Background(), Config{Kind: "fake-test", DSN: "unused"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer repo.Close()
	if _, ok := repo.(*fakeRepo); !ok {
		t.Fatalf("repo %T, want *fakeRepo", repo)
	}
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); got != "unsupported storage.kind=does-not-exist" {
		t.Fatalf("error=%q", got)
	}
}

func TestListKindsSorted(t *testing.T) {
	Register("zz-test", func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})
	Register("aa-test", func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})

	kinds := ListKinds()
	if len(kinds) < 2 {
		t.Fatalf("kinds=%v", kinds)
	}
	if !sortedStrings(kinds) {
		t.Fatalf("kinds not sorted: %v", kinds)
	}
	if !contains(kinds, "aa-test") || !contains(kinds, "zz-test") {
		t.Fatalf("kinds=%v missing test entries", kinds)
	}
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if strings.Compare(s[i-1], s[i]) > 0 {
			return false
		}
	}
	return true
}

func contains(s []string, want string) bool {
	for _, v := range s {
		if v == want {
			return true
		}
	}
	return false
}
