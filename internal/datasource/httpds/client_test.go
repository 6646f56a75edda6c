package httpds

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenStreamsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "title,authors\nx,y\n")
	}))
	defer srv.Close()

	rc, err := NewClient(srv.URL, srv.Client()).Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(b), "title,authors") {
		t.Fatalf("body=%q", b)
	}
}

func TestOpenNon200IsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).Open(context.Background())
	if err == nil {
		t.Fatalf("expected error for 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("err=%v, want status in message", err)
	}
}

func TestOpenBadURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient("://not-a-url", nil).Open(context.Background())
	if err == nil {
		t.Fatalf("expected error for malformed url")
	}
}
