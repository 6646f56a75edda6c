// Package storage contains the storage-agnostic sink contract, the factory
// used to select a concrete backend at runtime, and the batched loader that
// writes a pipeline result into the three destination tables.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the sink for one pipeline run. CreateSchema provisions the
// books, authors and books_authors tables; CopyFrom bulk-inserts rows
// (aligned to the columns order) into table using the backend's most
// efficient primitive. Retry and backoff, where wanted, belong to the
// backend, never to the pipeline.
type Repository interface {
	CreateSchema(ctx context.Context) error
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	Close()
}

// Config selects and configures a backend.
type Config struct {
	// Kind names a registered backend: "postgres", "sqlite", "mysql",
	// "mssql".
	Kind string

	// DSN is the backend connection string.
	DSN string
}

// Factory builds a Repository for one storage kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind. It is called from
// backend packages' init functions; importing storage/all registers every
// built-in backend.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens the repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered backend kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
