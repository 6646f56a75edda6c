// Package datasource declares the contract for byte-stream providers feeding
// the pipeline.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw input stream for one run. Implementations live in the
// file and httpds subpackages.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
