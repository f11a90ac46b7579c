package search

import (
	"context"
	"io"

	"github.com/smallnest/researchgraph/log"
)

// Boundary turns a Backend into a Searcher. Errors and panics from the
// backend are logged and replaced by an empty response, so callers cannot
// tell "no results" from "backend failed". It never retries.
type Boundary struct {
	name       string
	backend    Backend
	maxResults int
	logger     log.Logger
}

var _ Searcher = (*Boundary)(nil)

// BoundaryOption configures a Boundary.
type BoundaryOption func(*Boundary)

// WithMaxResults caps the number of results returned per call. Zero means no cap.
func WithMaxResults(n int) BoundaryOption {
	return func(b *Boundary) {
		if n < 0 {
			n = 0
		}
		b.maxResults = n
	}
}

// WithBoundaryLogger sets the logger failures are reported to.
func WithBoundaryLogger(logger log.Logger) BoundaryOption {
	return func(b *Boundary) {
		b.logger = logger
	}
}

// NewBoundary wraps backend. name identifies the backend in log messages.
func NewBoundary(name string, backend Backend, opts ...BoundaryOption) *Boundary {
	b := &Boundary{name: name, backend: backend}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = log.OrDefault(b.logger)
	return b
}

// Name returns the backend name.
func (b *Boundary) Name() string {
	return b.name
}

// Search runs the backend and never fails.
func (b *Boundary) Search(ctx context.Context, query string) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("search backend %s panicked for query %q: %v", b.name, query, r)
			resp = Empty()
		}
	}()

	resp, err := b.backend.Search(ctx, query)
	if err != nil {
		b.logger.Error("search backend %s failed for query %q: %v", b.name, query, err)
		return Empty()
	}
	if resp.Results == nil {
		resp.Results = []Source{}
	}
	if b.maxResults > 0 && len(resp.Results) > b.maxResults {
		resp.Results = resp.Results[:b.maxResults]
	}
	b.logger.Debug("search backend %s returned %d result(s) for %q", b.name, len(resp.Results), query)
	return resp
}

// Close releases the backend's resources, such as an MCP session.
func (b *Boundary) Close() error {
	if closer, ok := b.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
