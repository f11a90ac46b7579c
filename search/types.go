package search

import "context"

// Source is one search result. URL is the deduplication key.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	// RawContent is the full page text; nil when the backend did not provide it.
	RawContent *string `json:"raw_content"`
}

// Raw returns the raw content, or "" when absent.
func (s Source) Raw() string {
	if s.RawContent == nil {
		return ""
	}
	return *s.RawContent
}

// HasRaw reports whether the backend supplied raw content.
func (s Source) HasRaw() bool {
	return s.RawContent != nil
}

// String returns a pointer to s, for building Sources with raw content.
func String(s string) *string {
	return &s
}

// Response is what one search call returns.
type Response struct {
	Results []Source `json:"results"`
}

// Empty returns a response with no results. It is what Searchers return when
// the backend failed.
func Empty() Response {
	return Response{Results: []Source{}}
}

// Searcher is the search capability the research loop consumes. Search never
// fails: backend errors are absorbed and reported as an empty response.
type Searcher interface {
	Search(ctx context.Context, query string) Response
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string) Response

// Search calls f(ctx, query).
func (f SearcherFunc) Search(ctx context.Context, query string) Response {
	return f(ctx, query)
}

// Backend is a concrete search client. Unlike Searcher it reports failures;
// wrap it with NewBoundary before handing it to the research loop.
type Backend interface {
	Search(ctx context.Context, query string) (Response, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, query string) (Response, error)

// Search calls f(ctx, query).
func (f BackendFunc) Search(ctx context.Context, query string) (Response, error) {
	return f(ctx, query)
}

type loopKey struct{}

// WithLoop records the 1-based research loop iteration in ctx. Backends that
// label their results per iteration read it with LoopFromContext.
func WithLoop(ctx context.Context, loop int) context.Context {
	return context.WithValue(ctx, loopKey{}, loop)
}

// LoopFromContext returns the iteration set by WithLoop, or 1.
func LoopFromContext(ctx context.Context) int {
	if n, ok := ctx.Value(loopKey{}).(int); ok && n > 0 {
		return n
	}
	return 1
}
