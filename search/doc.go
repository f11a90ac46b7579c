// Package search defines the source records a research session works with
// and the clients that produce them.
//
// A Backend talks to a real service and may fail. Wrapping it in a Boundary
// yields a Searcher, which never fails: errors are logged and turned into an
// empty response, so the research loop sees "no results" either way.
//
//	backend, _ := search.NewTavily(os.Getenv("TAVILY_API_KEY"))
//	searcher := search.NewBoundary("tavily", backend, search.WithMaxResults(3))
//	resp := searcher.Search(ctx, "go generics")
//
// New builds the configured Searcher from a config.Config, optionally with a
// Cache in front of the backend.
package search
