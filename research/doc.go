// Package research implements the bounded research loop.
//
// A Controller enforces the per-session search budget, calls a
// search.Searcher, deduplicates the results by URL and returns them as text
// blocks for a prompt builder:
//
//	Source <title>:
//	===
//	URL: <url>
//	===
//	Most relevant content from source: <content>
//	===
//
// The delimiters and labels are part of the output contract. Once the budget
// is spent, Search returns ExhaustedMessage without searching.
//
// A Session bundles a Controller with the knowledge.Graph it records sources
// into, built from a config.Config:
//
//	sess, err := research.NewSession(cfg)
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//	text, err := sess.Search(ctx, "history of the Go scheduler")
package research
