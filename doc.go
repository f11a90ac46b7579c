// ResearchGraph - Bounded Web Research for Go
//
// ResearchGraph runs the web research step of a summarizing assistant. Each
// session gets a fixed number of search loops. Every loop sends one query to a
// configured backend (Tavily, Perplexity or an MCP web-analysis tool), merges
// the answer, drops sources whose URL was already seen and returns the result
// as text blocks ready to paste into a prompt.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/smallnest/researchgraph
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/smallnest/researchgraph/config"
//		"github.com/smallnest/researchgraph/research"
//	)
//
//	func main() {
//		cfg, err := config.Load("")
//		if err != nil {
//			panic(err)
//		}
//
//		sess, err := research.NewSession(cfg)
//		if err != nil {
//			panic(err)
//		}
//		defer sess.Close()
//
//		text, err := sess.Search(context.Background(), "history of the Go scheduler")
//		if err != nil {
//			panic(err)
//		}
//		fmt.Println(text)
//	}
//
// # Package Structure
//
// ### config/
// Resolves the session configuration from defaults, an optional YAML file
// and environment variables such as TAVILY_API_KEY and RESEARCH_SEARCH_API.
//
// ### search/
// The search boundary. Every backend returns the same Response shape, and
// any backend failure becomes an empty result instead of an error.
//
// ### research/
// The loop controller, the per-session budget and the deduplicating
// formatter.
//
// ### knowledge/
// An in-memory graph of queries and the sources they cited.
//
// ### store/redis
// Redis-backed cache for search responses.
//
// ### webscraper/
// An MCP server exposing the analyze_website tool used by the web-search
// backend.
//
// ### tool/
// langchaingo tools that let an agent drive a research session.
//
// ### report/
// Markdown and HTML reports of a finished session.
//
// ### metrics/ and log/
// Prometheus counters and the golog-based logger shared by all packages.
//
// # Command Line
//
// The researchgraph command wraps the packages above:
//
//	researchgraph search --max-loops 2 "go generics" "go iterators"
//	researchgraph topics --parallel 4 "raft" "paxos"
//	researchgraph scraper --http :8090
//
// # License
//
// This project is licensed under the MIT License.
package researchgraph // import "github.com/smallnest/researchgraph"
