package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/researchgraph/config"
	"github.com/smallnest/researchgraph/knowledge"
	"github.com/smallnest/researchgraph/research"
	"github.com/smallnest/researchgraph/search"
)

// fakeSessions makes every session search a canned backend.
func fakeSessions(t *testing.T) {
	t.Helper()
	t.Setenv("RESEARCH_SEARCH_API", "")
	t.Setenv("RESEARCH_MAX_LOOPS", "")
	t.Setenv("RESEARCH_REDIS_ADDR", "")
	t.Setenv("RESEARCH_LOG_LEVEL", "")

	orig := newSession
	newSession = func(cfg *config.Config, opts ...research.SessionOption) (*research.Session, error) {
		searcher := search.SearcherFunc(func(ctx context.Context, query string) search.Response {
			slug := strings.ReplaceAll(query, " ", "-")
			return search.Response{Results: []search.Source{
				{Title: "About " + query, URL: "https://example.com/" + slug, Content: "all about " + query},
			}}
		})
		return research.NewSession(cfg, append(opts, research.WithSearcher(searcher))...)
	}
	t.Cleanup(func() { newSession = orig })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "researchgraph version "+version+"\n", out)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, version, v["version"])
}

func TestSearchCmd(t *testing.T) {
	fakeSessions(t)
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "report.html")
	graphPath := filepath.Join(dir, "graph.json")

	out, err := execute(t, "search", "--log-level", "none", "--max-loops", "2",
		"--html", htmlPath, "--graph", graphPath, "--sources",
		"go", "rust", "zig")
	require.NoError(t, err)

	assert.Contains(t, out, "Source About go:\n===\nURL: https://example.com/go\n===\nMost relevant content from source: all about go\n===")
	assert.Contains(t, out, "Source About rust:")
	assert.NotContains(t, out, "Source About zig:")
	assert.Contains(t, out, "zig: "+research.ExhaustedMessage)
	assert.Contains(t, out, "* About go : https://example.com/go\n* About rust : https://example.com/rust")

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "https://example.com/rust")

	data, err := os.ReadFile(graphPath)
	require.NoError(t, err)
	var snap knowledge.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Len(t, snap.Nodes, 4)
	assert.Len(t, snap.Edges, 2)
}

func TestSearchCmdJSON(t *testing.T) {
	fakeSessions(t)

	out, err := execute(t, "search", "--json", "--log-level", "none", "--max-loops", "1", "go", "rust")
	require.NoError(t, err)

	var got struct {
		Session string       `json:"session"`
		Loops   []loopResult `json:"loops"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.Session)
	require.Len(t, got.Loops, 2)
	assert.False(t, got.Loops[0].Exhausted)
	assert.True(t, got.Loops[1].Exhausted)
	assert.Equal(t, 1, got.Loops[1].Loop)
}

func TestSearchCmdUnsupportedBackend(t *testing.T) {
	fakeSessions(t)

	_, err := execute(t, "search", "--search-api", "bing", "go")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnsupportedBackend)
}

func TestSearchCmdConfigFile(t *testing.T) {
	fakeSessions(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search_api: perplexity\nmax_web_research_loops: 1\nlogging:\n  level: none\n"), 0o644))

	out, err := execute(t, "search", "--config", path, "--stats", "a", "b")
	require.NoError(t, err)
	assert.Contains(t, out, "b: "+research.ExhaustedMessage)
	assert.Contains(t, out, "researchgraph_research_searches_total backend=perplexity 1")
	assert.Contains(t, out, "researchgraph_research_budget_exhausted_total 1")
}

func TestTopicsCmd(t *testing.T) {
	fakeSessions(t)

	out, err := execute(t, "topics", "--json", "--log-level", "none", "--max-loops", "2",
		"--follow-up", "history", "--follow-up", "tooling", "go", "rust", "zig")
	require.NoError(t, err)

	var results []topicResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)

	ids := map[string]bool{}
	for i, topic := range []string{"go", "rust", "zig"} {
		r := results[i]
		assert.Equal(t, topic, r.Topic)
		ids[r.Session] = true
		assert.Equal(t, "* About "+topic+" : https://example.com/"+topic+
			"\n* About "+topic+" history : https://example.com/"+topic+"-history", r.Sources)
	}
	assert.Len(t, ids, 3)
}
