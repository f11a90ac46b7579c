package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/researchgraph/config"
	"github.com/smallnest/researchgraph/log"
)

func TestTavilySearch(t *testing.T) {
	var got tavilyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "go generics",
			"results": [
				{"title": "Go Blog", "url": "https://go.dev/blog", "content": "generics intro", "raw_content": "full text"},
				{"title": "Spec", "url": "https://go.dev/ref/spec", "content": "type params", "raw_content": null}
			]
		}`))
	}))
	defer server.Close()

	tv, err := NewTavily("test-key", WithTavilyBaseURL(server.URL), WithTavilyMaxResults(5), WithTavilyDepth("advanced"))
	require.NoError(t, err)

	resp, err := tv.Search(context.Background(), "go generics")
	require.NoError(t, err)

	assert.Equal(t, "go generics", got.Query)
	assert.Equal(t, 5, got.MaxResults)
	assert.Equal(t, "advanced", got.SearchDepth)
	assert.True(t, got.IncludeRawContent)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Go Blog", resp.Results[0].Title)
	assert.Equal(t, "https://go.dev/blog", resp.Results[0].URL)
	assert.True(t, resp.Results[0].HasRaw())
	assert.Equal(t, "full text", resp.Results[0].Raw())
	assert.False(t, resp.Results[1].HasRaw())
}

func TestTavilySearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	tv, err := NewTavily("test-key", WithTavilyBaseURL(server.URL))
	require.NoError(t, err)

	_, err = tv.Search(context.Background(), "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestTavilyMissingKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")

	_, err := NewTavily("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingCredential))
}

func TestTavilyMaxResultsClamped(t *testing.T) {
	tv, err := NewTavily("k", WithTavilyMaxResults(50))
	require.NoError(t, err)
	assert.Equal(t, 20, tv.MaxResults)

	tv, err = NewTavily("k", WithTavilyMaxResults(0))
	require.NoError(t, err)
	assert.Equal(t, 1, tv.MaxResults)
}

func TestPerplexitySearch(t *testing.T) {
	var got perplexityRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer pplx-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "Go 1.18 added generics."}}],
			"citations": ["https://go.dev/blog", "https://go.dev/doc"]
		}`))
	}))
	defer server.Close()

	p, err := NewPerplexity("pplx-key", WithPerplexityBaseURL(server.URL+"/"))
	require.NoError(t, err)

	resp, err := p.Search(WithLoop(context.Background(), 2), "when did go get generics")
	require.NoError(t, err)

	assert.Equal(t, "sonar", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "when did go get generics", got.Messages[1].Content)

	require.Len(t, resp.Results, 2)
	first := resp.Results[0]
	assert.Equal(t, "Perplexity Search 2, Source 1", first.Title)
	assert.Equal(t, "https://go.dev/blog", first.URL)
	assert.Equal(t, "Go 1.18 added generics.", first.Content)
	assert.Equal(t, "Go 1.18 added generics.", first.Raw())

	second := resp.Results[1]
	assert.Equal(t, "Perplexity Search 2, Source 2", second.Title)
	assert.Equal(t, "See above for full content", second.Content)
	assert.False(t, second.HasRaw())
}

func TestCachedPerplexityUsesCurrentLoop(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "answer"}}],
			"citations": ["https://a.example", "https://b.example"]
		}`))
	}))
	defer server.Close()

	p, err := NewPerplexity("pplx-key", WithPerplexityBaseURL(server.URL))
	require.NoError(t, err)
	cache := newMapCache()
	cached := Cached("perplexity", p, cache, &log.NoOpLogger{})

	first, err := cached.Search(WithLoop(context.Background(), 1), "q")
	require.NoError(t, err)
	third, err := cached.Search(WithLoop(context.Background(), 3), "q")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	require.Len(t, third.Results, 2)
	assert.Equal(t, "Perplexity Search 1, Source 1", first.Results[0].Title)
	assert.Equal(t, "Perplexity Search 3, Source 1", third.Results[0].Title)
	assert.Equal(t, "Perplexity Search 3, Source 2", third.Results[1].Title)
	assert.Equal(t, "https://b.example", third.Results[1].URL)
	assert.Equal(t, "answer", third.Results[0].Raw())

	// The stored entry keeps its original titles.
	stored := cache.entries[CacheKey("perplexity", "q")]
	assert.Equal(t, "Perplexity Search 1, Source 1", stored.Results[0].Title)
}

func TestPerplexityNoCitations(t *testing.T) {
	resp := perplexitySources("answer", nil, 1)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "https://perplexity.ai", resp.Results[0].URL)
	assert.Equal(t, "Perplexity Search 1, Source 1", resp.Results[0].Title)
}

func TestPerplexityNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	p, err := NewPerplexity("k", WithPerplexityBaseURL(server.URL))
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "q")
	assert.Error(t, err)
}

func TestPerplexityMissingKey(t *testing.T) {
	t.Setenv("PERPLEXITY_API_KEY", "")

	_, err := NewPerplexity("")
	assert.ErrorIs(t, err, config.ErrMissingCredential)
}

func TestLoopFromContext(t *testing.T) {
	assert.Equal(t, 1, LoopFromContext(context.Background()))
	assert.Equal(t, 3, LoopFromContext(WithLoop(context.Background(), 3)))
	assert.Equal(t, 1, LoopFromContext(WithLoop(context.Background(), 0)))
}
