package search

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/researchgraph/config"
)

type analyzeFunc func(ctx context.Context, in AnalyzeWebsiteInput) (AnalyzeWebsiteOutput, error)

// inMemoryWebSearch connects a WebSearch to an MCP server running analyze in-process.
func inMemoryWebSearch(t *testing.T, analyze analyzeFunc) (*WebSearch, *int) {
	t.Helper()

	calls := 0
	server := mcp.NewServer(&mcp.Implementation{Name: "webscraper-test", Version: "v0.0.1"}, nil)
	mcp.AddTool(server, &mcp.Tool{Name: AnalyzeWebsiteTool, Description: "analyze a page"},
		func(ctx context.Context, req *mcp.CallToolRequest, in AnalyzeWebsiteInput) (*mcp.CallToolResult, AnalyzeWebsiteOutput, error) {
			calls++
			out, err := analyze(ctx, in)
			return nil, out, err
		})

	ws := NewWebSearch(func() mcp.Transport {
		clientT, serverT := mcp.NewInMemoryTransports()
		_, err := server.Connect(context.Background(), serverT, nil)
		require.NoError(t, err)
		return clientT
	})
	t.Cleanup(func() { _ = ws.Close() })
	return ws, &calls
}

func TestWebSearch(t *testing.T) {
	var got AnalyzeWebsiteInput
	ws, calls := inMemoryWebSearch(t, func(ctx context.Context, in AnalyzeWebsiteInput) (AnalyzeWebsiteOutput, error) {
		got = in
		return AnalyzeWebsiteOutput{
			Title:      "Example Domain",
			URL:        in.URL,
			Content:    "This domain is for use in examples.",
			RawContent: "Example Domain. This domain is for use in examples.",
		}, nil
	})

	resp, err := ws.Search(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.URL)

	require.Len(t, resp.Results, 1)
	src := resp.Results[0]
	assert.Equal(t, "Example Domain", src.Title)
	assert.Equal(t, "https://example.com", src.URL)
	assert.Equal(t, "This domain is for use in examples.", src.Content)
	assert.Equal(t, "Example Domain. This domain is for use in examples.", src.Raw())

	// The session is reused.
	_, err = ws.Search(context.Background(), "https://example.org")
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestWebSearchDefaultTitle(t *testing.T) {
	ws, _ := inMemoryWebSearch(t, func(ctx context.Context, in AnalyzeWebsiteInput) (AnalyzeWebsiteOutput, error) {
		return AnalyzeWebsiteOutput{Content: "text"}, nil
	})

	resp, err := ws.Search(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Web Page", resp.Results[0].Title)
}

func TestWebSearchEmptyPage(t *testing.T) {
	ws, _ := inMemoryWebSearch(t, func(ctx context.Context, in AnalyzeWebsiteInput) (AnalyzeWebsiteOutput, error) {
		return AnalyzeWebsiteOutput{Title: "blank"}, nil
	})

	resp, err := ws.Search(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestWebSearchToolError(t *testing.T) {
	ws, _ := inMemoryWebSearch(t, func(ctx context.Context, in AnalyzeWebsiteInput) (AnalyzeWebsiteOutput, error) {
		return AnalyzeWebsiteOutput{}, errors.New("status code 404")
	})

	_, err := ws.Search(context.Background(), "https://example.com/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 404")
}

func TestWebSearchFromConfig(t *testing.T) {
	_, err := NewWebSearchFromConfig(config.WebSearchConfig{})
	assert.ErrorIs(t, err, config.ErrInvalidValue)

	ws, err := NewWebSearchFromConfig(config.WebSearchConfig{Command: "webscraper", Args: []string{"--stdio"}})
	require.NoError(t, err)
	assert.NoError(t, ws.Close())
}
