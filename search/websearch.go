package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smallnest/researchgraph/config"
)

// AnalyzeWebsiteTool is the MCP tool the web-search backend calls.
const AnalyzeWebsiteTool = "analyze_website"

// AnalyzeWebsiteInput is the argument object of the analyze_website tool.
type AnalyzeWebsiteInput struct {
	URL       string   `json:"url" jsonschema:"page to analyze"`
	Selectors []string `json:"selectors,omitempty" jsonschema:"optional CSS selectors limiting the extracted text"`
}

// AnalyzeWebsiteOutput is the structured result of the analyze_website tool.
type AnalyzeWebsiteOutput struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Content    string `json:"content"`
	RawContent string `json:"raw_content"`
}

// WebSearch is a Backend that delegates to a webscraper MCP server. The query
// is passed as the URL to analyze, and the page becomes a single Source.
type WebSearch struct {
	newTransport func() mcp.Transport
	client       *mcp.Client

	mu      sync.Mutex
	session *mcp.ClientSession
}

var _ Backend = (*WebSearch)(nil)

// NewWebSearch creates a backend that connects lazily, on first use, through
// the transport returned by newTransport. A failed connection is retried on
// the next call with a fresh transport.
func NewWebSearch(newTransport func() mcp.Transport) *WebSearch {
	return &WebSearch{
		newTransport: newTransport,
		client: mcp.NewClient(&mcp.Implementation{
			Name:    "researchgraph",
			Version: "v0.1.0",
		}, nil),
	}
}

// NewWebSearchFromConfig connects to cfg.Endpoint over streamable HTTP, or
// else spawns cfg.Command over stdio.
func NewWebSearchFromConfig(cfg config.WebSearchConfig) (*WebSearch, error) {
	switch {
	case cfg.Endpoint != "":
		return NewWebSearch(func() mcp.Transport {
			return &mcp.StreamableClientTransport{Endpoint: cfg.Endpoint}
		}), nil
	case cfg.Command != "":
		args := cfg.Args
		if cfg.Command == config.DefaultWebSearchCommand && len(args) == 0 {
			args = []string{"scraper"}
		}
		return NewWebSearch(func() mcp.Transport {
			return &mcp.CommandTransport{Command: exec.Command(cfg.Command, args...)}
		}), nil
	default:
		return nil, &config.ConfigurationError{Kind: config.InvalidValue, Field: "web_search.endpoint", Value: ""}
	}
}

func (w *WebSearch) connect(ctx context.Context) (*mcp.ClientSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session != nil {
		return w.session, nil
	}
	session, err := w.client.Connect(ctx, w.newTransport(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to webscraper: %w", err)
	}
	w.session = session
	return session, nil
}

// Search calls analyze_website with the query as URL.
func (w *WebSearch) Search(ctx context.Context, query string) (Response, error) {
	session, err := w.connect(ctx)
	if err != nil {
		return Response{}, err
	}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      AnalyzeWebsiteTool,
		Arguments: AnalyzeWebsiteInput{URL: query, Selectors: []string{}},
	})
	if err != nil {
		w.drop(session)
		return Response{}, fmt.Errorf("call %s: %w", AnalyzeWebsiteTool, err)
	}
	if res.IsError {
		return Response{}, fmt.Errorf("%s failed: %s", AnalyzeWebsiteTool, textOf(res))
	}

	out, err := decodeAnalyzeOutput(res)
	if err != nil {
		return Response{}, err
	}
	if out.Content == "" && out.RawContent == "" {
		return Empty(), nil
	}

	title := out.Title
	if title == "" {
		title = "Web Page"
	}
	return Response{Results: []Source{{
		Title:      title,
		URL:        query,
		Content:    out.Content,
		RawContent: String(out.RawContent),
	}}}, nil
}

// Close ends the MCP session, if one is open.
func (w *WebSearch) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session == nil {
		return nil
	}
	err := w.session.Close()
	w.session = nil
	return err
}

func (w *WebSearch) drop(session *mcp.ClientSession) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session == session {
		_ = session.Close()
		w.session = nil
	}
}

func decodeAnalyzeOutput(res *mcp.CallToolResult) (AnalyzeWebsiteOutput, error) {
	var out AnalyzeWebsiteOutput
	if res.StructuredContent != nil {
		raw, err := json.Marshal(res.StructuredContent)
		if err != nil {
			return out, fmt.Errorf("encode structured content: %w", err)
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, fmt.Errorf("decode %s output: %w", AnalyzeWebsiteTool, err)
		}
		return out, nil
	}

	text := textOf(res)
	if text == "" {
		return out, errors.New("webscraper returned no content")
	}
	out.Content = text
	out.RawContent = text
	return out, nil
}

func textOf(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
