package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/smallnest/researchgraph/config"
)

// Tavily is a Backend that uses the Tavily search API.
type Tavily struct {
	APIKey            string
	BaseURL           string
	MaxResults        int
	Depth             string
	IncludeRawContent bool
	client            *http.Client
}

var _ Backend = (*Tavily)(nil)

type TavilyOption func(*Tavily)

// WithTavilyBaseURL sets the endpoint, mainly for tests.
func WithTavilyBaseURL(baseURL string) TavilyOption {
	return func(t *Tavily) {
		if baseURL != "" {
			t.BaseURL = baseURL
		}
	}
}

// WithTavilyMaxResults sets the number of results to request (1-20).
func WithTavilyMaxResults(n int) TavilyOption {
	return func(t *Tavily) {
		if n < 1 {
			n = 1
		}
		if n > 20 {
			n = 20
		}
		t.MaxResults = n
	}
}

// WithTavilyDepth sets the search depth, "basic" or "advanced".
func WithTavilyDepth(depth string) TavilyOption {
	return func(t *Tavily) {
		if depth != "" {
			t.Depth = depth
		}
	}
}

// WithTavilyRawContent controls whether full page content is requested.
func WithTavilyRawContent(include bool) TavilyOption {
	return func(t *Tavily) {
		t.IncludeRawContent = include
	}
}

// WithTavilyHTTPClient overrides the HTTP client (and so its timeout).
func WithTavilyHTTPClient(client *http.Client) TavilyOption {
	return func(t *Tavily) {
		t.client = client
	}
}

// NewTavily creates a Tavily backend. If apiKey is empty, TAVILY_API_KEY is
// used; if that is empty too, a *config.ConfigurationError is returned before
// any request is made.
func NewTavily(apiKey string, opts ...TavilyOption) (*Tavily, error) {
	if apiKey == "" {
		apiKey = os.Getenv("TAVILY_API_KEY")
	}
	if apiKey == "" {
		return nil, &config.ConfigurationError{Kind: config.MissingCredential, Field: "tavily.api_key", Value: ""}
	}

	t := &Tavily{
		APIKey:            apiKey,
		BaseURL:           "https://api.tavily.com/search",
		MaxResults:        3,
		Depth:             "basic",
		IncludeRawContent: true,
		client:            &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

// Search executes the query.
func (t *Tavily) Search(ctx context.Context, query string) (Response, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:            t.APIKey,
		Query:             query,
		MaxResults:        t.MaxResults,
		SearchDepth:       t.Depth,
		IncludeRawContent: t.IncludeRawContent,
	})
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Response{}, fmt.Errorf("tavily api returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	// Tavily's result objects use the same field names as Source.
	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Results == nil {
		result.Results = []Source{}
	}
	return result, nil
}
