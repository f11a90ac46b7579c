package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/smallnest/researchgraph/config"
)

const perplexitySystemPrompt = "Search the web and provide factual information with sources."

// Perplexity is a Backend that asks Perplexity's chat completions API and
// turns the answer plus its citations into sources. The first citation carries
// the answer text as both content and raw content; the others refer back to it
// and have no raw content.
type Perplexity struct {
	APIKey  string
	BaseURL string
	Model   string
	client  *http.Client
}

var (
	_ Backend   = (*Perplexity)(nil)
	_ Relabeler = (*Perplexity)(nil)
)

type PerplexityOption func(*Perplexity)

// WithPerplexityBaseURL sets the API root (without /chat/completions).
func WithPerplexityBaseURL(baseURL string) PerplexityOption {
	return func(p *Perplexity) {
		if baseURL != "" {
			p.BaseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithPerplexityModel sets the model name.
func WithPerplexityModel(model string) PerplexityOption {
	return func(p *Perplexity) {
		if model != "" {
			p.Model = model
		}
	}
}

// WithPerplexityHTTPClient overrides the HTTP client.
func WithPerplexityHTTPClient(client *http.Client) PerplexityOption {
	return func(p *Perplexity) {
		p.client = client
	}
}

// NewPerplexity creates a Perplexity backend. If apiKey is empty,
// PERPLEXITY_API_KEY is used.
func NewPerplexity(apiKey string, opts ...PerplexityOption) (*Perplexity, error) {
	if apiKey == "" {
		apiKey = os.Getenv("PERPLEXITY_API_KEY")
	}
	if apiKey == "" {
		return nil, &config.ConfigurationError{Kind: config.MissingCredential, Field: "perplexity.api_key", Value: ""}
	}

	p := &Perplexity{
		APIKey:  apiKey,
		BaseURL: "https://api.perplexity.ai",
		Model:   "sonar",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityRequest struct {
	Model    string              `json:"model"`
	Messages []perplexityMessage `json:"messages"`
}

type perplexityResponse struct {
	Choices []struct {
		Message perplexityMessage `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

// Search executes the query. Result titles are numbered with the loop
// iteration found in ctx (see WithLoop).
func (p *Perplexity) Search(ctx context.Context, query string) (Response, error) {
	body, err := json.Marshal(perplexityRequest{
		Model: p.Model,
		Messages: []perplexityMessage{
			{Role: "system", Content: perplexitySystemPrompt},
			{Role: "user", Content: query},
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Response{}, fmt.Errorf("perplexity api returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var result perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return Response{}, fmt.Errorf("perplexity api returned no choices")
	}

	return perplexitySources(result.Choices[0].Message.Content, result.Citations, LoopFromContext(ctx)), nil
}

// Relabel renumbers result titles for the loop recorded in ctx, so a response
// served from a cache carries the current loop number.
func (p *Perplexity) Relabel(ctx context.Context, resp Response) Response {
	loop := LoopFromContext(ctx)
	out := Response{Results: make([]Source, len(resp.Results))}
	for i, src := range resp.Results {
		src.Title = perplexityTitle(loop, i+1)
		out.Results[i] = src
	}
	return out
}

func perplexityTitle(loop, n int) string {
	return fmt.Sprintf("Perplexity Search %d, Source %d", loop, n)
}

func perplexitySources(content string, citations []string, loop int) Response {
	if len(citations) == 0 {
		citations = []string{"https://perplexity.ai"}
	}

	results := make([]Source, 0, len(citations))
	results = append(results, Source{
		Title:      perplexityTitle(loop, 1),
		URL:        citations[0],
		Content:    content,
		RawContent: String(content),
	})
	for i, citation := range citations[1:] {
		results = append(results, Source{
			Title:   perplexityTitle(loop, i+2),
			URL:     citation,
			Content: "See above for full content",
		})
	}
	return Response{Results: results}
}
