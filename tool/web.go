package tool

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/tools"

	"github.com/smallnest/researchgraph/webscraper"
)

// WebFetch downloads a page and returns its readable text, without scripts
// or styles.
func WebFetch(pageURL string) (string, error) {
	return WebFetchContext(context.Background(), pageURL)
}

// WebFetchContext is WebFetch with a context.
func WebFetchContext(ctx context.Context, pageURL string) (string, error) {
	body, err := webscraper.Fetch(ctx, &http.Client{Timeout: 30 * time.Second}, pageURL)
	if err != nil {
		return "", err
	}

	page, err := webscraper.Extract(body, nil)
	if err != nil {
		return "", err
	}
	if page.Text == "" {
		return "", errors.New("no text content found")
	}
	return page.Text, nil
}

// WebFetchTool exposes WebFetch to agents.
type WebFetchTool struct{}

var _ tools.Tool = WebFetchTool{}

// Name returns the name of the tool.
func (WebFetchTool) Name() string {
	return "Web_Fetch"
}

// Description returns the description of the tool.
func (WebFetchTool) Description() string {
	return "Fetches a web page and returns its text content. Input should be a full http or https URL."
}

// Call fetches input.
func (WebFetchTool) Call(ctx context.Context, input string) (string, error) {
	return WebFetchContext(ctx, input)
}
