package webscraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smallnest/researchgraph/log"
	"github.com/smallnest/researchgraph/search"
)

// version is set by the linker at build time.
var version = "dev"

// DefaultSummaryLength bounds the content field of analyze_website results.
const DefaultSummaryLength = 500

// Scraper fetches and analyzes web pages for the analyze_website tool.
type Scraper struct {
	client        *http.Client
	summaryLength int
	logger        log.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		s.client = client
	}
}

// WithSummaryLength sets how many characters of page text go in content.
func WithSummaryLength(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.summaryLength = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// NewScraper creates a Scraper.
func NewScraper(opts ...Option) *Scraper {
	s := &Scraper{
		client:        &http.Client{Timeout: 30 * time.Second},
		summaryLength: DefaultSummaryLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.Named(s.logger, "webscraper")
	return s
}

// Analyze fetches in.URL and extracts its text. Content holds a summary,
// RawContent the full text.
func (s *Scraper) Analyze(ctx context.Context, in search.AnalyzeWebsiteInput) (search.AnalyzeWebsiteOutput, error) {
	if err := validateURL(in.URL); err != nil {
		return search.AnalyzeWebsiteOutput{}, err
	}

	body, err := Fetch(ctx, s.client, in.URL)
	if err != nil {
		s.logger.Warn("analyze %s: %v", in.URL, err)
		return search.AnalyzeWebsiteOutput{}, err
	}
	page, err := Extract(body, in.Selectors)
	if err != nil {
		return search.AnalyzeWebsiteOutput{}, err
	}

	content := page.Description
	if content == "" {
		content = Summary(page.Text, s.summaryLength)
	}
	s.logger.Debug("analyzed %s: %d characters of text", in.URL, len(page.Text))
	return search.AnalyzeWebsiteOutput{
		Title:      page.Title,
		URL:        in.URL,
		Content:    content,
		RawContent: page.Text,
	}, nil
}

func (s *Scraper) analyzeWebsite(ctx context.Context, _ *mcp.CallToolRequest, in search.AnalyzeWebsiteInput) (*mcp.CallToolResult, search.AnalyzeWebsiteOutput, error) {
	out, err := s.Analyze(ctx, in)
	if err != nil {
		return nil, search.AnalyzeWebsiteOutput{}, fmt.Errorf("analyze website: %w", err)
	}
	return nil, out, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url %q: missing host", raw)
	}
	return nil
}

// NewMCPServer creates an MCP server exposing the analyze_website tool.
func NewMCPServer(s *Scraper) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "researchgraph-webscraper",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        search.AnalyzeWebsiteTool,
		Description: "Fetch a web page and return its title, a short summary and its full readable text. Optional CSS selectors restrict the text to matching elements.",
	}, s.analyzeWebsite)

	return server
}

// RunStdio serves the MCP server on stdin/stdout until the client
// disconnects or ctx is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr, shutting down
// when ctx is cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
