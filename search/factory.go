package search

import (
	"github.com/smallnest/researchgraph/config"
	"github.com/smallnest/researchgraph/log"
)

type factoryOptions struct {
	logger log.Logger
	cache  Cache
}

// FactoryOption configures New.
type FactoryOption func(*factoryOptions)

// WithFactoryLogger sets the logger handed to the boundary and cache.
func WithFactoryLogger(logger log.Logger) FactoryOption {
	return func(o *factoryOptions) {
		o.logger = logger
	}
}

// WithCache puts cache in front of the backend.
func WithCache(cache Cache) FactoryOption {
	return func(o *factoryOptions) {
		o.cache = cache
	}
}

// New builds the Searcher selected by cfg.SearchAPI. An unsupported backend or
// a missing credential yields a *config.ConfigurationError; no network call is
// made here.
func New(cfg *config.Config, opts ...FactoryOption) (*Boundary, error) {
	o := &factoryOptions{}
	for _, opt := range opts {
		opt(o)
	}
	logger := log.OrDefault(o.logger)

	var (
		backend    Backend
		maxResults int
	)
	switch cfg.SearchAPI {
	case config.Tavily:
		t, err := NewTavily(cfg.Tavily.APIKey,
			WithTavilyBaseURL(cfg.Tavily.BaseURL),
			WithTavilyMaxResults(cfg.Tavily.MaxResults),
			WithTavilyDepth(cfg.Tavily.Depth),
			WithTavilyRawContent(true),
		)
		if err != nil {
			return nil, err
		}
		backend, maxResults = t, t.MaxResults
	case config.Perplexity:
		p, err := NewPerplexity(cfg.Perplexity.APIKey,
			WithPerplexityBaseURL(cfg.Perplexity.BaseURL),
			WithPerplexityModel(cfg.Perplexity.Model),
		)
		if err != nil {
			return nil, err
		}
		backend = p
	case config.WebSearch:
		w, err := NewWebSearchFromConfig(cfg.WebSearch)
		if err != nil {
			return nil, err
		}
		backend, maxResults = w, cfg.WebSearch.MaxResults
	default:
		return nil, &config.ConfigurationError{Kind: config.UnsupportedBackend, Field: "search_api", Value: cfg.SearchAPI.String()}
	}

	name := cfg.SearchAPI.String()
	logger = log.Named(logger, name)
	if o.cache != nil {
		backend = Cached(name, backend, o.cache, log.Named(logger, "cache"))
	}
	return NewBoundary(name, backend, WithMaxResults(maxResults), WithBoundaryLogger(logger)), nil
}
