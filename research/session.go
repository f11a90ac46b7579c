package research

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/smallnest/researchgraph/config"
	"github.com/smallnest/researchgraph/knowledge"
	"github.com/smallnest/researchgraph/log"
	"github.com/smallnest/researchgraph/metrics"
	"github.com/smallnest/researchgraph/search"
)

// Session is one research session: a knowledge graph and a loop controller
// that feeds it. Sessions share no mutable state, so independent sessions may
// run concurrently.
type Session struct {
	ID         string
	Config     *config.Config
	Graph      *knowledge.Graph
	Controller *Controller

	searcher search.Searcher
}

type sessionOptions struct {
	logger   log.Logger
	metrics  *metrics.Recorder
	searcher search.Searcher
	cache    search.Cache
}

// SessionOption configures NewSession.
type SessionOption func(*sessionOptions)

// WithSessionLogger sets the logger for the session's components.
func WithSessionLogger(logger log.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// WithSessionMetrics sets the metrics recorder.
func WithSessionMetrics(r *metrics.Recorder) SessionOption {
	return func(o *sessionOptions) {
		o.metrics = r
	}
}

// WithSearcher uses s instead of building the configured backend.
func WithSearcher(s search.Searcher) SessionOption {
	return func(o *sessionOptions) {
		o.searcher = s
	}
}

// WithSearchCache caches backend responses in c.
func WithSearchCache(c search.Cache) SessionOption {
	return func(o *sessionOptions) {
		o.cache = c
	}
}

// NewSession builds a session from a resolved configuration. A nil cfg uses
// config.Default. Configuration problems, such as an unsupported backend or a
// missing API key, are reported here as *config.ConfigurationError before any
// network call.
func NewSession(cfg *config.Config, opts ...SessionOption) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &sessionOptions{}
	for _, opt := range opts {
		opt(o)
	}
	logger := log.OrDefault(o.logger)

	searcher := o.searcher
	if searcher == nil {
		factoryOpts := []search.FactoryOption{search.WithFactoryLogger(logger)}
		if o.cache != nil {
			factoryOpts = append(factoryOpts, search.WithCache(o.cache))
		}
		b, err := search.New(cfg, factoryOpts...)
		if err != nil {
			return nil, err
		}
		searcher = b
	}

	graph := knowledge.NewGraph()
	ctrl := NewController(searcher, NewDeduplicator(log.Named(logger, "dedup")),
		WithMaxLoops(cfg.MaxWebResearchLoops),
		WithMaxTokensPerSource(cfg.MaxTokensPerSource),
		WithIncludeRawContent(cfg.IncludeRawContent),
		WithGraph(graph),
		WithLogger(logger),
		WithMetrics(o.metrics),
		WithBackendName(cfg.SearchAPI.String()),
	)

	return &Session{
		ID:         uuid.New().String(),
		Config:     cfg,
		Graph:      graph,
		Controller: ctrl,
		searcher:   searcher,
	}, nil
}

// Search runs one research loop iteration.
func (s *Session) Search(ctx context.Context, query string) (string, error) {
	return s.Controller.Search(ctx, query)
}

// NewTopic resets the loop and clears the graph for a fresh line of research.
func (s *Session) NewTopic() {
	s.Controller.Reset()
	s.Graph.Clear()
}

// Close releases the search backend, if it holds resources.
func (s *Session) Close() error {
	if closer, ok := s.searcher.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
