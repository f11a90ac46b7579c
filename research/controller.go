package research

import (
	"context"
	"slices"
	"sync"

	"github.com/smallnest/researchgraph/knowledge"
	"github.com/smallnest/researchgraph/log"
	"github.com/smallnest/researchgraph/metrics"
	"github.com/smallnest/researchgraph/search"
)

// ExhaustedMessage is returned instead of search results once the loop
// budget is spent. It is a normal outcome telling callers to stop searching.
const ExhaustedMessage = "Exceeded maximum number of web search loops."

// RelationCites links a query concept node to the sources it found.
const RelationCites = "cites"

// State is the position of a Controller in its search cycle.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateMerging
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateMerging:
		return "merging"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Controller runs the bounded research loop: it checks the budget, asks the
// searcher, merges the results into session state and returns them
// formatted. Calls are serialized; at most one search is in flight.
//
// The cycle is Idle -> Searching -> Merging -> Idle. Once the budget is spent
// the controller stays Exhausted until Reset.
type Controller struct {
	mu sync.Mutex

	searcher search.Searcher
	dedup    *Deduplicator
	budget   *Budget
	state    State
	results  []search.Response

	graph       *knowledge.Graph
	format      FormatOptions
	backendName string
	logger      log.Logger
	metrics     *metrics.Recorder
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxLoops sets the search budget. Values below 1 use DefaultMaxLoops.
func WithMaxLoops(n int) Option {
	return func(c *Controller) {
		c.budget = NewBudget(n)
	}
}

// WithMaxTokensPerSource bounds raw content in the formatted output.
func WithMaxTokensPerSource(n int) Option {
	return func(c *Controller) {
		c.format.MaxTokensPerSource = n
	}
}

// WithIncludeRawContent appends raw content to each formatted source.
func WithIncludeRawContent(include bool) Option {
	return func(c *Controller) {
		c.format.IncludeRawContent = include
	}
}

// WithGraph records every search in g: a concept node for the query, a
// source node per new URL and a "cites" edge between them.
func WithGraph(g *knowledge.Graph) Option {
	return func(c *Controller) {
		c.graph = g
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Controller) {
		c.metrics = r
	}
}

// WithBackendName labels searches in logs and metrics.
func WithBackendName(name string) Option {
	return func(c *Controller) {
		c.backendName = name
	}
}

// NewController creates a Controller over searcher and dedup. A nil dedup
// gets a Deduplicator sharing the controller's logger.
func NewController(searcher search.Searcher, dedup *Deduplicator, opts ...Option) *Controller {
	c := &Controller{
		searcher:    searcher,
		dedup:       dedup,
		budget:      NewBudget(DefaultMaxLoops),
		state:       StateIdle,
		format:      FormatOptions{MaxTokensPerSource: DefaultMaxTokensPerSource},
		backendName: "search",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.OrDefault(c.logger)
	if c.dedup == nil {
		c.dedup = NewDeduplicator(c.logger)
	}
	return c
}

// Search runs one loop iteration for query and returns the formatted,
// deduplicated results. When the budget is spent it returns ExhaustedMessage
// without calling the searcher. An error is returned only if ctx is already
// done, in which case nothing changes.
func (c *Controller) Search(ctx context.Context, query string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !c.budget.Allow() {
		c.state = StateExhausted
		c.metrics.RecordBudgetExhausted()
		c.logger.Info("search budget of %d loop(s) exhausted, skipping %q", c.budget.Max(), query)
		return ExhaustedMessage, nil
	}

	loop := c.budget.Used() + 1
	c.state = StateSearching
	c.logger.Info("research loop %d/%d on %s: %q", loop, c.budget.Max(), c.backendName, query)
	resp := c.searcher.Search(search.WithLoop(ctx, loop), query)
	c.metrics.RecordSearch(c.backendName)
	if resp.Results == nil {
		resp.Results = []search.Source{}
	}

	c.state = StateMerging
	c.results = append(c.results, resp)
	formatted, err := c.dedup.Format(resp, c.format)
	if err != nil {
		c.results = c.results[:len(c.results)-1]
		c.state = StateIdle
		return "", err
	}
	c.metrics.RecordFormat(len(formatted.Sources), formatted.Dropped, len(formatted.Warnings))
	c.promote(query, loop, formatted.Sources)

	c.budget.Spend()
	c.state = StateIdle
	if !c.budget.Allow() {
		c.state = StateExhausted
	}
	c.logger.Debug("research loop %d merged %d source(s), %d duplicate(s) dropped", loop, len(formatted.Sources), formatted.Dropped)
	return formatted.Text, nil
}

// promote records the query and its sources in the graph. Source nodes keep
// the first record seen for a URL.
func (c *Controller) promote(query string, loop int, sources []search.Source) {
	if c.graph == nil {
		return
	}

	queryID := "query:" + query
	qn := knowledge.NewNode(queryID, query)
	qn.Type = knowledge.NodeTypeConcept
	qn.Metadata["loop"] = loop
	c.graph.AddNode(qn)

	for _, src := range sources {
		if _, ok := c.graph.GetNode(src.URL); !ok {
			n := knowledge.NewNode(src.URL, src.Content)
			n.Type = knowledge.NodeTypeSource
			n.Source = src.URL
			n.Metadata["title"] = src.Title
			c.graph.AddNode(n)
		}
		e := knowledge.NewEdge(queryID, src.URL, RelationCites)
		e.Metadata["loop"] = loop
		if err := c.graph.AddEdge(e); err != nil {
			c.logger.Error("record source %s: %v", src.URL, err)
		}
	}
}

// Reset clears accumulated results and the loop counter and returns the
// controller to Idle, from any state. The graph is left alone.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.budget.Reset()
	c.results = nil
	c.state = StateIdle
	c.logger.Debug("research loop reset")
}

// LoopCount returns the number of completed iterations.
func (c *Controller) LoopCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget.Used()
}

// MaxLoops returns the search budget.
func (c *Controller) MaxLoops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget.Max()
}

// Remaining returns how many searches may still run.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budget.Remaining()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Results returns a copy of the accumulated response batches in order.
func (c *Controller) Results() []search.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]search.Response, len(c.results))
	for i, r := range c.results {
		out[i] = search.Response{Results: slices.Clone(r.Results)}
	}
	return out
}

// FormatAccumulated deduplicates across every accumulated batch, so a URL
// found in several loops appears once, as first seen.
func (c *Controller) FormatAccumulated() (Formatted, error) {
	return c.dedup.Format(c.Results(), c.format)
}

// SourceList renders all accumulated results as a bullet list.
func (c *Controller) SourceList() string {
	var all search.Response
	for _, r := range c.Results() {
		all.Results = append(all.Results, r.Results...)
	}
	return FormatSourceList(all)
}
