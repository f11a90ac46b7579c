package tool

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/tools"

	"github.com/smallnest/researchgraph/research"
)

// WebResearch is a tool that lets an agent run one research loop iteration
// per call. The loop budget is enforced by the underlying controller: once it
// is spent the tool answers with research.ExhaustedMessage, which tells the
// agent to stop searching.
type WebResearch struct {
	controller  *research.Controller
	name        string
	description string
	sourceList  bool
}

var _ tools.Tool = (*WebResearch)(nil)

type WebResearchOption func(*WebResearch)

// WithToolName overrides the tool name.
func WithToolName(name string) WebResearchOption {
	return func(w *WebResearch) {
		if name != "" {
			w.name = name
		}
	}
}

// WithToolDescription overrides the tool description.
func WithToolDescription(desc string) WebResearchOption {
	return func(w *WebResearch) {
		if desc != "" {
			w.description = desc
		}
	}
}

// WithSourceList appends a bullet list of every source found so far.
func WithSourceList(enabled bool) WebResearchOption {
	return func(w *WebResearch) {
		w.sourceList = enabled
	}
}

// NewWebResearch creates a WebResearch tool over controller.
func NewWebResearch(controller *research.Controller, opts ...WebResearchOption) (*WebResearch, error) {
	if controller == nil {
		return nil, errors.New("research controller is required")
	}

	w := &WebResearch{
		controller: controller,
		name:       "Web_Research",
		description: "Searches the web and returns deduplicated sources, each with its title, URL and most relevant content. " +
			"The number of searches is limited; stop when the tool says the maximum has been exceeded. " +
			"Input should be a search query.",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Name returns the name of the tool.
func (w *WebResearch) Name() string {
	return w.name
}

// Description returns the description of the tool.
func (w *WebResearch) Description() string {
	return w.description
}

// Call runs one research loop iteration for input.
func (w *WebResearch) Call(ctx context.Context, input string) (string, error) {
	query := strings.TrimSpace(input)
	if query == "" {
		return "", errors.New("search query is empty")
	}

	text, err := w.controller.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if text == research.ExhaustedMessage {
		return text, nil
	}
	if text == "" {
		text = "No results found"
	}

	if w.sourceList {
		if list := w.controller.SourceList(); list != "" {
			text += "\n\nSources:\n" + list
		}
	}
	return text, nil
}
