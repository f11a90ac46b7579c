// Package report renders the outcome of a research session as Markdown and
// as sanitized HTML.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/researchgraph/research"
	"github.com/smallnest/researchgraph/search"
)

// Report is a finished piece of research.
type Report struct {
	Topic string
	// Summary is free text, usually written by an LLM. It may be empty.
	Summary string
	// Sources are the deduplicated sources, in first-seen order.
	Sources []search.Source
	// Loops is the number of search iterations that produced them.
	Loops int
}

// FromController builds a report from everything a controller has gathered.
func FromController(topic, summary string, c *research.Controller) (Report, error) {
	formatted, err := c.FormatAccumulated()
	if err != nil {
		return Report{}, err
	}
	return Report{
		Topic:   topic,
		Summary: summary,
		Sources: formatted.Sources,
		Loops:   c.LoopCount(),
	}, nil
}

// Markdown renders the report. It ends with a "### Sources:" list in the
// "* <title> : <url>" form.
func (r Report) Markdown() string {
	var sb strings.Builder

	if r.Topic != "" {
		fmt.Fprintf(&sb, "# %s\n\n", r.Topic)
	}

	sb.WriteString("## Summary\n\n")
	if r.Summary != "" {
		sb.WriteString(strings.TrimSpace(r.Summary))
	} else {
		fmt.Fprintf(&sb, "%d source(s) found in %d search loop(s).", len(r.Sources), r.Loops)
	}
	sb.WriteString("\n\n")

	if len(r.Sources) > 0 {
		sb.WriteString("## Findings\n\n")
		for _, src := range r.Sources {
			fmt.Fprintf(&sb, "### %s\n\n", src.Title)
			if content := strings.TrimSpace(src.Content); content != "" {
				sb.WriteString(content)
				sb.WriteString("\n\n")
			}
			fmt.Fprintf(&sb, "<%s>\n\n", src.URL)
		}
	}

	sb.WriteString("### Sources:\n")
	sb.WriteString(research.FormatSourceList(search.Response{Results: r.Sources}))
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// HTML renders the report's Markdown and sanitizes the result.
func (r Report) HTML() string {
	return string(RenderHTML(r.Markdown()))
}

// RenderHTML converts Markdown to HTML. Absolute links open in a new tab and the
// output is sanitized, since source titles and content come from the web.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	out := markdown.Render(doc, renderer)

	policy := bluemonday.UGCPolicy()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy.SanitizeBytes(out)
}
