package research

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smallnest/researchgraph/log"
	"github.com/smallnest/researchgraph/search"
)

// DefaultMaxTokensPerSource bounds raw content when no limit is configured.
const DefaultMaxTokensPerSource = 1000

// charsPerToken is the token-to-character heuristic used for truncation.
const charsPerToken = 4

const truncatedSuffix = "... [truncated]"

// FormatOptions control how sources are rendered.
type FormatOptions struct {
	// MaxTokensPerSource limits raw content to MaxTokensPerSource*4 characters.
	// Values below 1 use DefaultMaxTokensPerSource.
	MaxTokensPerSource int
	// IncludeRawContent appends each source's (truncated) raw content.
	IncludeRawContent bool
}

// Formatted is the result of deduplicating and formatting search results.
type Formatted struct {
	// Text is the concatenated source blocks, trailing whitespace trimmed.
	Text string
	// Sources are the surviving records in first-seen order.
	Sources []search.Source
	// Dropped counts records discarded as duplicates.
	Dropped int
	// Warnings lists non-fatal problems, such as missing raw content.
	Warnings []Warning
}

// Deduplicator merges search results by URL and renders them for a
// downstream prompt builder. The first record seen for a URL wins; later
// records with the same URL are dropped entirely.
type Deduplicator struct {
	logger log.Logger
}

// NewDeduplicator creates a Deduplicator. A nil logger uses the package default.
func NewDeduplicator(logger log.Logger) *Deduplicator {
	return &Deduplicator{logger: log.OrDefault(logger)}
}

// Format flattens input (see Normalize), deduplicates by URL and renders each
// surviving source as a block:
//
//	Source <title>:
//	===
//	URL: <url>
//	===
//	Most relevant content from source: <content>
//	===
//
// A source without raw content is rendered with an empty raw section and
// reported in Warnings when opts.IncludeRawContent is set.
func (d *Deduplicator) Format(input any, opts FormatOptions) (Formatted, error) {
	batches, err := Normalize(input)
	if err != nil {
		return Formatted{}, err
	}

	maxTokens := opts.MaxTokensPerSource
	if maxTokens < 1 {
		maxTokens = DefaultMaxTokensPerSource
	}
	charLimit := maxTokens * charsPerToken

	var (
		out  Formatted
		seen = make(map[string]struct{})
		sb   strings.Builder
	)
	out.Sources = []search.Source{}
	for _, batch := range batches {
		for _, src := range batch.Results {
			if _, dup := seen[src.URL]; dup {
				out.Dropped++
				continue
			}
			seen[src.URL] = struct{}{}
			out.Sources = append(out.Sources, src)
		}
	}

	for _, src := range out.Sources {
		fmt.Fprintf(&sb, "Source %s:\n===\n", src.Title)
		fmt.Fprintf(&sb, "URL: %s\n===\n", src.URL)
		fmt.Fprintf(&sb, "Most relevant content from source: %s\n===\n", src.Content)

		if !opts.IncludeRawContent {
			continue
		}
		if !src.HasRaw() {
			w := Warning{URL: src.URL, Message: "no raw content found"}
			out.Warnings = append(out.Warnings, w)
			d.logger.Warn("no raw content found for source %s", src.URL)
		}
		fmt.Fprintf(&sb, "Full source content limited to %d tokens: %s\n\n", maxTokens, Truncate(src.Raw(), charLimit))
	}

	out.Text = strings.TrimRight(sb.String(), " \t\r\n")
	return out, nil
}

// Truncate cuts s to limit characters and marks the cut with
// "... [truncated]". Strings of at most limit characters are returned as is.
func Truncate(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + truncatedSuffix
}

// FormatSourceList renders every result as "* <title> : <url>", one per
// line, without deduplication or truncation.
func FormatSourceList(resp search.Response) string {
	lines := make([]string, 0, len(resp.Results))
	for _, src := range resp.Results {
		lines = append(lines, "* "+src.Title+" : "+src.URL)
	}
	return strings.Join(lines, "\n")
}

// Normalize turns deduplicator input into an ordered list of batches. It
// accepts a single response (search.Response, *search.Response, or a decoded
// JSON object with a "results" array), a sequence of responses
// ([]search.Response, or []any mixing response objects and arrays of result
// objects) and a bare batch ([]search.Source). Anything else yields a
// *ShapeError.
func Normalize(input any) ([]search.Response, error) {
	switch v := input.(type) {
	case search.Response:
		return []search.Response{v}, nil
	case *search.Response:
		if v == nil {
			return nil, shapeError(v, "", "nil response")
		}
		return []search.Response{*v}, nil
	case []search.Response:
		return v, nil
	case []search.Source:
		return []search.Response{{Results: v}}, nil
	case map[string]any:
		resp, err := responseFromMap(v, "")
		if err != nil {
			return nil, err
		}
		return []search.Response{resp}, nil
	case []any:
		batches := make([]search.Response, 0, len(v))
		for i, elem := range v {
			path := "[" + strconv.Itoa(i) + "]"
			switch e := elem.(type) {
			case map[string]any:
				if _, ok := e["results"]; ok {
					resp, err := responseFromMap(e, path)
					if err != nil {
						return nil, err
					}
					batches = append(batches, resp)
					continue
				}
				src, err := sourceFromMap(e, path)
				if err != nil {
					return nil, err
				}
				batches = append(batches, search.Response{Results: []search.Source{src}})
			case []any:
				results, err := sourcesFromSlice(e, path)
				if err != nil {
					return nil, err
				}
				batches = append(batches, search.Response{Results: results})
			case search.Response:
				batches = append(batches, e)
			case search.Source:
				batches = append(batches, search.Response{Results: []search.Source{e}})
			default:
				return nil, shapeError(elem, path, "expected a response or a list of results")
			}
		}
		return batches, nil
	default:
		return nil, shapeError(input, "", "expected a response or a list of responses")
	}
}

func responseFromMap(m map[string]any, path string) (search.Response, error) {
	raw, ok := m["results"]
	if !ok {
		return search.Response{}, shapeError(m, path, `missing "results"`)
	}
	items, ok := raw.([]any)
	if !ok {
		return search.Response{}, shapeError(raw, path+".results", "results must be a list")
	}
	results, err := sourcesFromSlice(items, path+".results")
	if err != nil {
		return search.Response{}, err
	}
	return search.Response{Results: results}, nil
}

func sourcesFromSlice(items []any, path string) ([]search.Source, error) {
	results := make([]search.Source, 0, len(items))
	for i, item := range items {
		itemPath := path + "[" + strconv.Itoa(i) + "]"
		m, ok := item.(map[string]any)
		if !ok {
			return nil, shapeError(item, itemPath, "result must be an object")
		}
		src, err := sourceFromMap(m, itemPath)
		if err != nil {
			return nil, err
		}
		results = append(results, src)
	}
	return results, nil
}

func sourceFromMap(m map[string]any, path string) (search.Source, error) {
	var src search.Source

	url, ok := m["url"].(string)
	if !ok {
		return src, shapeError(m["url"], path+".url", "url must be a string")
	}
	src.URL = url

	for _, f := range []struct {
		key string
		dst *string
	}{{"title", &src.Title}, {"content", &src.Content}} {
		v, present := m[f.key]
		if !present || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return src, shapeError(v, path+"."+f.key, f.key+" must be a string")
		}
		*f.dst = s
	}

	if v, present := m["raw_content"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return src, shapeError(v, path+".raw_content", "raw_content must be a string")
		}
		src.RawContent = search.String(s)
	}
	return src, nil
}
