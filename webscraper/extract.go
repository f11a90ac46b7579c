package webscraper

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 5 << 20

// Page is the readable content of a web page.
type Page struct {
	URL         string
	Title       string
	Description string
	Text        string
}

// bodyPolicy drops active content (scripts, styles, frames, event handlers)
// but keeps class and id so callers' selectors still match.
var bodyPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id").Globally()
	return p
}()

var strictPolicy = bluemonday.StrictPolicy()

// Fetch downloads pageURL. Non-200 responses are errors.
func Fetch(ctx context.Context, client *http.Client, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "researchgraph/0.1 (+https://github.com/smallnest/researchgraph)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// Extract parses an HTML document and returns its readable text. When
// selectors are given only matching elements contribute, in selector order.
func Extract(document string, selectors []string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := Page{
		Title: cleanText(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		page.Description = cleanText(desc)
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	bodyHTML, err := body.Html()
	if err != nil {
		return Page{}, fmt.Errorf("failed to render body: %w", err)
	}

	clean, err := goquery.NewDocumentFromReader(strings.NewReader(bodyPolicy.Sanitize(bodyHTML)))
	if err != nil {
		return Page{}, fmt.Errorf("failed to parse sanitized HTML: %w", err)
	}

	var parts []string
	if len(selectors) == 0 {
		parts = append(parts, blockText(clean.Selection))
	} else {
		for _, sel := range selectors {
			clean.Find(sel).Each(func(_ int, s *goquery.Selection) {
				parts = append(parts, blockText(s))
			})
		}
	}

	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	page.Text = strings.Join(nonEmpty, "\n")
	return page, nil
}

// blockText returns the text of s with one line per block element.
func blockText(s *goquery.Selection) string {
	s.Find("p, div, li, h1, h2, h3, h4, h5, h6, br, tr, section, article").Each(func(_ int, el *goquery.Selection) {
		el.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(s.Text(), "\n") {
		if line = cleanText(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// cleanText collapses whitespace and strips any markup left in s.
func cleanText(s string) string {
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// Summary returns the first limit characters of text, cut at a word
// boundary when possible.
func Summary(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexAny(cut, " \n"); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}
