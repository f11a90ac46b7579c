package config

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// SearchAPI selects the search backend. It is a closed set: values are
// produced only by ParseSearchAPI (or the constants below), so code holding a
// SearchAPI never re-validates it.
type SearchAPI int

const (
	searchAPIUnset SearchAPI = iota
	Tavily
	Perplexity
	WebSearch
)

// AllSearchAPIs lists the supported backends in display order.
var AllSearchAPIs = []SearchAPI{Tavily, Perplexity, WebSearch}

var searchAPINames = map[SearchAPI]string{
	Tavily:     "tavily",
	Perplexity: "perplexity",
	WebSearch:  "web-search",
}

// ParseSearchAPI resolves a configuration value. "web-mcp" is accepted as an
// alias of "web-search". Anything else yields a *ConfigurationError of kind
// UnsupportedBackend.
func ParseSearchAPI(s string) (SearchAPI, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tavily":
		return Tavily, nil
	case "perplexity":
		return Perplexity, nil
	case "web-search", "web-mcp":
		return WebSearch, nil
	default:
		return searchAPIUnset, &ConfigurationError{
			Kind:  UnsupportedBackend,
			Field: "search_api",
			Value: s,
		}
	}
}

// Valid reports whether a is one of the supported backends.
func (a SearchAPI) Valid() bool {
	_, ok := searchAPINames[a]
	return ok
}

func (a SearchAPI) String() string {
	if name, ok := searchAPINames[a]; ok {
		return name
	}
	return "unsupported"
}

// MarshalYAML writes the backend name.
func (a SearchAPI) MarshalYAML() (any, error) {
	return a.String(), nil
}

// UnmarshalYAML parses the backend name once, at load time.
func (a *SearchAPI) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseSearchAPI(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalText lets SearchAPI appear as a string in JSON output.
func (a SearchAPI) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the backend name from JSON or flags.
func (a *SearchAPI) UnmarshalText(text []byte) error {
	parsed, err := ParseSearchAPI(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
