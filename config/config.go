// Package config provides configuration loading for researchgraph.
// Settings come from defaults, an optional YAML file, environment variables,
// or a runnable-config style map, and are resolved and validated once.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings a research session is built from.
type Config struct {
	// LocalLLM names the model the orchestration layer should use. The
	// research core only carries it through.
	LocalLLM string `json:"local_llm" yaml:"local_llm"`

	// SearchAPI selects the search backend.
	SearchAPI SearchAPI `json:"search_api" yaml:"search_api"`

	// MaxWebResearchLoops is the per-session search budget. Must be positive.
	MaxWebResearchLoops int `json:"max_web_research_loops" yaml:"max_web_research_loops"`

	// MaxTokensPerSource bounds raw content at roughly 4 characters per token.
	MaxTokensPerSource int `json:"max_tokens_per_source" yaml:"max_tokens_per_source"`

	// IncludeRawContent appends each source's truncated raw content to the formatted output.
	IncludeRawContent bool `json:"include_raw_content" yaml:"include_raw_content"`

	Tavily     TavilyConfig     `json:"tavily" yaml:"tavily"`
	Perplexity PerplexityConfig `json:"perplexity" yaml:"perplexity"`
	WebSearch  WebSearchConfig  `json:"web_search" yaml:"web_search"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}

// TavilyConfig configures the Tavily backend.
type TavilyConfig struct {
	// APIKey supports ${VAR} syntax.
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	MaxResults int    `json:"max_results" yaml:"max_results"`
	// Depth is "basic" or "advanced".
	Depth string `json:"depth" yaml:"depth"`
}

// PerplexityConfig configures the Perplexity backend.
type PerplexityConfig struct {
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model   string `json:"model" yaml:"model"`
}

// WebSearchConfig configures the web-search backend, an MCP webscraper server
// reached either by spawning Command or over streamable HTTP at Endpoint.
type WebSearchConfig struct {
	Endpoint   string   `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Command    string   `json:"command,omitempty" yaml:"command,omitempty"`
	Args       []string `json:"args,omitempty" yaml:"args,omitempty"`
	MaxResults int      `json:"max_results" yaml:"max_results"`
}

// CacheConfig enables the Redis search response cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr string        `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	Password  string        `json:"password,omitempty" yaml:"password,omitempty"`
	DB        int           `json:"db" yaml:"db"`
	Prefix    string        `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	TTL       time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// LoggingConfig configures log verbosity: debug, info, warn, error or none.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// DefaultWebSearchCommand is the MCP server started for the web-search backend
// when no endpoint is configured. Without explicit args it is run as
// `researchgraph scraper`.
const DefaultWebSearchCommand = "researchgraph"

// Default returns a Config with the stock settings. The web-search backend
// runs `researchgraph scraper` over stdio.
func Default() *Config {
	return &Config{
		LocalLLM:            "mistral",
		SearchAPI:           WebSearch,
		MaxWebResearchLoops: 3,
		MaxTokensPerSource:  1000,
		Tavily: TavilyConfig{
			MaxResults: 3,
			Depth:      "basic",
		},
		Perplexity: PerplexityConfig{
			BaseURL: "https://api.perplexity.ai",
			Model:   "sonar",
		},
		WebSearch: WebSearchConfig{
			Command:    DefaultWebSearchCommand,
			MaxResults: 3,
		},
		Cache: CacheConfig{
			Prefix: "research:",
			TTL:    24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds a Config from defaults, then path (if non-empty), then
// environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileConfig
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
// An unknown search_api value fails here with a *ConfigurationError.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Tavily.APIKey = expandEnvVars(cfg.Tavily.APIKey)
	cfg.Perplexity.APIKey = expandEnvVars(cfg.Perplexity.APIKey)
	cfg.Cache.Password = expandEnvVars(cfg.Cache.Password)

	return cfg, nil
}

// FromMap builds a Config from a runnable-config style map. The map may hold
// the settings directly or under a "configurable" key. search_api may be a
// string or a SearchAPI value.
func FromMap(m map[string]any) (*Config, error) {
	cfg := Default()
	if m == nil {
		return cfg, nil
	}
	if inner, ok := m["configurable"].(map[string]any); ok {
		m = inner
	}

	if v, ok := m["local_llm"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, &ConfigurationError{Kind: InvalidValue, Field: "local_llm", Value: v}
		}
		cfg.LocalLLM = s
	}

	if v, ok := m["search_api"]; ok {
		switch api := v.(type) {
		case SearchAPI:
			if !api.Valid() {
				return nil, &ConfigurationError{Kind: UnsupportedBackend, Field: "search_api", Value: v}
			}
			cfg.SearchAPI = api
		case string:
			parsed, err := ParseSearchAPI(api)
			if err != nil {
				return nil, err
			}
			cfg.SearchAPI = parsed
		default:
			return nil, &ConfigurationError{Kind: UnsupportedBackend, Field: "search_api", Value: v}
		}
	}

	if v, ok := m["max_web_research_loops"]; ok {
		n, err := toInt(v)
		if err != nil {
			return nil, &ConfigurationError{Kind: InvalidValue, Field: "max_web_research_loops", Value: v}
		}
		cfg.MaxWebResearchLoops = n
	}

	if v, ok := m["max_tokens_per_source"]; ok {
		n, err := toInt(v)
		if err != nil {
			return nil, &ConfigurationError{Kind: InvalidValue, Field: "max_tokens_per_source", Value: v}
		}
		cfg.MaxTokensPerSource = n
	}

	if v, ok := m["include_raw_content"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, &ConfigurationError{Kind: InvalidValue, Field: "include_raw_content", Value: v}
		}
		cfg.IncludeRawContent = b
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if !c.SearchAPI.Valid() {
		return &ConfigurationError{Kind: UnsupportedBackend, Field: "search_api", Value: int(c.SearchAPI)}
	}
	if c.MaxWebResearchLoops <= 0 {
		return &ConfigurationError{Kind: InvalidValue, Field: "max_web_research_loops", Value: c.MaxWebResearchLoops}
	}
	if c.MaxTokensPerSource <= 0 {
		return &ConfigurationError{Kind: InvalidValue, Field: "max_tokens_per_source", Value: c.MaxTokensPerSource}
	}
	if c.SearchAPI == WebSearch && c.WebSearch.Endpoint == "" && c.WebSearch.Command == "" {
		return &ConfigurationError{Kind: InvalidValue, Field: "web_search.endpoint", Value: ""}
	}
	if c.Tavily.Depth != "" && c.Tavily.Depth != "basic" && c.Tavily.Depth != "advanced" {
		return &ConfigurationError{Kind: InvalidValue, Field: "tavily.depth", Value: c.Tavily.Depth}
	}
	if c.Cache.TTL < 0 {
		return &ConfigurationError{Kind: InvalidValue, Field: "cache.ttl", Value: c.Cache.TTL}
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("RESEARCH_SEARCH_API"); v != "" {
		api, err := ParseSearchAPI(v)
		if err != nil {
			return err
		}
		cfg.SearchAPI = api
	}

	if v := os.Getenv("RESEARCH_MAX_LOOPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigurationError{Kind: InvalidValue, Field: "RESEARCH_MAX_LOOPS", Value: v}
		}
		cfg.MaxWebResearchLoops = n
	}

	if v := os.Getenv("RESEARCH_LOCAL_LLM"); v != "" {
		cfg.LocalLLM = v
	}

	if v := os.Getenv("TAVILY_API_KEY"); v != "" && cfg.Tavily.APIKey == "" {
		cfg.Tavily.APIKey = v
	}

	if v := os.Getenv("PERPLEXITY_API_KEY"); v != "" && cfg.Perplexity.APIKey == "" {
		cfg.Perplexity.APIKey = v
	}

	if v := os.Getenv("RESEARCH_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}

	if v := os.Getenv("RESEARCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
