package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSearchAPI(t *testing.T) {
	tests := []struct {
		in   string
		want SearchAPI
	}{
		{"tavily", Tavily},
		{"Perplexity", Perplexity},
		{"web-search", WebSearch},
		{"web-mcp", WebSearch},
		{" TAVILY ", Tavily},
	}
	for _, tt := range tests {
		got, err := ParseSearchAPI(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.True(t, got.Valid())
	}
}

func TestParseSearchAPI_Unsupported(t *testing.T) {
	for _, in := range []string{"", "google", "duckduckgo"} {
		_, err := ParseSearchAPI(in)
		require.Error(t, err, in)

		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, UnsupportedBackend, cfgErr.Kind)
		assert.Equal(t, "search_api", cfgErr.Field)
		assert.ErrorIs(t, err, ErrUnsupportedBackend)
		assert.NotErrorIs(t, err, ErrInvalidValue)
		assert.Contains(t, err.Error(), "unsupported-backend")
	}
}

func TestSearchAPIString(t *testing.T) {
	assert.Equal(t, "tavily", Tavily.String())
	assert.Equal(t, "perplexity", Perplexity.String())
	assert.Equal(t, "web-search", WebSearch.String())
	assert.Equal(t, "unsupported", SearchAPI(99).String())
	assert.False(t, SearchAPI(0).Valid())
	assert.Len(t, AllSearchAPIs, 3)
}

func TestSearchAPI_TextRoundTrip(t *testing.T) {
	data, err := json.Marshal(struct {
		API SearchAPI `json:"api"`
	}{Perplexity})
	require.NoError(t, err)
	assert.JSONEq(t, `{"api":"perplexity"}`, string(data))

	var out struct {
		API SearchAPI `json:"api"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"api":"web-mcp"}`), &out))
	assert.Equal(t, WebSearch, out.API)

	assert.Error(t, json.Unmarshal([]byte(`{"api":"bing"}`), &out))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, WebSearch, cfg.SearchAPI)
	assert.Equal(t, DefaultWebSearchCommand, cfg.WebSearch.Command)
	assert.Equal(t, 3, cfg.MaxWebResearchLoops)
	assert.Equal(t, 1000, cfg.MaxTokensPerSource)
	assert.Equal(t, "mistral", cfg.LocalLLM)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_TAVILY_KEY", "tvly-secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
search_api: tavily
max_web_research_loops: 5
include_raw_content: true
tavily:
  api_key: ${TEST_TAVILY_KEY}
  depth: advanced
cache:
  redis_addr: localhost:6379
  ttl: 1h
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, Tavily, cfg.SearchAPI)
	assert.Equal(t, 5, cfg.MaxWebResearchLoops)
	assert.True(t, cfg.IncludeRawContent)
	assert.Equal(t, "tvly-secret", cfg.Tavily.APIKey)
	assert.Equal(t, "advanced", cfg.Tavily.Depth)
	assert.Equal(t, 3, cfg.Tavily.MaxResults, "unset fields keep defaults")
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile_UnsupportedBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search_api: bing\n"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RESEARCH_SEARCH_API", "perplexity")
	t.Setenv("RESEARCH_MAX_LOOPS", "7")
	t.Setenv("PERPLEXITY_API_KEY", "pplx-key")
	t.Setenv("RESEARCH_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Perplexity, cfg.SearchAPI)
	assert.Equal(t, 7, cfg.MaxWebResearchLoops)
	assert.Equal(t, "pplx-key", cfg.Perplexity.APIKey)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvRejectsUnsupportedBackend(t *testing.T) {
	t.Setenv("RESEARCH_SEARCH_API", "altavista")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

func TestLoad_EnvRejectsNonPositiveLoops(t *testing.T) {
	t.Setenv("RESEARCH_MAX_LOOPS", "0")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestFromMap(t *testing.T) {
	t.Run("nil map", func(t *testing.T) {
		cfg, err := FromMap(nil)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("string backend under configurable", func(t *testing.T) {
		cfg, err := FromMap(map[string]any{
			"configurable": map[string]any{
				"local_llm":              "llama3",
				"search_api":             "tavily",
				"max_web_research_loops": float64(2),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "llama3", cfg.LocalLLM)
		assert.Equal(t, Tavily, cfg.SearchAPI)
		assert.Equal(t, 2, cfg.MaxWebResearchLoops)
	})

	t.Run("typed backend", func(t *testing.T) {
		cfg, err := FromMap(map[string]any{"search_api": Perplexity, "include_raw_content": true})
		require.NoError(t, err)
		assert.Equal(t, Perplexity, cfg.SearchAPI)
		assert.True(t, cfg.IncludeRawContent)
	})

	t.Run("unsupported backend", func(t *testing.T) {
		_, err := FromMap(map[string]any{"search_api": "bing"})
		assert.ErrorIs(t, err, ErrUnsupportedBackend)

		_, err = FromMap(map[string]any{"search_api": SearchAPI(42)})
		assert.ErrorIs(t, err, ErrUnsupportedBackend)

		_, err = FromMap(map[string]any{"search_api": 3})
		assert.ErrorIs(t, err, ErrUnsupportedBackend)
	})

	t.Run("invalid loops", func(t *testing.T) {
		_, err := FromMap(map[string]any{"max_web_research_loops": -1})
		assert.ErrorIs(t, err, ErrInvalidValue)

		_, err = FromMap(map[string]any{"max_web_research_loops": 1.5})
		assert.ErrorIs(t, err, ErrInvalidValue)

		_, err = FromMap(map[string]any{"max_web_research_loops": []int{1}})
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Tavily.Depth = "deep"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidValue)

	cfg = Default()
	cfg.MaxTokensPerSource = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidValue)

	cfg = Default()
	cfg.SearchAPI = SearchAPI(0)
	assert.ErrorIs(t, cfg.Validate(), ErrUnsupportedBackend)

	require.NoError(t, Default().Validate())

	cfg = Default()
	cfg.WebSearch.Command = ""
	var cerr *ConfigurationError
	require.ErrorAs(t, cfg.Validate(), &cerr)
	assert.Equal(t, InvalidValue, cerr.Kind)
	assert.Equal(t, "web_search.endpoint", cerr.Field)

	cfg.WebSearch.Endpoint = "http://localhost:8090/mcp"
	assert.NoError(t, cfg.Validate())

	// Only the web-search backend needs a server.
	cfg = Default()
	cfg.WebSearch.Command = ""
	cfg.SearchAPI = Perplexity
	assert.NoError(t, cfg.Validate())
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.SearchAPI = Tavily

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "search_api: tavily")

	var out Config
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, Tavily, out.SearchAPI)
	assert.Equal(t, cfg.Cache.TTL, out.Cache.TTL)
}
