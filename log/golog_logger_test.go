package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGologLogger(t *testing.T) {
	glogger := golog.New()

	logger := NewGologLogger(glogger)

	assert.NotNil(t, logger)
	assert.Equal(t, LevelInfo, logger.Level())
}

func TestGologLogger_LevelControl(t *testing.T) {
	logger := NewGologLogger(golog.New())

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.Level())

	logger.SetLevel(LevelError)
	assert.Equal(t, LevelError, logger.Level())

	logger.SetLevel(LevelNone)
	assert.Equal(t, LevelNone, logger.Level())
}

func TestGologLogger_FormatsArguments(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, LevelDebug)

	logger.Warn("no raw_content for %s", "https://example.com")

	out := buf.String()
	assert.Contains(t, out, "no raw_content for https://example.com")
}

func TestGologLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, LevelError)

	logger.Debug("filtered debug")
	logger.Info("filtered info")
	logger.Warn("filtered warn")
	assert.Empty(t, buf.String())

	logger.Error("search backend failed: %v", "timeout")
	assert.Contains(t, buf.String(), "search backend failed: timeout")
}

func TestGologLogger_None(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, LevelNone)

	logger.Error("never printed")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"", LevelInfo},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"off", LevelNone},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "none", LevelNone.String())
	assert.Equal(t, "level(42)", Level(42).String())
}

func TestNamed(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithOutput(&buf, LevelDebug)

	tavily := Named(base, "tavily")
	tavily.Warn("request failed: %v", "timeout")
	assert.Contains(t, buf.String(), "tavily: request failed: timeout")

	buf.Reset()
	Named(tavily, "cache").Info("miss %s", "k")
	assert.Contains(t, buf.String(), "tavily/cache: miss k")

	noop := &NoOpLogger{}
	assert.Same(t, noop, Named(noop, "x"))
	assert.Same(t, base, Named(base, ""))
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefaultLogger(orig)

	noop := &NoOpLogger{}
	SetDefaultLogger(noop)
	assert.Same(t, noop, Default())
	assert.Same(t, noop, OrDefault(nil))

	custom := New(LevelWarn)
	assert.Same(t, custom, OrDefault(custom))

	SetDefaultLogger(nil)
	assert.IsType(t, &NoOpLogger{}, Default())

	Named(nil, "search").Warn("must not panic")
}
