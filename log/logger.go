package log

import (
	"fmt"
	"strings"
)

// Level is a logging severity. Messages below the logger's level are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelNone silences the logger.
	LevelNone
)

var levelNames = [...]string{"debug", "info", "warn", "error", "none"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelNone {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel converts a configuration value such as "debug" or "WARN" into a
// Level. An empty string maps to LevelInfo.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "none", "disable", "off":
		return LevelNone, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is the leveled, printf-style logger used by the research loop,
// the search backends and the deduplicator.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(format string, v ...any) {}
func (l *NoOpLogger) Info(format string, v ...any)  {}
func (l *NoOpLogger) Warn(format string, v ...any)  {}
func (l *NoOpLogger) Error(format string, v ...any) {}

// named prefixes every message with a component name.
type named struct {
	next   Logger
	prefix string
}

// Named returns a logger that prefixes messages with "name: ", so output from
// one session's backend, cache and deduplicator can be told apart. Naming an
// already named logger joins the names with a slash.
func Named(l Logger, name string) Logger {
	l = OrDefault(l)
	if _, ok := l.(*NoOpLogger); ok || name == "" {
		return l
	}
	if n, ok := l.(*named); ok {
		return &named{next: n.next, prefix: strings.TrimSuffix(n.prefix, ": ") + "/" + name + ": "}
	}
	return &named{next: l, prefix: name + ": "}
}

func (n *named) Debug(format string, v ...any) { n.next.Debug(n.prefix+format, v...) }
func (n *named) Info(format string, v ...any)  { n.next.Info(n.prefix+format, v...) }
func (n *named) Warn(format string, v ...any)  { n.next.Warn(n.prefix+format, v...) }
func (n *named) Error(format string, v ...any) { n.next.Error(n.prefix+format, v...) }

var defaultLogger Logger = New(LevelInfo)

// SetDefaultLogger replaces the package-level logger used by components that
// were not given one. A nil logger silences them.
func SetDefaultLogger(logger Logger) {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	defaultLogger = logger
}

// Default returns the package-level logger.
func Default() Logger {
	return defaultLogger
}

// OrDefault returns l, or the package-level logger when l is nil.
func OrDefault(l Logger) Logger {
	if l == nil {
		return defaultLogger
	}
	return l
}
