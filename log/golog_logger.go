package log

import (
	"io"

	"github.com/kataras/golog"
)

const prefix = "[research] "

// GologLogger implements Logger on top of kataras/golog.
type GologLogger struct {
	logger *golog.Logger
	level  Level
}

var _ Logger = (*GologLogger)(nil)

// New creates a logger writing to stderr at the given level.
func New(level Level) *GologLogger {
	return NewWithOutput(nil, level)
}

// NewWithOutput creates a logger writing to out. A nil out keeps golog's
// default of stderr.
func NewWithOutput(out io.Writer, level Level) *GologLogger {
	g := golog.New()
	g.SetPrefix(prefix)
	if out != nil {
		g.SetOutput(out)
	}
	l := NewGologLogger(g)
	l.SetLevel(level)
	return l
}

// NewGologLogger wraps an existing golog.Logger at info level.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	l := &GologLogger{logger: logger}
	l.SetLevel(LevelInfo)
	return l
}

func (l *GologLogger) Debug(format string, v ...any) {
	if l.level <= LevelDebug {
		l.logger.Debugf(format, v...)
	}
}

func (l *GologLogger) Info(format string, v ...any) {
	if l.level <= LevelInfo {
		l.logger.Infof(format, v...)
	}
}

func (l *GologLogger) Warn(format string, v ...any) {
	if l.level <= LevelWarn {
		l.logger.Warnf(format, v...)
	}
}

func (l *GologLogger) Error(format string, v ...any) {
	if l.level <= LevelError {
		l.logger.Errorf(format, v...)
	}
}

// SetLevel updates the wrapper and the underlying golog logger.
func (l *GologLogger) SetLevel(level Level) {
	l.level = level
	if level == LevelNone {
		l.logger.SetLevel("disable")
		return
	}
	l.logger.SetLevel(level.String())
}

// Level reports the current level.
func (l *GologLogger) Level() Level {
	return l.level
}
