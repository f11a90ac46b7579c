// Package log provides the leveled logging interface used across researchgraph.
//
// Every component that reports something to an operator (the research loop when
// the search budget runs out, the search boundary when a backend fails, the
// deduplicator when a source has no raw content) takes a Logger. The default
// implementation wraps github.com/kataras/golog.
//
// # Log Levels
//
//   - LevelDebug: per-iteration loop details
//   - LevelInfo: session lifecycle
//   - LevelWarn: non-fatal conditions such as a missing raw_content
//   - LevelError: collaborator failures absorbed at the search boundary
//   - LevelNone: disables all logging output
//
// # Example Usage
//
//	logger := log.New(log.LevelDebug)
//	logger.Info("session %s started", id)
//
//	// Configuration values are parsed with ParseLevel
//	level, err := log.ParseLevel(cfg.Logging.Level)
//	if err != nil {
//		return err
//	}
//	logger.SetLevel(level)
//
// An existing golog logger can be wrapped as well:
//
//	glogger := golog.New()
//	glogger.SetPrefix("[MyApp] ")
//	logger := log.NewGologLogger(glogger)
//
// Named tags a logger with a component name:
//
//	backendLog := log.Named(logger, "tavily")
//	backendLog.Warn("request failed: %v", err) // "tavily: request failed: ..."
//
// Components accept a nil Logger and fall back to the package-level logger via
// OrDefault. Tests usually pass &log.NoOpLogger{} or a logger built with
// NewWithOutput over a bytes.Buffer.
package log
