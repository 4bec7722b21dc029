// Package logging provides structured logging for the agent manager.
//
// It wraps Go's log/slog with a JSON handler writing into the project
// state directory, so every intent, dispatch, and agent result leaves a
// filterable trace that can be analyzed after the fact with the same
// package's aggregation helpers (and the `logs` CLI command built on
// them).
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (project ID, intent type, task ID, phase,
//     component)
//   - Size-based log rotation with numbered backups
//   - Log aggregation and filtering utilities
//   - Export to JSON, text, or CSV formats
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. [Logger] rides
// on slog, which is designed for concurrent access; [RotatingWriter]
// serializes file operations with a mutex. Child loggers created via
// the With* methods share the underlying writer safely.
//
// # Basic Usage
//
// Create a logger over the state directory:
//
//	logger, err := logging.NewLogger(stateDir, "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Debug("detailed info", "key", "value")
//	logger.Info("intent applied", "duration_ms", 150)
//	logger.Warn("planner slow", "threshold_ms", 5000)
//	logger.Error("dispatch failed", "error", err.Error())
//
// An empty directory sends output to stderr instead of a file.
//
// # Context Propagation
//
// Child loggers carry persistent attributes, so the orchestration
// layers tag their output once:
//
//	projLog := logger.WithProject("demo")
//	taskLog := projLog.WithTask("task-1a2b").WithPhase("executing")
//	taskLog.Info("task completed", "artifacts", 2)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"task completed","project_id":"demo","task_id":"task-1a2b","phase":"executing","artifacts":2}
//
// [Logger.WithIntent] and [Logger.WithComponent] work the same way for
// intent handling and subsystem tagging.
//
// # Log Rotation
//
// The file logger rotates by size with [DefaultRotationConfig] (10MB,
// 3 backups). Rotated files are named debug.log.1, debug.log.2, and so
// on, where .1 is the most recent backup. A MaxSizeMB of 0 disables
// rotation.
//
// # Testing
//
// Use [NopLogger] to discard all log output:
//
//	func TestSomething(t *testing.T) {
//	    logger := logging.NopLogger()
//	    // Use logger in tests without creating files
//	}
//
// # Aggregation, Filtering, and Export
//
// Read back what a run did:
//
//	entries, err := logging.AggregateLogs(stateDir)
//	if err != nil {
//	    return err
//	}
//
//	filter := logging.LogFilter{
//	    Level:     "WARN",
//	    TaskID:    "task-1a2b",
//	    StartTime: time.Now().Add(-1 * time.Hour),
//	}
//	filtered := logging.FilterLogs(entries, filter)
//
//	logging.ExportLogEntries(filtered, "errors.csv", "csv")
//
// [ParseLogLine] parses a single JSON log line, which the `logs -f`
// follow mode uses for incremental reads.
//
// # Log Levels
//
// Four levels, ordered: [LevelDebug], [LevelInfo] (the default),
// [LevelWarn], [LevelError]. [ValidLevels] lists the valid strings and
// [ParseLevel] normalizes user input.
//
// The level and rotation limits are configured under the `logging` key
// of the config file (see internal/config).
package logging
