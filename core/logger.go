package core

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with consistent field names for table operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger for handler. A nil handler logs text to stderr at
// Info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// FromSlog wraps an existing slog.Logger; nil yields NoopLogger.
func FromSlog(l *slog.Logger) *Logger {
	if l == nil {
		return NoopLogger()
	}
	return &Logger{Logger: l}
}

// WithTable tags every entry with the table name.
func (l *Logger) WithTable(table string) *Logger {
	return &Logger{Logger: l.Logger.With("table", table)}
}

func (l *Logger) LogInsert(key string, slot int, err error) {
	if err != nil {
		l.Error("insert failed", "key", key, "error", err)
		return
	}
	l.Debug("insert completed", "key", key, "slot", slot)
}

func (l *Logger) LogUpdate(key string, slot int, err error) {
	if err != nil {
		l.Error("update failed", "key", key, "error", err)
		return
	}
	l.Debug("update completed", "key", key, "slot", slot)
}

func (l *Logger) LogRename(oldKey, newKey string, err error) {
	if err != nil {
		l.Error("rename failed", "old_key", oldKey, "new_key", newKey, "error", err)
		return
	}
	l.Debug("rename completed", "old_key", oldKey, "new_key", newKey)
}

func (l *Logger) LogDelete(key string, retained int, err error) {
	if err != nil {
		l.Error("rebuild failed", "key", key, "error", err)
		return
	}
	l.Info("rebuild completed", "removed", key, "retained", retained)
}

func (l *Logger) LogCorrupt(key string, slot int, err error) {
	l.Warn("corrupt record", "key", key, "slot", slot, "error", err)
}
