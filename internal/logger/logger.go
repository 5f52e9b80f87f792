// Package logger provides structured logging for the ct-events commands.
//
// Messages carry arbitrary structured fields and are written through log/slog.
// The default text output uses the tint handler for readable, colorized console
// lines; the JSON format emits one object per line for log collectors.
//
// Example usage:
//
//	logger.Info("site scraped", logger.Fields{
//	    "site":  "Two Oceans Marathon",
//	    "start": "2026-04-11",
//	})
//
//	logger.Warn("fetch failed", logger.Fields{"url": url}, err)
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Format selects the output encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger provides structured logging
type Logger struct {
	handler slog.Handler
}

var defaultLogger = New(LevelInfo, os.Stderr, FormatText)

// ParseLevel converts a level name such as "warn" into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO", "":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return "", fmt.Errorf("invalid log level %q (must be debug, info, warn or error)", s)
}

// ParseFormat converts "text" or "json" into a Format
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("invalid log format %q (must be text or json)", s)
}

// New creates a logger writing to output. Messages below level are discarded.
func New(level Level, output io.Writer, format Format) *Logger {
	lvl := slogLevel(level)

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = tint.NewHandler(output, &tint.Options{
			Level:      lvl,
			TimeFormat: time.RFC1123Z,
			NoColor:    !isTerminal(output),
		})
	}

	return &Logger{handler: handler}
}

// SetDefault sets the package-level logger used by Debug, Info, Warn and Error,
// and routes log/slog's default logger through it as well.
func SetDefault(logger *Logger) {
	defaultLogger = logger
	slog.SetDefault(slog.New(logger.handler))
}

// log writes a structured log entry
func (l *Logger) log(level Level, message string, fields Fields, err error) {
	lvl := slogLevel(level)
	ctx := context.Background()
	if !l.handler.Enabled(ctx, lvl) {
		return
	}

	// sorted so the same fields always print in the same order
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys)+1)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	if err != nil {
		attrs = append(attrs, tint.Err(err))
	}

	r := slog.NewRecord(time.Now(), lvl, message, 0)
	r.AddAttrs(attrs...)
	_ = l.handler.Handle(ctx, r)
}

// Debug logs a debug message with optional structured fields
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning. Warnings mark failures the run recovers from, such as a
// site that could not be fetched; err may be nil.
func (l *Logger) Warn(message string, fields Fields, err error) {
	l.log(LevelWarn, message, fields, err)
}

// Error logs an error message with optional structured fields and an error object
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields, err error) {
	defaultLogger.Warn(message, fields, err)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}

func slogLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
