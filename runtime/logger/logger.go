// Package logger provides structured logging for the audio pipeline.
//
// This package wraps Go's standard log/slog with:
//   - a global DefaultLogger configured from LOG_LEVEL
//   - context fields (session, provider, voice, format, stage) added to every record
//   - per-module levels driven by Configure
//   - helpers for synthesis, conversion and playback events
//
// All exported functions use the global DefaultLogger.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultLogger is the global structured logger instance.
	// It is safe for concurrent use and initialized with slog.LevelInfo by default.
	DefaultLogger *slog.Logger

	// logOutput is where handlers built by this package write.
	logOutput io.Writer = os.Stderr

	// customHandler is set by SetLogger; Configure leaves it untouched.
	customHandler slog.Handler

	setupMu sync.Mutex
)

func init() {
	level := slog.LevelInfo
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = ParseLevel(envLevel)
	}
	globalModuleConfig = NewModuleConfig(level)
	initLoggerWithConfig(level, nil, globalModuleConfig, false)
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the default logging level, keeping the current output.
func SetLevel(level slog.Level) {
	setupMu.Lock()
	defer setupMu.Unlock()
	customHandler = nil
	globalModuleConfig.SetDefaultLevel(level)
	initLoggerWithConfig(level, nil, globalModuleConfig, false)
}

// SetVerbose enables debug-level logging when verbose is true, otherwise sets info-level.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
	} else {
		SetLevel(slog.LevelInfo)
	}
}

// SetOutput redirects the text handler to w at the given level.
// Passing nil restores stderr.
func SetOutput(w io.Writer, level slog.Level) {
	setupMu.Lock()
	defer setupMu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	logOutput = w
	customHandler = nil
	globalModuleConfig.SetDefaultLevel(level)
	initLoggerWithConfig(level, nil, globalModuleConfig, false)
}

// SetLogger installs a caller-provided logger. Configure will not replace it
// until SetLevel or SetOutput is called. Passing nil restores the default.
func SetLogger(l *slog.Logger) {
	setupMu.Lock()
	defer setupMu.Unlock()
	if l == nil {
		customHandler = nil
		initLoggerWithConfig(slog.LevelInfo, nil, globalModuleConfig, false)
		return
	}
	customHandler = l.Handler()
	DefaultLogger = l
}

// Info logs an informational message with structured key-value attributes.
func Info(msg string, args ...any) {
	logAt(context.Background(), slog.LevelInfo, msg, args...)
}

// InfoContext logs an informational message with context fields.
func InfoContext(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelInfo, msg, args...)
}

// Debug logs a debug-level message with structured attributes.
func Debug(msg string, args ...any) {
	logAt(context.Background(), slog.LevelDebug, msg, args...)
}

// DebugContext logs a debug message with context fields.
func DebugContext(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelDebug, msg, args...)
}

// Warn logs a warning message. Use for recoverable failures such as a
// conversion falling back to the native format.
func Warn(msg string, args ...any) {
	logAt(context.Background(), slog.LevelWarn, msg, args...)
}

// WarnContext logs a warning message with context fields.
func WarnContext(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message with structured attributes.
func Error(msg string, args ...any) {
	logAt(context.Background(), slog.LevelError, msg, args...)
}

// ErrorContext logs an error message with context fields.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	logAt(ctx, slog.LevelError, msg, args...)
}

// logAt records the PC of the first caller outside this package so that
// ModuleHandler attributes the record to the calling module.
func logAt(ctx context.Context, level slog.Level, msg string, args ...any) {
	l := DefaultLogger
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.Enabled(ctx, level) {
		return
	}

	const maxDepth = 8
	var pcs [maxDepth]uintptr
	//nolint:mnd // skip runtime.Callers and logAt
	n := runtime.Callers(2, pcs[:])
	var pc uintptr
	for _, p := range pcs[:n] {
		pc = p
		fn := runtime.FuncForPC(p - 1)
		if fn == nil || !strings.HasPrefix(fn.Name(), moduleRoot+"runtime/logger.") {
			break
		}
	}

	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}

// SynthesisCall logs a completed call to a synthesis provider.
func SynthesisCall(ctx context.Context, provider string, textLen, audioBytes int, elapsed time.Duration, attrs ...any) {
	allAttrs := make([]any, 0, 8+len(attrs))
	allAttrs = append(allAttrs,
		"provider", provider,
		"text_len", textLen,
		"audio_bytes", audioBytes,
		"elapsed", elapsed,
	)
	allAttrs = append(allAttrs, attrs...)
	DebugContext(ctx, "synthesis completed", allAttrs...)
}

// SynthesisError logs a failed synthesis call. Synthesis failures are fatal
// to a session, so they are always logged at error level.
func SynthesisError(ctx context.Context, provider string, err error, attrs ...any) {
	allAttrs := make([]any, 0, 4+len(attrs))
	allAttrs = append(allAttrs, "provider", provider, "error", err)
	allAttrs = append(allAttrs, attrs...)
	ErrorContext(ctx, "synthesis failed", allAttrs...)
}

// Conversion logs the outcome of one conversion strategy attempt.
func Conversion(ctx context.Context, strategy, from, to string, elapsed time.Duration, err error) {
	if err != nil {
		DebugContext(ctx, "conversion strategy failed",
			"strategy", strategy, "from", from, "to", to, "elapsed", elapsed, "error", err)
		return
	}
	DebugContext(ctx, "conversion strategy succeeded",
		"strategy", strategy, "from", from, "to", to, "elapsed", elapsed)
}

// ConversionFallback logs a recoverable conversion failure where playback
// continues in the native format.
func ConversionFallback(ctx context.Context, from, to string, err error) {
	WarnContext(ctx, "conversion failed, using native format",
		"from", from, "to", to, "error", err)
}
