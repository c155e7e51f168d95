package logger

import (
	"context"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// Context keys extracted into every log record by ContextHandler.
const (
	// ContextKeySessionID identifies the playback session.
	ContextKeySessionID contextKey = "session_id"

	// ContextKeyRequestID identifies a single synthesis or conversion request.
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeyProvider identifies the synthesis provider (e.g., "polly", "espeak").
	ContextKeyProvider contextKey = "provider"

	// ContextKeyVoice identifies the voice used for synthesis.
	ContextKeyVoice contextKey = "voice"

	// ContextKeyFormat identifies the requested output container.
	ContextKeyFormat contextKey = "format"

	// ContextKeyStage identifies the pipeline stage ("synthesize", "convert", "play").
	ContextKeyStage contextKey = "stage"
)

var allContextKeys = []contextKey{
	ContextKeySessionID,
	ContextKeyRequestID,
	ContextKeyProvider,
	ContextKeyVoice,
	ContextKeyFormat,
	ContextKeyStage,
}

// WithSessionID returns a new context with the session ID set.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// WithProvider returns a new context with the provider name set.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, ContextKeyProvider, provider)
}

// WithVoice returns a new context with the voice set.
func WithVoice(ctx context.Context, voice string) context.Context {
	return context.WithValue(ctx, ContextKeyVoice, voice)
}

// WithFormat returns a new context with the output format set.
func WithFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, ContextKeyFormat, format)
}

// WithStage returns a new context with the pipeline stage set.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ContextKeyStage, stage)
}

// LoggingFields holds all standard logging context fields.
type LoggingFields struct {
	SessionID string
	RequestID string
	Provider  string
	Voice     string
	Format    string
	Stage     string
}

// WithLoggingContext sets every non-empty field of fields on ctx.
func WithLoggingContext(ctx context.Context, fields *LoggingFields) context.Context {
	if fields == nil {
		return ctx
	}
	set := func(key contextKey, v string) {
		if v != "" {
			ctx = context.WithValue(ctx, key, v)
		}
	}
	set(ContextKeySessionID, fields.SessionID)
	set(ContextKeyRequestID, fields.RequestID)
	set(ContextKeyProvider, fields.Provider)
	set(ContextKeyVoice, fields.Voice)
	set(ContextKeyFormat, fields.Format)
	set(ContextKeyStage, fields.Stage)
	return ctx
}

// ExtractLoggingFields extracts all logging fields from a context.
func ExtractLoggingFields(ctx context.Context) LoggingFields {
	get := func(key contextKey) string {
		s, _ := ctx.Value(key).(string)
		return s
	}
	return LoggingFields{
		SessionID: get(ContextKeySessionID),
		RequestID: get(ContextKeyRequestID),
		Provider:  get(ContextKeyProvider),
		Voice:     get(ContextKeyVoice),
		Format:    get(ContextKeyFormat),
		Stage:     get(ContextKeyStage),
	}
}
