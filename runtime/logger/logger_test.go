package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf, level)
	t.Cleanup(func() { SetOutput(nil, slog.LevelInfo) })
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"trace":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetOutput(t *testing.T) {
	buf := captureOutput(t, slog.LevelInfo)

	Info("conversion started", "strategy", "ffmpeg")
	Debug("hidden at info")

	out := buf.String()
	assert.Contains(t, out, "conversion started")
	assert.Contains(t, out, "strategy=ffmpeg")
	assert.NotContains(t, out, "hidden at info")
}

func TestSetVerbose(t *testing.T) {
	buf := captureOutput(t, slog.LevelInfo)

	SetVerbose(true)
	Debug("visible when verbose")
	SetVerbose(false)
	Debug("hidden again")

	assert.Contains(t, buf.String(), "visible when verbose")
	assert.NotContains(t, buf.String(), "hidden again")
}

func TestContextHelpersWriteFields(t *testing.T) {
	buf := captureOutput(t, slog.LevelDebug)

	ctx := WithSessionID(context.Background(), "sess-1")
	ctx = WithProvider(ctx, "polly")
	WarnContext(ctx, "conversion failed")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "session_id=sess-1")
	assert.Contains(t, out, "provider=polly")
}

func TestDomainHelpers(t *testing.T) {
	buf := captureOutput(t, slog.LevelDebug)
	ctx := context.Background()
	boom := errors.New("boom")

	SynthesisCall(ctx, "espeak", 11, 4096, 120*time.Millisecond, "voice", "en")
	SynthesisError(ctx, "espeak", boom)
	Conversion(ctx, "ffmpeg", "wav", "mp3", time.Second, nil)
	Conversion(ctx, "inprocess-mp3", "wav", "mp3", time.Second, boom)
	ConversionFallback(ctx, "wav", "ogg", boom)

	out := buf.String()
	assert.Contains(t, out, "synthesis completed")
	assert.Contains(t, out, "audio_bytes=4096")
	assert.Contains(t, out, "level=ERROR msg=\"synthesis failed\"")
	assert.Contains(t, out, "conversion strategy succeeded")
	assert.Contains(t, out, "strategy=inprocess-mp3")
	assert.Contains(t, out, "level=WARN msg=\"conversion failed, using native format\"")
}

func TestSetLogger_PreservedByConfigure(t *testing.T) {
	var custom bytes.Buffer
	SetLogger(slog.New(slog.NewJSONHandler(&custom, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	assert.NoError(t, Configure(&LoggingConfigSpec{DefaultLevel: "error"}))
	Info("still custom")

	assert.Contains(t, custom.String(), `"msg":"still custom"`)
}

func TestLoggingWithNilContext(t *testing.T) {
	captureOutput(t, slog.LevelDebug)
	//nolint:staticcheck // nil context is tolerated
	InfoContext(nil, "nil context")
}
