package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/willwade/tts-wrapper-go/runtime/events"
)

const (
	sessionSpanName   = "tts.session"
	boundaryEventName = "word.boundary"
)

// OTelEventListener converts playback events into one span per session.
// Word boundaries become span events. A stopped session is closed with
// session.stopped=true by StopSession, or when the next session starts.
type OTelEventListener struct {
	tracer trace.Tracer
	parent context.Context //nolint:containedctx // parents session spans

	mu       sync.Mutex
	sessions map[string]trace.Span
}

// NewOTelEventListener creates a listener recording session spans with tracer.
func NewOTelEventListener(tracer trace.Tracer) *OTelEventListener {
	return &OTelEventListener{
		tracer:   tracer,
		parent:   context.Background(),
		sessions: make(map[string]trace.Span),
	}
}

// WithParent parents subsequent session spans under the span in ctx.
func (l *OTelEventListener) WithParent(ctx context.Context) *OTelEventListener {
	l.mu.Lock()
	l.parent = ctx
	l.mu.Unlock()
	return l
}

// OnEvent handles a single playback event. It can be passed to OnAll.
func (l *OTelEventListener) OnEvent(evt *events.Event) {
	switch evt.Kind {
	case events.KindStart:
		l.startSession(evt)
	case events.KindBoundary:
		l.recordBoundary(evt)
	case events.KindEnd:
		l.endSession(evt)
	}
}

// Listener returns OnEvent as an events.Listener.
func (l *OTelEventListener) Listener() events.Listener {
	return l.OnEvent
}

// Close ends any session spans still open, marking them stopped.
func (l *OTelEventListener) Close() {
	l.mu.Lock()
	open := l.sessions
	l.sessions = make(map[string]trace.Span)
	l.mu.Unlock()

	for _, span := range open {
		span.SetAttributes(attribute.Bool("session.stopped", true))
		span.End()
	}
}

// StopSession ends the span of a stopped session. Its signature matches
// playback.StopObserver.
func (l *OTelEventListener) StopSession(sessionID string) {
	l.mu.Lock()
	span, ok := l.sessions[sessionID]
	delete(l.sessions, sessionID)
	l.mu.Unlock()
	if !ok {
		return
	}
	span.SetAttributes(attribute.Bool("session.stopped", true))
	span.End()
}

func (l *OTelEventListener) startSession(evt *events.Event) {
	l.Close()

	l.mu.Lock()
	defer l.mu.Unlock()
	_, span := l.tracer.Start(l.parent, sessionSpanName,
		trace.WithTimestamp(evt.Timestamp),
		trace.WithAttributes(
			attribute.String("session.id", evt.SessionID),
			attribute.Int("text.length", len(evt.Text)),
		),
	)
	l.sessions[evt.SessionID] = span
}

func (l *OTelEventListener) recordBoundary(evt *events.Event) {
	l.mu.Lock()
	span, ok := l.sessions[evt.SessionID]
	l.mu.Unlock()
	if !ok {
		return
	}
	span.AddEvent(boundaryEventName,
		trace.WithTimestamp(evt.Timestamp),
		trace.WithAttributes(
			attribute.Int("word.index", evt.Index),
			attribute.String("word.text", evt.Word.Word),
			attribute.Float64("word.start_seconds", evt.Word.Start),
			attribute.Float64("word.end_seconds", evt.Word.End),
		),
	)
}

func (l *OTelEventListener) endSession(evt *events.Event) {
	l.mu.Lock()
	span, ok := l.sessions[evt.SessionID]
	delete(l.sessions, evt.SessionID)
	l.mu.Unlock()
	if !ok {
		return
	}

	if evt.Duration > 0 {
		span.SetAttributes(attribute.Float64("audio.duration_seconds", evt.Duration.Seconds()))
	}
	if evt.Err != nil {
		span.RecordError(evt.Err)
		span.SetStatus(codes.Error, evt.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(evt.Timestamp))
}
