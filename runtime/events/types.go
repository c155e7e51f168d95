package events

import (
	"time"

	"github.com/willwade/tts-wrapper-go/runtime/timing"
)

// Kind identifies the type of event emitted during a playback session.
type Kind string

const (
	// KindStart fires once when a session begins, before synthesis.
	KindStart Kind = "start"
	// KindBoundary fires when playback reaches a word boundary.
	KindBoundary Kind = "boundary"
	// KindEnd fires exactly once when a session finishes or fails.
	KindEnd Kind = "end"
)

// Event is delivered to listeners. Fields beyond Kind, SessionID and
// Timestamp are set according to Kind.
type Event struct {
	Kind      Kind
	SessionID string
	Timestamp time.Time

	// Text is the input text (start events).
	Text string

	// Word and Index describe the boundary reached (boundary events).
	Word  timing.WordBoundary
	Index int

	// Err is the session failure, nil on natural completion (end events).
	Err error

	// Duration is the length of the audio that was played (end events, zero if unknown).
	Duration time.Duration
}

// NewStartEvent creates a start event.
func NewStartEvent(sessionID, text string) *Event {
	return &Event{Kind: KindStart, SessionID: sessionID, Timestamp: time.Now(), Text: text}
}

// NewBoundaryEvent creates a boundary event for timeline entry index.
func NewBoundaryEvent(sessionID string, index int, word timing.WordBoundary) *Event {
	return &Event{Kind: KindBoundary, SessionID: sessionID, Timestamp: time.Now(), Index: index, Word: word}
}

// NewEndEvent creates an end event. err is nil when playback completed naturally.
func NewEndEvent(sessionID string, err error) *Event {
	return &Event{Kind: KindEnd, SessionID: sessionID, Timestamp: time.Now(), Err: err}
}

// Failed reports whether an end event carries an error.
func (e *Event) Failed() bool {
	return e.Kind == KindEnd && e.Err != nil
}
