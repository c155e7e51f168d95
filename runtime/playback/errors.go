package playback

import "errors"

// ErrorKind classifies session failures.
type ErrorKind int

const (
	// SynthesisFailed means the synthesizer returned an error or no audio.
	SynthesisFailed ErrorKind = iota + 1
	// SinkUnavailable means the host offers no way to play audio.
	SinkUnavailable
	// SinkFailed means the audio sink could not play the prepared buffer.
	SinkFailed
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case SynthesisFailed:
		return "synthesis failed"
	case SinkUnavailable:
		return "no audio sink available"
	case SinkFailed:
		return "audio sink failed"
	default:
		return "playback failed"
	}
}

// Sentinels for errors.Is matching against a *PlaybackError of the same kind.
var (
	ErrSynthesisFailed = &PlaybackError{Kind: SynthesisFailed}
	ErrSinkUnavailable = &PlaybackError{Kind: SinkUnavailable}
	ErrSinkFailed      = &PlaybackError{Kind: SinkFailed}

	// ErrStopped is returned by Speak when the session was stopped before it finished.
	ErrStopped = errors.New("playback stopped")

	// ErrNoSink is the cause of SinkUnavailable errors from the system probe.
	ErrNoSink = errors.New("no audio output device or player command found")

	// ErrPauseUnsupported is returned by sinks that cannot suspend output.
	ErrPauseUnsupported = errors.New("sink does not support pause")
)

// PlaybackError is fatal to the session that produced it. The end event is
// still emitted with this error.
type PlaybackError struct {
	Kind  ErrorKind
	Cause error
}

// Error implements the error interface.
func (e *PlaybackError) Error() string {
	if e.Cause != nil {
		return "playback: " + e.Kind.String() + ": " + e.Cause.Error()
	}
	return "playback: " + e.Kind.String()
}

// Unwrap returns the underlying error.
func (e *PlaybackError) Unwrap() error {
	return e.Cause
}

// Is matches any *PlaybackError with the same kind.
func (e *PlaybackError) Is(target error) bool {
	t, ok := target.(*PlaybackError)
	return ok && t.Kind == e.Kind
}
