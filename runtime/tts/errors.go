package tts

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyText is returned when attempting to synthesize empty text.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyAudio is returned when a provider answers with no audio bytes.
	ErrEmptyAudio = errors.New("synthesizer returned no audio")

	// ErrStreamingUnsupported is returned when a streamed call targets a
	// synthesizer without SynthToBytestream.
	ErrStreamingUnsupported = errors.New("synthesizer does not support streaming")
)

// Synthesizer operations reported in SynthesisError.Op.
const (
	OpSynthesize = "synthesize"
	OpStream     = "stream"
)

// SynthesisError wraps a failed provider call.
type SynthesisError struct {
	Provider string
	Op       string
	Cause    error

	// Retryable marks transient failures such as timeouts or throttling.
	Retryable bool
}

// NewSynthesisError wraps cause for provider. Deadline errors are retryable.
func NewSynthesisError(provider, op string, cause error) *SynthesisError {
	return &SynthesisError{
		Provider:  provider,
		Op:        op,
		Cause:     cause,
		Retryable: errors.Is(cause, context.DeadlineExceeded),
	}
}

func (e *SynthesisError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("tts: %s %s failed", e.Provider, e.Op)
	}
	return fmt.Sprintf("tts: %s %s failed: %v", e.Provider, e.Op, e.Cause)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err is a SynthesisError marked retryable.
func IsRetryable(err error) bool {
	var se *SynthesisError
	return errors.As(err, &se) && se.Retryable
}
