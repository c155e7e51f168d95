package tts

import (
	"context"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
	"github.com/willwade/tts-wrapper-go/runtime/timing"
)

// Synthesizer converts text to speech audio.
// Provider adapters (Azure, Google, Polly, eSpeak, ...) implement this
// interface outside the core so the pipeline can use any of them
// interchangeably.
type Synthesizer interface {
	// Name returns the provider identifier (for logging/metrics).
	Name() string

	// SynthToBytes converts text to a complete audio buffer in the
	// provider's native container.
	SynthToBytes(ctx context.Context, text string, config SynthesisConfig) ([]byte, error)
}

// StreamingSynthesizer extends Synthesizer with chunked output and
// provider-native word boundaries.
type StreamingSynthesizer interface {
	Synthesizer

	// SynthToBytestream starts synthesis and returns the chunk stream.
	// The Chunks channel is closed when synthesis completes or fails.
	SynthToBytestream(ctx context.Context, text string, config SynthesisConfig) (*ByteStream, error)
}

// TimepointReporter is implemented by synthesizers that record SSML mark
// timepoints (word index + seconds) during the last SynthToBytes call.
type TimepointReporter interface {
	Timepoints() []timing.Timepoint
}

// ByteStream is the result of a streaming synthesis call.
type ByteStream struct {
	// Chunks delivers audio data in order.
	Chunks <-chan AudioChunk

	// WordBoundaries returns the boundaries reported so far. It is only
	// complete after Chunks is closed. May be nil.
	WordBoundaries func() []timing.Boundary

	// BoundaryUnit is the unit of Offset and Duration in WordBoundaries.
	BoundaryUnit timing.Unit
}

// AudioChunk represents a chunk of synthesized audio data.
type AudioChunk struct {
	// Data is the raw audio bytes.
	Data []byte

	// Index is the chunk sequence number (0-indexed).
	Index int

	// Final indicates this is the last chunk.
	Final bool

	// Error is set if an error occurred during synthesis.
	Error error
}

// SynthesisConfig configures text-to-speech synthesis.
type SynthesisConfig struct {
	// Voice is the provider-specific voice ID.
	Voice string

	// Language is the language code (e.g., "en-US").
	Language string

	// Format is the requested container. FormatUnknown means provider native.
	Format audio.ContainerFormat

	// Rate is the speech rate multiplier (1.0 = normal).
	Rate float64

	// Pitch adjusts the voice pitch in semitones.
	Pitch float64

	// Volume is the output gain (0-100).
	Volume float64

	// SSML marks Text as SSML markup rather than plain text.
	SSML bool
}

// DefaultSynthesisConfig returns defaults that leave every choice to the provider.
func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		Format: audio.FormatUnknown,
		Rate:   1.0,
		Volume: 100,
	}
}

// Collect drains a ByteStream into one buffer. The first chunk error aborts
// collection; no partial buffer is returned.
func Collect(ctx context.Context, stream *ByteStream) ([]byte, error) {
	var buf []byte
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case chunk, ok := <-stream.Chunks:
			if !ok {
				return buf, nil
			}
			if chunk.Error != nil {
				return nil, chunk.Error
			}
			buf = append(buf, chunk.Data...)
		}
	}
}
