package audio

import (
	"errors"
	"fmt"
)

// FormatErrorKind classifies malformed or unsupported containers.
type FormatErrorKind int

const (
	// NotWav means the RIFF/WAVE signature is missing.
	NotWav FormatErrorKind = iota + 1
	// UnsupportedCodec means the fmt chunk declares a non-PCM encoding.
	UnsupportedCodec
	// Truncated means a required chunk is missing or runs past the buffer.
	Truncated
	// UnsupportedBitDepth means the sample width is not 8, 16, 24 or 32 bits.
	UnsupportedBitDepth
	// UnsupportedChannelCount means the channel layout is not mono or stereo.
	UnsupportedChannelCount
)

// Sentinels for errors.Is matching against a *FormatError of the same kind.
var (
	ErrNotWav                  = &FormatError{Kind: NotWav}
	ErrUnsupportedCodec        = &FormatError{Kind: UnsupportedCodec}
	ErrTruncated               = &FormatError{Kind: Truncated}
	ErrUnsupportedBitDepth     = &FormatError{Kind: UnsupportedBitDepth}
	ErrUnsupportedChannelCount = &FormatError{Kind: UnsupportedChannelCount}

	// ErrUnsupportedFormat is returned when decoding a container with no in-process decoder.
	ErrUnsupportedFormat = errors.New("no in-process decoder for container format")
)

// FormatError reports a malformed or unsupported audio container.
// It is never recovered automatically.
type FormatError struct {
	Kind   FormatErrorKind
	Detail string
}

// String returns the kind name.
func (k FormatErrorKind) String() string {
	switch k {
	case NotWav:
		return "not a WAV container"
	case UnsupportedCodec:
		return "unsupported codec"
	case Truncated:
		return "truncated container"
	case UnsupportedBitDepth:
		return "unsupported bit depth"
	case UnsupportedChannelCount:
		return "unsupported channel count"
	default:
		return "format error"
	}
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Detail == "" {
		return "audio: " + e.Kind.String()
	}
	return "audio: " + e.Kind.String() + ": " + e.Detail
}

// Is matches any *FormatError with the same kind.
func (e *FormatError) Is(target error) bool {
	var fe *FormatError
	if !errors.As(target, &fe) {
		return false
	}
	return fe.Kind == e.Kind
}

func formatErrorf(kind FormatErrorKind, format string, args ...any) *FormatError {
	return &FormatError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
