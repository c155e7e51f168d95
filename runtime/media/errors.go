package media

import (
	"errors"
	"strings"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
)

// ConversionErrorKind classifies conversion failures.
type ConversionErrorKind int

const (
	// AllPathsExhausted means every strategy for the format pair failed.
	AllPathsExhausted ConversionErrorKind = iota + 1
	// ToolNotFound means the external encoder binary could not be found.
	ToolNotFound
	// ToolExitedNonZero means the external encoder ran and reported failure.
	ToolExitedNonZero
	// ToolTimeout means the external encoder exceeded its deadline.
	ToolTimeout
	// EmptyOutput means a strategy finished without producing audio.
	EmptyOutput
	// EncoderFailed means an in-process encoder or decoder failed.
	EncoderFailed
)

// String returns the kind name.
func (k ConversionErrorKind) String() string {
	switch k {
	case AllPathsExhausted:
		return "all conversion paths exhausted"
	case ToolNotFound:
		return "encoder tool not found"
	case ToolExitedNonZero:
		return "encoder tool exited with non-zero status"
	case ToolTimeout:
		return "encoder tool timed out"
	case EmptyOutput:
		return "encoder produced no output"
	case EncoderFailed:
		return "in-process encoder failed"
	default:
		return "conversion failed"
	}
}

// Sentinels for errors.Is matching against a *ConversionError of the same kind.
var (
	ErrAllPathsExhausted = &ConversionError{Kind: AllPathsExhausted}
	ErrToolNotFound      = &ConversionError{Kind: ToolNotFound}
	ErrToolExitedNonZero = &ConversionError{Kind: ToolExitedNonZero}
	ErrToolTimeout       = &ConversionError{Kind: ToolTimeout}
	ErrEmptyOutput       = &ConversionError{Kind: EmptyOutput}
	ErrEncoderFailed     = &ConversionError{Kind: EncoderFailed}

	// ErrEmptyAudio is returned when a conversion request carries no bytes.
	ErrEmptyAudio = errors.New("empty audio data")

	// ErrFFmpegNotFound is the cause of ToolNotFound errors from the ffmpeg strategy.
	ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")

	// ErrFFmpegTimeout is the cause of ToolTimeout errors from the ffmpeg strategy.
	ErrFFmpegTimeout = errors.New("ffmpeg execution timed out")
)

// ConversionError reports a failed conversion. For AllPathsExhausted,
// Attempts holds the error of every strategy that was tried, in order.
type ConversionError struct {
	Kind     ConversionErrorKind
	Strategy string
	From     audio.ContainerFormat
	To       audio.ContainerFormat
	Attempts []error
	Cause    error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	var b strings.Builder
	b.WriteString("media: ")
	if e.Strategy != "" {
		b.WriteString(e.Strategy)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.From != audio.FormatUnknown || e.To != audio.FormatUnknown {
		b.WriteString(" (" + e.From.String() + " -> " + e.To.String() + ")")
	}
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	for i, a := range e.Attempts {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(a.Error())
	}
	return b.String()
}

// Unwrap exposes the cause and every attempt to errors.Is and errors.As.
func (e *ConversionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts)+1)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return append(errs, e.Attempts...)
}

// Is matches any *ConversionError with the same kind.
func (e *ConversionError) Is(target error) bool {
	t, ok := target.(*ConversionError)
	return ok && t.Kind == e.Kind
}

func newConversionError(kind ConversionErrorKind, strategy string, cause error) *ConversionError {
	return &ConversionError{Kind: kind, Strategy: strategy, Cause: cause}
}
