package audio

import "strings"

// ContainerFormat identifies the outer file structure wrapping audio samples.
type ContainerFormat int

const (
	// FormatUnknown means no known signature matched. It is not a synonym for WAV.
	FormatUnknown ContainerFormat = iota
	// FormatWAV is a RIFF/WAVE container.
	FormatWAV
	// FormatMP3 is an MPEG audio stream, optionally prefixed by an ID3 tag.
	FormatMP3
	// FormatOGG is an Ogg bitstream (Vorbis or Opus payload).
	FormatOGG
	// FormatFLAC is a native FLAC stream.
	FormatFLAC
)

// minSniffLength is the shortest buffer Detect will inspect.
const minSniffLength = 4

// MIME types for the supported containers.
const (
	MIMETypeWAV  = "audio/wav"
	MIMETypeMP3  = "audio/mpeg"
	MIMETypeOGG  = "audio/ogg"
	MIMETypeFLAC = "audio/flac"
	MIMETypeAny  = "application/octet-stream"
)

// String returns the lowercase format name, which doubles as the file extension.
func (f ContainerFormat) String() string {
	switch f {
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	case FormatOGG:
		return "ogg"
	case FormatFLAC:
		return "flac"
	default:
		return "unknown"
	}
}

// MIMEType returns the canonical MIME type for the format.
func (f ContainerFormat) MIMEType() string {
	switch f {
	case FormatWAV:
		return MIMETypeWAV
	case FormatMP3:
		return MIMETypeMP3
	case FormatOGG:
		return MIMETypeOGG
	case FormatFLAC:
		return MIMETypeFLAC
	default:
		return MIMETypeAny
	}
}

// ParseFormat maps a format name, file extension or MIME type to a ContainerFormat.
// Unrecognized input yields FormatUnknown.
func ParseFormat(s string) ContainerFormat {
	s = strings.ToLower(strings.TrimSpace(s))
	if idx := strings.Index(s, ";"); idx != -1 {
		s = strings.TrimSpace(s[:idx])
	}
	s = strings.TrimPrefix(s, ".")

	switch s {
	case "wav", "wave", MIMETypeWAV, "audio/x-wav", "audio/wave":
		return FormatWAV
	case "mp3", MIMETypeMP3, "audio/mp3":
		return FormatMP3
	case "ogg", "oga", "opus", MIMETypeOGG, "audio/opus":
		return FormatOGG
	case "flac", MIMETypeFLAC, "audio/x-flac":
		return FormatFLAC
	default:
		return FormatUnknown
	}
}

// Detect classifies a byte buffer's container from its magic bytes.
// Rules are evaluated in order and the first match wins: MP3 (ID3 tag or
// MPEG frame sync), WAV (RIFF....WAVE), OGG (OggS), FLAC (fLaC).
// Buffers shorter than four bytes are always FormatUnknown.
func Detect(b []byte) ContainerFormat {
	if len(b) < minSniffLength {
		return FormatUnknown
	}

	switch {
	case b[0] == 'I' && b[1] == 'D' && b[2] == '3':
		return FormatMP3
	case b[0] == 0xFF && b[1]&0xE0 == 0xE0:
		return FormatMP3
	case LooksLikeWAV(b):
		return FormatWAV
	case string(b[0:4]) == "OggS":
		return FormatOGG
	case string(b[0:4]) == "fLaC":
		return FormatFLAC
	}
	return FormatUnknown
}

// LooksLikeWAV reports whether b starts with a RIFF header of form type WAVE.
// Callers that want to treat an undetected buffer as WAV must confirm it here
// first rather than assuming it.
func LooksLikeWAV(b []byte) bool {
	return len(b) >= riffHeaderSize &&
		string(b[0:4]) == riffID &&
		string(b[8:12]) == waveID
}
