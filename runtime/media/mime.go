// Package media converts synthesized audio between container formats.
package media

import (
	"path/filepath"
	"strings"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
)

// Default configuration values.
const (
	DefaultFFmpegPath          = "ffmpeg"
	DefaultFFmpegTimeout       = 300 // seconds
	DefaultFFmpegCheckTimeout  = 5   // seconds for availability check
	DefaultTempFilePermissions = 0600
	DefaultBitRateKbps         = 128
)

// NormalizeMIMEType normalizes MIME type variations to a canonical form.
// Parameters ("; codecs=...") are dropped.
func NormalizeMIMEType(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if f := audio.ParseFormat(mimeType); f != audio.FormatUnknown {
		return f.MIMEType()
	}
	return mimeType
}

// FormatFromPath returns the container implied by a file extension.
func FormatFromPath(path string) audio.ContainerFormat {
	return audio.ParseFormat(filepath.Ext(path))
}

// IsFormatSupported reports whether format appears in supported.
func IsFormatSupported(format audio.ContainerFormat, supported []audio.ContainerFormat) bool {
	for _, s := range supported {
		if s == format {
			return true
		}
	}
	return false
}

// SelectTargetFormat picks the format to convert to when a consumer accepts
// only some containers. It prefers WAV (lossless, decodable in-process),
// then MP3, then the first supported entry.
func SelectTargetFormat(supported []audio.ContainerFormat) audio.ContainerFormat {
	if len(supported) == 0 {
		return audio.FormatWAV
	}
	for _, pref := range []audio.ContainerFormat{audio.FormatWAV, audio.FormatMP3} {
		if IsFormatSupported(pref, supported) {
			return pref
		}
	}
	return supported[0]
}

// ffmpegCodec returns the encoder name and whether the codec is lossy
// (and so takes a bitrate).
func ffmpegCodec(format audio.ContainerFormat) (codec string, lossy bool) {
	switch format {
	case audio.FormatMP3:
		return "libmp3lame", true
	case audio.FormatOGG:
		return "libvorbis", true
	case audio.FormatFLAC:
		return "flac", false
	case audio.FormatWAV:
		return "pcm_s16le", false
	default:
		return "", false
	}
}
