package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  ContainerFormat
	}{
		{"empty", nil, FormatUnknown},
		{"short", []byte{'R', 'I', 'F'}, FormatUnknown},
		{"wav", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), FormatWAV},
		{"riff but not wave", []byte("RIFF\x24\x00\x00\x00AVI LIST"), FormatUnknown},
		{"riff too short for form type", []byte("RIFF\x00\x00"), FormatUnknown},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x64}, FormatMP3},
		{"mp3 mpeg2 frame sync", []byte{0xFF, 0xF3, 0x48, 0xC4}, FormatMP3},
		{"mp3 id3 tag", []byte("ID3\x04\x00\x00"), FormatMP3},
		{"ogg", []byte{0x4F, 0x67, 0x67, 0x53}, FormatOGG},
		{"flac", []byte{0x66, 0x4C, 0x61, 0x43}, FormatFLAC},
		{"ff without sync bits", []byte{0xFF, 0x1F, 0x00, 0x00}, FormatUnknown},
		{"text", []byte("hello"), FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.input))
		})
	}
}

func TestDetect_BuiltWAV(t *testing.T) {
	wav := BuildWAV([]byte{0, 0, 1, 0}, 16000, 1, 16)
	assert.Equal(t, FormatWAV, Detect(wav))
	assert.True(t, LooksLikeWAV(wav))
}

func TestLooksLikeWAV_UnknownIsNotWAV(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B}
	assert.Equal(t, FormatUnknown, Detect(raw))
	assert.False(t, LooksLikeWAV(raw))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want ContainerFormat
	}{
		{"wav", FormatWAV},
		{".WAV", FormatWAV},
		{"audio/x-wav", FormatWAV},
		{"mp3", FormatMP3},
		{"audio/mpeg", FormatMP3},
		{"audio/ogg; codecs=opus", FormatOGG},
		{"opus", FormatOGG},
		{"flac", FormatFLAC},
		{"aac", FormatUnknown},
		{"", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFormat(tt.in))
		})
	}
}

func TestContainerFormat_StringAndMIME(t *testing.T) {
	assert.Equal(t, "mp3", FormatMP3.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
	assert.Equal(t, MIMETypeWAV, FormatWAV.MIMEType())
	assert.Equal(t, MIMETypeOGG, FormatOGG.MIMEType())
	assert.Equal(t, MIMETypeAny, FormatUnknown.MIMEType())
}

func TestBuffer(t *testing.T) {
	data := []byte{0x66, 0x4C, 0x61, 0x43, 0x00}

	buf := NewBuffer(data)
	assert.Equal(t, FormatFLAC, buf.Format())
	assert.Equal(t, MIMETypeFLAC, buf.MIMEType())
	assert.Equal(t, 5, buf.Len())
	assert.False(t, buf.IsEmpty())

	wrapped := WrapBuffer(data, FormatOGG)
	assert.Equal(t, FormatOGG, wrapped.Format())
	assert.True(t, NewBuffer(nil).IsEmpty())
}
