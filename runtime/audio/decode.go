package audio

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// mp3 decoder output is always 16-bit interleaved stereo.
const (
	mp3DecodedChannels = 2
	mp3DecodedBits     = 16
)

// PCM16 is decoded audio as interleaved signed 16-bit samples.
type PCM16 struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of multi-channel sample frames.
func (p *PCM16) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Duration returns the play time of the samples.
func (p *PCM16) Duration() time.Duration {
	if p.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(p.Frames()) / float64(p.SampleRate) * float64(time.Second))
}

// Decode decodes a WAV or MP3 buffer into 16-bit PCM.
// Other containers return ErrUnsupportedFormat.
func Decode(b Buffer) (*PCM16, error) {
	switch b.Format() {
	case FormatWAV:
		return decodeWAV(b.Bytes())
	case FormatMP3:
		return decodeMP3(b.Bytes())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, b.Format())
	}
}

func decodeWAV(data []byte) (*PCM16, error) {
	params, pcm, err := ParseWAV(data)
	if err != nil {
		return nil, err
	}
	if err := params.ValidateChannels(); err != nil {
		return nil, err
	}
	samples, err := To16Bit(pcm, int(params.BitsPerSample))
	if err != nil {
		return nil, err
	}
	return &PCM16{
		Samples:    samples,
		SampleRate: int(params.SampleRate),
		Channels:   int(params.Channels),
	}, nil
}

func decodeMP3(data []byte) (*PCM16, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open mp3 stream: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3 stream: %w", err)
	}

	samples, err := To16Bit(raw, mp3DecodedBits)
	if err != nil {
		return nil, err
	}
	return &PCM16{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		Channels:   mp3DecodedChannels,
	}, nil
}

// Duration returns the play time of a WAV or MP3 buffer.
// WAV durations are computed from the header without decoding samples.
func Duration(b Buffer) (time.Duration, error) {
	switch b.Format() {
	case FormatWAV:
		params, _, err := ParseWAV(b.Bytes())
		if err != nil {
			return 0, err
		}
		rate := params.ByteRate()
		if rate == 0 {
			return 0, formatErrorf(UnsupportedBitDepth, "zero byte rate")
		}
		return time.Duration(float64(params.DataSize) / float64(rate) * float64(time.Second)), nil

	case FormatMP3:
		dec, err := mp3.NewDecoder(bytes.NewReader(b.Bytes()))
		if err != nil {
			return 0, fmt.Errorf("failed to open mp3 stream: %w", err)
		}
		frameBytes := int64(mp3DecodedChannels * mp3DecodedBits / 8)
		if dec.SampleRate() == 0 || dec.Length() <= 0 {
			return 0, nil
		}
		frames := dec.Length() / frameBytes
		return time.Duration(float64(frames) / float64(dec.SampleRate()) * float64(time.Second)), nil

	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, b.Format())
	}
}
