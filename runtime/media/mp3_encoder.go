package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/braheezy/shine-mp3/pkg/mp3"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
)

const (
	strategyInProcessMP3 = "inprocess-mp3"

	// MP3FrameSamples is the number of samples per channel in one MPEG-1 Layer III frame.
	MP3FrameSamples = 1152
)

// mp3SampleRates are the MPEG-1 rates accepted by the in-process encoder.
var mp3SampleRates = []int{32000, 44100, 48000}

// FrameEncoder encodes fixed-size blocks of 16-bit samples to MP3.
// right is nil for mono input. Output chunks are concatenated in call order.
type FrameEncoder interface {
	EncodeFrame(left, right []int16) ([]byte, error)
	Flush() ([]byte, error)
}

// FrameEncoderFactory creates a FrameEncoder for one stream.
type FrameEncoderFactory func(sampleRate, channels, bitRateKbps int) (FrameEncoder, error)

// shineEncoder adapts the shine encoder, which consumes a whole interleaved
// stream per Write, to the frame interface. Frames are buffered until Flush.
type shineEncoder struct {
	enc      *mp3.Encoder
	channels int
	pending  []int16
}

// newShineEncoder ignores bitRateKbps: shine encodes at its fixed default rate.
func newShineEncoder(sampleRate, channels, _ int) (FrameEncoder, error) {
	return &shineEncoder{
		enc:      mp3.NewEncoder(sampleRate, channels),
		channels: channels,
	}, nil
}

func (e *shineEncoder) EncodeFrame(left, right []int16) ([]byte, error) {
	e.pending = append(e.pending, audio.Interleave(left, right)...)
	return nil, nil
}

func (e *shineEncoder) Flush() (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mp3 encoder panicked: %v", r)
		}
	}()
	var buf bytes.Buffer
	if err := e.enc.Write(&buf, e.pending); err != nil {
		return nil, err
	}
	e.pending = nil
	return buf.Bytes(), nil
}

// inProcessMP3Strategy encodes WAV to MP3 without leaving the process.
type inProcessMP3Strategy struct {
	newEncoder FrameEncoderFactory
}

func newInProcessMP3Strategy(factory FrameEncoderFactory) *inProcessMP3Strategy {
	return &inProcessMP3Strategy{newEncoder: factory}
}

func (s *inProcessMP3Strategy) Name() string { return strategyInProcessMP3 }

func (s *inProcessMP3Strategy) Convert(
	ctx context.Context, src audio.Buffer, target audio.ContainerFormat, opts Options,
) (out []byte, err error) {
	if src.Format() != audio.FormatWAV || target != audio.FormatMP3 {
		return nil, fmt.Errorf("%w: %s to %s", audio.ErrUnsupportedFormat, src.Format(), target)
	}

	params, pcm, err := audio.ParseWAV(src.Bytes())
	if err != nil {
		return nil, err
	}
	if err := params.ValidateChannels(); err != nil {
		return nil, err
	}
	samples, err := audio.To16Bit(pcm, int(params.BitsPerSample))
	if err != nil {
		return nil, err
	}
	channels := int(params.Channels)

	rate := int(params.SampleRate)
	if opts.SampleRate > 0 {
		rate = opts.SampleRate
	}
	outRate := nearestMP3Rate(rate)
	if outRate != int(params.SampleRate) {
		samples, err = audio.Resample(samples, channels, int(params.SampleRate), outRate)
		if err != nil {
			return nil, err
		}
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("mp3 encoder panicked: %v", r)
		}
	}()

	enc, err := s.newEncoder(outRate, channels, opts.BitRate)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	block := MP3FrameSamples * channels
	for off := 0; off < len(samples); off += block {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame := samples[off:min(off+block, len(samples))]
		if len(frame) < block {
			padded := make([]int16, block)
			copy(padded, frame)
			frame = padded
		}
		left, right := audio.Deinterleave(frame, channels)
		chunk, err := enc.EncodeFrame(left, right)
		if err != nil {
			return nil, err
		}
		buf.Write(chunk)
	}

	tail, err := enc.Flush()
	if err != nil {
		return nil, err
	}
	buf.Write(tail)
	return buf.Bytes(), nil
}

// nearestMP3Rate returns the supported encoder rate closest to rate.
func nearestMP3Rate(rate int) int {
	best := mp3SampleRates[0]
	for _, r := range mp3SampleRates[1:] {
		if abs(r-rate) < abs(best-rate) {
			best = r
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
