package media

import (
	"context"
	"fmt"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
)

const strategyMP3Decode = "inprocess-mp3-decode"

// mp3DecodeStrategy decodes MP3 to 16-bit WAV in process.
type mp3DecodeStrategy struct{}

func (mp3DecodeStrategy) Name() string { return strategyMP3Decode }

func (mp3DecodeStrategy) Convert(
	_ context.Context, src audio.Buffer, target audio.ContainerFormat, opts Options,
) ([]byte, error) {
	if src.Format() != audio.FormatMP3 || target != audio.FormatWAV {
		return nil, fmt.Errorf("%w: %s to %s", audio.ErrUnsupportedFormat, src.Format(), target)
	}

	pcm, err := audio.Decode(src)
	if err != nil {
		return nil, err
	}

	samples, rate := pcm.Samples, pcm.SampleRate
	if opts.SampleRate > 0 && opts.SampleRate != rate {
		samples, err = audio.Resample(samples, pcm.Channels, rate, opts.SampleRate)
		if err != nil {
			return nil, err
		}
		rate = opts.SampleRate
	}
	if len(samples) == 0 {
		return nil, nil
	}

	return audio.BuildWAV(audio.Int16ToBytes(samples), rate, pcm.Channels, audio.BitDepth16), nil
}
