package audio

import (
	"encoding/binary"
	"fmt"
)

// Common sample rates of synthesized speech.
const (
	SampleRate16kHz  = 16000
	SampleRate22kHz  = 22050
	SampleRate24kHz  = 24000
	SampleRate44k1Hz = 44100
	SampleRate48kHz  = 48000
)

const bytesPerPCM16Sample = 2

// Resample converts interleaved 16-bit samples from one rate to another
// using linear interpolation per channel.
func Resample(samples []int16, channels, fromRate, toRate int) ([]int16, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid sample rates: from=%d, to=%d", fromRate, toRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}

	if fromRate == toRate {
		out := make([]int16, len(samples))
		copy(out, samples)
		return out, nil
	}

	inFrames := len(samples) / channels
	if inFrames == 0 {
		return []int16{}, nil
	}
	outFrames := int(float64(inFrames) * float64(toRate) / float64(fromRate))
	if outFrames == 0 {
		return []int16{}, nil
	}

	out := make([]int16, outFrames*channels)
	ratio := float64(fromRate) / float64(toRate)

	for i := 0; i < outFrames; i++ {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		for c := 0; c < channels; c++ {
			if srcIdx >= inFrames-1 {
				out[i*channels+c] = samples[(inFrames-1)*channels+c]
				continue
			}
			s0 := float64(samples[srcIdx*channels+c])
			s1 := float64(samples[(srcIdx+1)*channels+c])
			out[i*channels+c] = int16(s0 + frac*(s1-s0))
		}
	}

	return out, nil
}

// ResamplePCM16 resamples mono little-endian 16-bit PCM bytes.
func ResamplePCM16(input []byte, fromRate, toRate int) ([]byte, error) {
	if len(input)%bytesPerPCM16Sample != 0 {
		return nil, fmt.Errorf("input length %d is not a multiple of %d bytes per sample", len(input), bytesPerPCM16Sample)
	}

	samples := make([]int16, len(input)/bytesPerPCM16Sample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(input[i*bytesPerPCM16Sample:])) //nolint:gosec // Safe PCM16 conversion
	}

	out, err := Resample(samples, 1, fromRate, toRate)
	if err != nil {
		return nil, err
	}
	return Int16ToBytes(out), nil
}
