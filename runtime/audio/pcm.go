package audio

import (
	"encoding/binary"
	"math"
)

// Supported PCM sample widths.
const (
	BitDepth8  = 8
	BitDepth16 = 16
	BitDepth24 = 24
	BitDepth32 = 32
)

const (
	unsignedMidpoint = 128
	scale8To16       = 256
	scale24To16      = 256.0
	scale32To16      = 65536.0
)

// To16Bit normalizes little-endian PCM of the given width to signed 16-bit samples.
//
//   - 16-bit samples pass through unchanged.
//   - 8-bit unsigned samples map as (s-128)*256.
//   - 24-bit samples are sign-extended from bit 23 and divided by 256 with rounding.
//   - 32-bit samples are divided by 65536 with rounding.
//
// Trailing bytes that do not form a whole sample are ignored.
func To16Bit(pcm []byte, bitsPerSample int) ([]int16, error) {
	switch bitsPerSample {
	case BitDepth16:
		out := make([]int16, len(pcm)/2)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:])) //nolint:gosec // two's complement reinterpretation
		}
		return out, nil

	case BitDepth8:
		out := make([]int16, len(pcm))
		for i, s := range pcm {
			out[i] = int16((int(s) - unsignedMidpoint) * scale8To16) //nolint:gosec // range is [-32768, 32512]
		}
		return out, nil

	case BitDepth24:
		out := make([]int16, len(pcm)/3)
		for i := range out {
			b := pcm[i*3 : i*3+3]
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF // sign-extend from bit 23
			}
			out[i] = clampInt16(math.Round(float64(v) / scale24To16))
		}
		return out, nil

	case BitDepth32:
		out := make([]int16, len(pcm)/4)
		for i := range out {
			v := int32(binary.LittleEndian.Uint32(pcm[i*4:])) //nolint:gosec // two's complement reinterpretation
			out[i] = clampInt16(math.Round(float64(v) / scale32To16))
		}
		return out, nil
	}

	return nil, formatErrorf(UnsupportedBitDepth, "%d bits per sample", bitsPerSample)
}

// Int16ToBytes encodes samples as little-endian 16-bit PCM.
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s)) //nolint:gosec // two's complement reinterpretation
	}
	return out
}

// Deinterleave splits interleaved stereo samples into left and right channels.
// Mono input is returned as the left channel with a nil right channel.
func Deinterleave(samples []int16, channels int) (left, right []int16) {
	if channels != 2 {
		return samples, nil
	}
	frames := len(samples) / 2
	left = make([]int16, frames)
	right = make([]int16, frames)
	for i := 0; i < frames; i++ {
		left[i] = samples[2*i]
		right[i] = samples[2*i+1]
	}
	return left, right
}

// Interleave merges left and right channels into interleaved stereo samples.
// A nil right channel returns left unchanged.
func Interleave(left, right []int16) []int16 {
	if right == nil {
		return left
	}
	n := min(len(left), len(right))
	out := make([]int16, n*2)
	for i := 0; i < n; i++ {
		out[2*i] = left[i]
		out[2*i+1] = right[i]
	}
	return out
}

func clampInt16(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}
