package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampPCM16(n int) []byte {
	input := make([]byte, n*2)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(input[i*2:], uint16(i*100))
	}
	return input
}

func TestResamplePCM16_SameRate(t *testing.T) {
	input := rampPCM16(50)

	output, err := ResamplePCM16(input, 16000, 16000)
	require.NoError(t, err)
	assert.Equal(t, input, output)
}

func TestResamplePCM16_Downsample(t *testing.T) {
	frames := float64(100)
	output, err := ResamplePCM16(rampPCM16(100), 24000, 16000)
	require.NoError(t, err)
	assert.Len(t, output, int(frames*16000/24000)*2)
}

func TestResamplePCM16_Upsample(t *testing.T) {
	output, err := ResamplePCM16(rampPCM16(100), 16000, 24000)
	require.NoError(t, err)
	assert.Len(t, output, 150*2)
}

func TestResamplePCM16_InvalidInput(t *testing.T) {
	_, err := ResamplePCM16(make([]byte, 101), 24000, 16000)
	assert.Error(t, err)
}

func TestResamplePCM16_InvalidRates(t *testing.T) {
	input := make([]byte, 100)

	_, err := ResamplePCM16(input, 0, 16000)
	assert.Error(t, err)

	_, err = ResamplePCM16(input, 16000, 0)
	assert.Error(t, err)
}

func TestResample_StereoKeepsChannelsApart(t *testing.T) {
	// Left channel is constant 1000, right is constant -1000.
	frames := 240
	in := make([]int16, frames*2)
	for i := 0; i < frames; i++ {
		in[2*i] = 1000
		in[2*i+1] = -1000
	}

	out, err := Resample(in, 2, SampleRate24kHz, SampleRate16kHz)
	require.NoError(t, err)
	require.Len(t, out, 160*2)

	left, right := Deinterleave(out, 2)
	for i := range left {
		assert.Equal(t, int16(1000), left[i])
		assert.Equal(t, int16(-1000), right[i])
	}
}

func TestResample_InvalidChannels(t *testing.T) {
	_, err := Resample([]int16{1, 2}, 0, 16000, 8000)
	assert.Error(t, err)
}

func TestResample_Empty(t *testing.T) {
	out, err := Resample(nil, 1, 16000, 8000)
	require.NoError(t, err)
	assert.Empty(t, out)
}
