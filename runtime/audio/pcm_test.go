package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTo16Bit(t *testing.T) {
	tests := []struct {
		name string
		pcm  []byte
		bps  int
		want []int16
	}{
		{"8-bit boundaries", []byte{0, 128, 255}, 8, []int16{-32768, 0, 32512}},
		{"16-bit passthrough", []byte{0x00, 0x80, 0xFF, 0x7F, 0x01, 0x00, 0xFF, 0xFF}, 16, []int16{-32768, 32767, 1, -1}},
		{"24-bit max", []byte{0xFF, 0xFF, 0x7F}, 24, []int16{32767}},
		{"24-bit min", []byte{0x00, 0x00, 0x80}, 24, []int16{-32768}},
		{"24-bit rounds", []byte{0x80, 0x01, 0x00}, 24, []int16{2}},
		{"24-bit negative one", []byte{0xFF, 0xFF, 0xFF}, 24, []int16{0}},
		{"32-bit max", []byte{0xFF, 0xFF, 0xFF, 0x7F}, 32, []int16{32767}},
		{"32-bit min", []byte{0x00, 0x00, 0x00, 0x80}, 32, []int16{-32768}},
		{"32-bit half step", []byte{0x00, 0x80, 0x00, 0x00}, 32, []int16{1}},
		{"trailing partial sample ignored", []byte{0x01, 0x00, 0x02}, 16, []int16{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := To16Bit(tt.pcm, tt.bps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTo16Bit_UnsupportedBitDepth(t *testing.T) {
	for _, bps := range []int{0, 4, 12, 20, 64} {
		_, err := To16Bit([]byte{0, 0, 0, 0}, bps)
		assert.ErrorIs(t, err, ErrUnsupportedBitDepth, "bps=%d", bps)
	}
}

func TestInt16ToBytes_RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768}
	got, err := To16Bit(Int16ToBytes(samples), 16)
	require.NoError(t, err)
	assert.Equal(t, samples, got)
}

func TestDeinterleave(t *testing.T) {
	left, right := Deinterleave([]int16{1, -1, 2, -2, 3, -3}, 2)
	assert.Equal(t, []int16{1, 2, 3}, left)
	assert.Equal(t, []int16{-1, -2, -3}, right)

	mono, none := Deinterleave([]int16{1, 2, 3}, 1)
	assert.Equal(t, []int16{1, 2, 3}, mono)
	assert.Nil(t, none)

	assert.Equal(t, []int16{1, -1, 2, -2, 3, -3}, Interleave(left, right))
}

func TestDecodeWAV(t *testing.T) {
	pcm := make([]byte, 16000*2)
	buf := NewBuffer(BuildWAV(pcm, 16000, 1, 16))

	decoded, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 16000, decoded.SampleRate)
	assert.Equal(t, 1, decoded.Channels)
	assert.Equal(t, 16000, decoded.Frames())
	assert.Equal(t, time.Second, decoded.Duration())

	d, err := Duration(buf)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}

func TestDecode_EightBitStereo(t *testing.T) {
	buf := NewBuffer(BuildWAV([]byte{0, 255, 128, 128}, 8000, 2, 8))
	decoded, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, []int16{-32768, 32512, 0, 0}, decoded.Samples)
	assert.Equal(t, 2, decoded.Frames())
}

func TestDecode_RejectsSurround(t *testing.T) {
	buf := NewBuffer(BuildWAV(make([]byte, 12), 8000, 6, 16))
	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrUnsupportedChannelCount)
}

func TestDecode_UnsupportedContainer(t *testing.T) {
	_, err := Decode(WrapBuffer([]byte("OggS...."), FormatOGG))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Duration(WrapBuffer([]byte("fLaC...."), FormatFLAC))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
