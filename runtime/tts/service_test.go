package tts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
	"github.com/willwade/tts-wrapper-go/runtime/timing"
)

func TestDefaultSynthesisConfig(t *testing.T) {
	config := DefaultSynthesisConfig()
	assert.Equal(t, audio.FormatUnknown, config.Format)
	assert.Equal(t, 1.0, config.Rate)
	assert.Equal(t, 100.0, config.Volume)
}

func TestMockSynthesizer_SynthToBytes(t *testing.T) {
	ctx := context.Background()
	synth := NewMockSynthesizer("mock", []byte{1, 2, 3})

	data, err := synth.SynthToBytes(ctx, "Hello", DefaultSynthesisConfig())
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, []string{"Hello"}, synth.Calls())

	_, err = synth.SynthToBytes(ctx, "  ", DefaultSynthesisConfig())
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestMockSynthesizer_Error(t *testing.T) {
	boom := errors.New("boom")
	synth := NewMockSynthesizer("mock", nil).WithError(boom)

	_, err := synth.SynthToBytes(context.Background(), "Hello", DefaultSynthesisConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var se *SynthesisError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "mock", se.Provider)
	assert.Equal(t, OpSynthesize, se.Op)

	_, err = synth.SynthToBytestream(context.Background(), "Hello", DefaultSynthesisConfig())
	require.ErrorAs(t, err, &se)
	assert.Equal(t, OpStream, se.Op)
}

func TestMockSynthesizer_Stream(t *testing.T) {
	ctx := context.Background()
	data := make([]byte, 10)
	for i := range data {
		data[i] = byte(i)
	}
	boundaries := []timing.Boundary{{Text: "Hello", Offset: 0, Duration: 3_000_000}}
	synth := NewMockSynthesizer("mock", data).
		WithChunkSize(3).
		WithWordBoundaries(boundaries, timing.Ticks100ns)

	var _ StreamingSynthesizer = synth
	var _ TimepointReporter = synth

	stream, err := synth.SynthToBytestream(ctx, "Hello", DefaultSynthesisConfig())
	require.NoError(t, err)

	got, err := Collect(ctx, stream)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, boundaries, stream.WordBoundaries())
	assert.Equal(t, timing.Ticks100ns, stream.BoundaryUnit)
}

func TestCollect_ChunkError(t *testing.T) {
	dropped := errors.New("connection dropped")
	chunks := make(chan AudioChunk, 2)
	chunks <- AudioChunk{Data: []byte{1}}
	chunks <- AudioChunk{Error: dropped}
	close(chunks)

	got, err := Collect(context.Background(), &ByteStream{Chunks: chunks})
	assert.ErrorIs(t, err, dropped)
	assert.Nil(t, got)
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, &ByteStream{Chunks: make(chan AudioChunk)})
	assert.ErrorIs(t, err, context.Canceled)
}
