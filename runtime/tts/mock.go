package tts

import (
	"context"
	"strings"
	"sync"

	"github.com/willwade/tts-wrapper-go/runtime/timing"
)

const defaultMockChunkSize = 4096

// MockSynthesizer is a scripted synthesizer for tests and demos.
// It returns the same audio for every call and records the calls it received.
type MockSynthesizer struct {
	name string

	mu           sync.Mutex
	audio        []byte
	err          error
	timepoints   []timing.Timepoint
	boundaries   []timing.Boundary
	boundaryUnit timing.Unit
	chunkSize    int
	calls        []string
}

// NewMockSynthesizer creates a synthesizer that always returns audio.
func NewMockSynthesizer(name string, audio []byte) *MockSynthesizer {
	return &MockSynthesizer{name: name, audio: audio, chunkSize: defaultMockChunkSize}
}

// WithError makes every call fail with err.
func (m *MockSynthesizer) WithError(err error) *MockSynthesizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithTimepoints makes the synthesizer report SSML mark timepoints.
func (m *MockSynthesizer) WithTimepoints(tps []timing.Timepoint) *MockSynthesizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timepoints = tps
	return m
}

// WithWordBoundaries makes streamed calls report word boundaries in unit u.
func (m *MockSynthesizer) WithWordBoundaries(b []timing.Boundary, u timing.Unit) *MockSynthesizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boundaries = b
	m.boundaryUnit = u
	return m
}

// WithChunkSize sets the streamed chunk size.
func (m *MockSynthesizer) WithChunkSize(n int) *MockSynthesizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > 0 {
		m.chunkSize = n
	}
	return m
}

// Name returns the provider identifier.
func (m *MockSynthesizer) Name() string { return m.name }

// Calls returns the texts synthesized so far.
func (m *MockSynthesizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// SynthToBytes returns the scripted audio.
func (m *MockSynthesizer) SynthToBytes(ctx context.Context, text string, _ SynthesisConfig) ([]byte, error) {
	return m.synth(ctx, text, OpSynthesize)
}

func (m *MockSynthesizer) synth(ctx context.Context, text, op string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.err != nil {
		return nil, NewSynthesisError(m.name, op, m.err)
	}
	return append([]byte(nil), m.audio...), nil
}

// Timepoints returns the scripted SSML mark timepoints.
func (m *MockSynthesizer) Timepoints() []timing.Timepoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timepoints
}

// SynthToBytestream streams the scripted audio in fixed-size chunks.
func (m *MockSynthesizer) SynthToBytestream(ctx context.Context, text string, _ SynthesisConfig) (*ByteStream, error) {
	data, err := m.synth(ctx, text, OpStream)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	size := m.chunkSize
	boundaries := m.boundaries
	unit := m.boundaryUnit
	m.mu.Unlock()

	chunks := make(chan AudioChunk)
	go func() {
		defer close(chunks)
		index := 0
		for start := 0; start < len(data); start += size {
			end := min(start+size, len(data))
			select {
			case chunks <- AudioChunk{Data: data[start:end], Index: index, Final: end == len(data)}:
			case <-ctx.Done():
				return
			}
			index++
		}
	}()

	return &ByteStream{
		Chunks:         chunks,
		WordBoundaries: func() []timing.Boundary { return boundaries },
		BoundaryUnit:   unit,
	}, nil
}
