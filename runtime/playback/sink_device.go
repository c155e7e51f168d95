//go:build portaudio

package playback

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
)

const (
	deviceAvailable = true

	// deviceFramesPerBuffer is about 20ms of audio at 48kHz.
	deviceFramesPerBuffer = 1024
)

// deviceSink plays decoded PCM on the default output device.
type deviceSink struct {
	mu   sync.Mutex
	gate chan struct{} // non-nil while paused
}

func newDeviceSink() (Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &deviceSink{}, nil
}

func (s *deviceSink) Capability() Capability { return ElementBacked }

func (s *deviceSink) Formats() []audio.ContainerFormat {
	return []audio.ContainerFormat{audio.FormatWAV, audio.FormatMP3}
}

func (s *deviceSink) Play(ctx context.Context, buf audio.Buffer) error {
	pcm, err := audio.Decode(buf)
	if err != nil {
		return err
	}

	out := make([]int16, deviceFramesPerBuffer*pcm.Channels)
	stream, err := portaudio.OpenDefaultStream(0, pcm.Channels, float64(pcm.SampleRate), deviceFramesPerBuffer, out)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop() //nolint:errcheck // best effort on the way out

	for off := 0; off < len(pcm.Samples); off += len(out) {
		if err := s.waitWhilePaused(ctx); err != nil {
			return err
		}
		n := copy(out, pcm.Samples[off:])
		clear(out[n:])
		if err := stream.Write(); err != nil {
			return fmt.Errorf("failed to write output stream: %w", err)
		}
	}
	return nil
}

func (s *deviceSink) waitWhilePaused(ctx context.Context) error {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate == nil {
		return ctx.Err()
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *deviceSink) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate == nil {
		s.gate = make(chan struct{})
	}
	return nil
}

func (s *deviceSink) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
	return nil
}

func (s *deviceSink) Close() error {
	return portaudio.Terminate()
}
