package playback

import (
	"context"
	"fmt"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
)

// Capability is the kind of audio output a host supports.
type Capability int

const (
	// Unavailable means audio cannot be played on this host.
	Unavailable Capability = iota
	// ElementBacked plays through an in-process audio device.
	ElementBacked
	// SubprocessBacked plays by running an external player command.
	SubprocessBacked
)

// String returns the capability name.
func (c Capability) String() string {
	switch c {
	case ElementBacked:
		return "element"
	case SubprocessBacked:
		return "subprocess"
	default:
		return "unavailable"
	}
}

// Sink plays one prepared audio buffer. A sink is used by a single session
// and closed when the session finishes.
type Sink interface {
	// Capability reports which output variant the sink implements.
	Capability() Capability

	// Formats lists the containers Play accepts.
	Formats() []audio.ContainerFormat

	// Play blocks until the buffer has been played or ctx is cancelled.
	Play(ctx context.Context, buf audio.Buffer) error

	// Pause suspends output. Resume continues it.
	Pause() error
	Resume() error

	// Close releases the sink's resources.
	Close() error
}

// Probe selects and opens the sink for a session.
type Probe func(ctx context.Context) (Sink, error)

// SinkConfig configures the system probe.
type SinkConfig struct {
	// PlayerCommand overrides player discovery, e.g. "mpv --no-video".
	// The audio file path is appended as the last argument.
	PlayerCommand string

	// PreferDevice selects the in-process device over a player command
	// when both are available.
	PreferDevice bool

	// TempDir holds the files handed to player commands. Default: os.TempDir().
	TempDir string
}

// DetectCapability reports the capability the system probe would select.
func DetectCapability(cfg SinkConfig) Capability {
	_, playerErr := resolvePlayer(cfg.PlayerCommand)
	switch {
	case cfg.PreferDevice && deviceAvailable:
		return ElementBacked
	case playerErr == nil:
		return SubprocessBacked
	case deviceAvailable:
		return ElementBacked
	default:
		return Unavailable
	}
}

// SystemProbe returns a probe that opens the best sink for this host.
func SystemProbe(cfg SinkConfig) Probe {
	return func(_ context.Context) (Sink, error) {
		switch c := DetectCapability(cfg); c {
		case ElementBacked:
			return newDeviceSink()
		case SubprocessBacked:
			return newSubprocessSink(cfg)
		default:
			return nil, ErrNoSink
		}
	}
}

// StaticProbe returns a probe that always opens sinks from newSink.
func StaticProbe(newSink func() Sink) Probe {
	return func(context.Context) (Sink, error) {
		s := newSink()
		if s == nil || s.Capability() == Unavailable {
			return nil, fmt.Errorf("%w: sink reports no capability", ErrNoSink)
		}
		return s, nil
	}
}

func canPlay(s Sink, f audio.ContainerFormat) bool {
	for _, supported := range s.Formats() {
		if supported == f {
			return true
		}
	}
	return false
}
