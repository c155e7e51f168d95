package playback

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
	"github.com/willwade/tts-wrapper-go/runtime/logger"
)

var allFormats = []audio.ContainerFormat{audio.FormatWAV, audio.FormatMP3, audio.FormatOGG, audio.FormatFLAC}

// player is a command line audio player and the containers it accepts.
type player struct {
	args    []string
	formats []audio.ContainerFormat
}

// knownPlayers are tried in order when no player command is configured.
var knownPlayers = []player{
	{args: []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"}, formats: allFormats},
	{args: []string{"afplay"}, formats: []audio.ContainerFormat{audio.FormatWAV, audio.FormatMP3, audio.FormatFLAC}},
	{args: []string{"paplay"}, formats: []audio.ContainerFormat{audio.FormatWAV, audio.FormatOGG, audio.FormatFLAC}},
	{args: []string{"aplay", "-q"}, formats: []audio.ContainerFormat{audio.FormatWAV}},
	{args: []string{"mpg123", "-q"}, formats: []audio.ContainerFormat{audio.FormatMP3}},
}

// resolvePlayer parses command, or finds the first known player on PATH.
// A configured command is assumed to accept every container.
func resolvePlayer(command string) (player, error) {
	if command != "" {
		args, err := shellwords.NewParser().Parse(command)
		if err != nil {
			return player{}, fmt.Errorf("parse player command: %w", err)
		}
		if len(args) == 0 {
			return player{}, errors.New("player command empty")
		}
		path, err := exec.LookPath(args[0])
		if err != nil {
			return player{}, fmt.Errorf("player command %q: %w", args[0], err)
		}
		args[0] = path
		return player{args: args, formats: allFormats}, nil
	}

	for _, p := range knownPlayers {
		path, err := exec.LookPath(p.args[0])
		if err != nil {
			continue
		}
		args := append([]string{path}, p.args[1:]...)
		return player{args: args, formats: p.formats}, nil
	}
	return player{}, ErrNoSink
}

// subprocessSink plays a temp file with an external player. Pause and
// resume suspend and continue the player process where the OS allows it.
type subprocessSink struct {
	player  player
	tempDir string

	mu   sync.Mutex
	proc *os.Process
	// paused is set by a Pause that arrives before the player has started.
	paused bool
}

func newSubprocessSink(cfg SinkConfig) (Sink, error) {
	p, err := resolvePlayer(cfg.PlayerCommand)
	if err != nil {
		return nil, err
	}
	dir := cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	return &subprocessSink{player: p, tempDir: dir}, nil
}

func (s *subprocessSink) Capability() Capability { return SubprocessBacked }

func (s *subprocessSink) Formats() []audio.ContainerFormat { return s.player.formats }

func (s *subprocessSink) Play(ctx context.Context, buf audio.Buffer) error {
	path := filepath.Join(s.tempDir, "tts-play-"+uuid.NewString()+"."+buf.Format().String())
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Failed to remove temp file", "path", path, "error", err)
		}
	}()

	args := append(append([]string(nil), s.player.args[1:]...), path)
	//nolint:gosec // G204: player command is operator configuration or a known binary
	cmd := exec.CommandContext(ctx, s.player.args[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}

	s.mu.Lock()
	s.proc = cmd.Process
	if s.paused {
		if err := suspendProcess(s.proc); err != nil {
			logger.Warn("Failed to apply pending pause", "error", err)
		}
	}
	s.mu.Unlock()

	err := cmd.Wait()

	s.mu.Lock()
	s.proc = nil
	s.paused = false
	s.mu.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("player %s: %w", filepath.Base(s.player.args[0]), err)
	}
	return nil
}

// Pause suspends the player. Before the player starts it is recorded and
// applied as soon as the process exists.
func (s *subprocessSink) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		if !canSuspend {
			return ErrPauseUnsupported
		}
		s.paused = true
		return nil
	}
	if err := suspendProcess(s.proc); err != nil {
		return err
	}
	s.paused = true
	return nil
}

func (s *subprocessSink) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		s.paused = false
		return nil
	}
	if err := resumeProcess(s.proc); err != nil {
		return err
	}
	s.paused = false
	return nil
}

func (s *subprocessSink) Close() error { return nil }
