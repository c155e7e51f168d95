package playback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
)

// writePlayer writes an executable shell script standing in for an audio player.
func writePlayer(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script players require a unix shell")
	}
	path := filepath.Join(t.TempDir(), "fake-player")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)) //nolint:gosec // test executable
	return path
}

func wavBuffer() audio.Buffer {
	return audio.NewBuffer(audio.BuildWAV(make([]byte, 320), 16000, 1, audio.BitDepth16))
}

func TestResolvePlayer_Command(t *testing.T) {
	path := writePlayer(t, "exit 0")

	p, err := resolvePlayer(path + ` --volume 50 "--title=speech output"`)
	require.NoError(t, err)
	assert.Equal(t, []string{path, "--volume", "50", "--title=speech output"}, p.args)
	assert.Equal(t, allFormats, p.formats)

	_, err = resolvePlayer(`unterminated "quote`)
	assert.Error(t, err)

	_, err = resolvePlayer(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestDetectCapability(t *testing.T) {
	path := writePlayer(t, "exit 0")
	assert.Equal(t, SubprocessBacked, DetectCapability(SinkConfig{PlayerCommand: path}))

	if !deviceAvailable {
		assert.Equal(t, Unavailable, DetectCapability(SinkConfig{PlayerCommand: filepath.Join(t.TempDir(), "nope")}))
	}
}

func TestSystemProbe_Subprocess(t *testing.T) {
	probe := SystemProbe(SinkConfig{PlayerCommand: writePlayer(t, "exit 0")})

	sink, err := probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SubprocessBacked, sink.Capability())
	assert.NoError(t, sink.Close())
}

func TestStaticProbe(t *testing.T) {
	sink, err := StaticProbe(func() Sink { return newFakeSink(0) })(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ElementBacked, sink.Capability())

	_, err = StaticProbe(func() Sink { return nil })(context.Background())
	assert.ErrorIs(t, err, ErrNoSink)
}

func TestSubprocessSink_Play(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	tempDir := t.TempDir()
	player := writePlayer(t, `echo "$1" > '`+argsFile+`'
test -s "$1"`)

	sink, err := newSubprocessSink(SinkConfig{PlayerCommand: player, TempDir: tempDir})
	require.NoError(t, err)

	require.NoError(t, sink.Play(context.Background(), wavBuffer()))

	played, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(played), ".wav")

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "audio file must be removed after playback")
}

func TestSubprocessSink_PlayerFails(t *testing.T) {
	sink, err := newSubprocessSink(SinkConfig{PlayerCommand: writePlayer(t, "exit 2"), TempDir: t.TempDir()})
	require.NoError(t, err)

	assert.Error(t, sink.Play(context.Background(), wavBuffer()))
}

func TestSubprocessSink_PauseResumeCancel(t *testing.T) {
	sink, err := newSubprocessSink(SinkConfig{PlayerCommand: writePlayer(t, "exec sleep 5"), TempDir: t.TempDir()})
	require.NoError(t, err)
	sub := sink.(*subprocessSink)

	require.NoError(t, sink.Pause())
	require.NoError(t, sink.Resume(), "resume clears a pause recorded before play")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sink.Play(ctx, wavBuffer()) }()

	require.Eventually(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		return sub.proc != nil
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, sink.Pause())
	require.NoError(t, sink.Resume())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Play did not return after cancel")
	}
}

// processState returns the state letter from /proc/<pid>/stat.
func processState(t *testing.T, pid int) string {
	t.Helper()
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return ""
	}
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func TestSubprocessSink_PauseBeforeStartIsApplied(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("process state is read from /proc")
	}
	sink, err := newSubprocessSink(SinkConfig{PlayerCommand: writePlayer(t, "exec sleep 5"), TempDir: t.TempDir()})
	require.NoError(t, err)
	sub := sink.(*subprocessSink)

	require.NoError(t, sink.Pause())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sink.Play(ctx, wavBuffer()) }()

	var pid int
	require.Eventually(t, func() bool {
		sub.mu.Lock()
		defer sub.mu.Unlock()
		if sub.proc == nil {
			return false
		}
		pid = sub.proc.Pid
		return true
	}, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return processState(t, pid) == "T" }, 2*time.Second, 10*time.Millisecond,
		"player must start suspended")

	require.NoError(t, sink.Resume())
	assert.Eventually(t, func() bool { return processState(t, pid) != "T" }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Play did not return after cancel")
	}
}

func TestPlayClock(t *testing.T) {
	now := time.Unix(0, 0)
	c := newPlayClock(func() time.Time { return now })

	elapsed, paused := c.Elapsed()
	assert.Zero(t, elapsed)
	assert.False(t, paused)

	c.Start()
	now = now.Add(300 * time.Millisecond)
	c.Pause()
	now = now.Add(time.Second)

	elapsed, paused = c.Elapsed()
	assert.Equal(t, 300*time.Millisecond, elapsed)
	assert.True(t, paused)

	c.Resume()
	now = now.Add(100 * time.Millisecond)
	elapsed, paused = c.Elapsed()
	assert.Equal(t, 400*time.Millisecond, elapsed)
	assert.False(t, paused)
}

func TestStateAndCapabilityNames(t *testing.T) {
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.True(t, StateEnded.Terminal())
	assert.False(t, StatePaused.Terminal())
	assert.Equal(t, "subprocess", SubprocessBacked.String())
	assert.Equal(t, "unavailable", Unavailable.String())
}

func TestPlaybackError(t *testing.T) {
	err := &PlaybackError{Kind: SinkFailed, Cause: ErrPauseUnsupported}
	assert.ErrorIs(t, err, ErrSinkFailed)
	assert.NotErrorIs(t, err, ErrSynthesisFailed)
	assert.ErrorIs(t, err, ErrPauseUnsupported)
	assert.Equal(t, "playback: audio sink failed: sink does not support pause", err.Error())
}
