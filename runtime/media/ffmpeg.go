package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
	"github.com/willwade/tts-wrapper-go/runtime/logger"
)

const (
	strategyFFmpeg = "ffmpeg"

	// maxStderrBytes limits how much tool output is kept in an error.
	maxStderrBytes = 2048
)

// ffmpegStrategy runs an external encoder binary through temp files.
type ffmpegStrategy struct {
	path           string
	timeout        time.Duration
	tempDir        string
	defaultBitRate int
	sem            *semaphore.Weighted
}

func newFFmpegStrategy(config ConverterConfig) *ffmpegStrategy {
	return &ffmpegStrategy{
		path:           config.FFmpegPath,
		timeout:        config.FFmpegTimeout,
		tempDir:        config.TempDir,
		defaultBitRate: config.DefaultBitRate,
		sem:            semaphore.NewWeighted(config.MaxConcurrent),
	}
}

func (s *ffmpegStrategy) Name() string { return strategyFFmpeg }

func (s *ffmpegStrategy) Convert(
	ctx context.Context, src audio.Buffer, target audio.ContainerFormat, opts Options,
) ([]byte, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	dir := s.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	id := uuid.NewString()
	inputPath := filepath.Join(dir, "tts-in-"+id+"."+extension(src.Format()))
	outputPath := filepath.Join(dir, "tts-out-"+id+"."+extension(target))
	defer removeTemp(inputPath)
	defer removeTemp(outputPath)

	if err := os.WriteFile(inputPath, src.Bytes(), DefaultTempFilePermissions); err != nil {
		return nil, fmt.Errorf("failed to write input file: %w", err)
	}

	if err := s.run(ctx, s.buildArgs(inputPath, outputPath, target, opts)); err != nil {
		return nil, err
	}

	//nolint:gosec // G304: outputPath is built from the temp directory and a uuid
	output, err := os.ReadFile(outputPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}
	if len(output) == 0 {
		return nil, newConversionError(EmptyOutput, strategyFFmpeg, nil)
	}
	return output, nil
}

// buildArgs constructs: -i <in> -y [-codec:a <codec> -b:a <N>k] [-ar <rate>] <out>
func (s *ffmpegStrategy) buildArgs(inputPath, outputPath string, target audio.ContainerFormat, opts Options) []string {
	args := []string{"-i", inputPath, "-y"}

	if codec, lossy := ffmpegCodec(target); codec != "" {
		args = append(args, "-codec:a", codec)
		if lossy {
			bitRate := opts.BitRate
			if bitRate <= 0 {
				bitRate = s.defaultBitRate
			}
			args = append(args, "-b:a", strconv.Itoa(bitRate)+"k")
		}
	}
	if opts.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(opts.SampleRate))
	}

	return append(args, outputPath)
}

func (s *ffmpegStrategy) run(ctx context.Context, args []string) error {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	//nolint:gosec // G204: the binary path is operator configuration
	cmd := exec.CommandContext(runCtx, s.path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Running ffmpeg", "path", s.path, "args", args)

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var execErr *exec.Error
	switch {
	case errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist):
		return newConversionError(ToolNotFound, strategyFFmpeg, fmt.Errorf("%w: %s", ErrFFmpegNotFound, s.path))
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		return newConversionError(ToolTimeout, strategyFFmpeg, ErrFFmpegTimeout)
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return newConversionError(ToolExitedNonZero, strategyFFmpeg,
			fmt.Errorf("%w, stderr: %s", err, truncate(stderr.String(), maxStderrBytes)))
	}
}

// CheckFFmpegAvailable checks if ffmpeg is available at ffmpegPath (or in PATH).
func CheckFFmpegAvailable(ffmpegPath string) error {
	if ffmpegPath == "" {
		ffmpegPath = DefaultFFmpegPath
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultFFmpegCheckTimeout*time.Second)
	defer cancel()

	//nolint:gosec // G204: the binary path is operator configuration
	cmd := exec.CommandContext(ctx, ffmpegPath, "-version")
	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
			return ErrFFmpegNotFound
		}
		return fmt.Errorf("ffmpeg check failed: %w", err)
	}
	return nil
}

func extension(f audio.ContainerFormat) string {
	if f == audio.FormatUnknown {
		return "bin"
	}
	return f.String()
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to remove temp file", "path", path, "error", err)
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
