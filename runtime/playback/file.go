package playback

import (
	"context"
	"fmt"
	"os"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
	"github.com/willwade/tts-wrapper-go/runtime/media"
)

const outputFilePermissions = 0o644

// SynthToFile synthesizes text into path. The container is opts.Format, or
// the one implied by the file extension, or the provider's native one.
func (e *Engine) SynthToFile(ctx context.Context, text, path string, opts SpeakOptions) (*SynthesisResult, error) {
	if opts.Format == audio.FormatUnknown {
		opts.Format = media.FormatFromPath(path)
	}
	res, err := e.SynthToBytes(ctx, text, opts)
	if err != nil {
		return nil, err
	}
	//nolint:gosec // G306: audio output is meant to be readable by other tools
	if err := os.WriteFile(path, res.Audio.Bytes(), outputFilePermissions); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return res, nil
}
