package sdk

import (
	"github.com/willwade/tts-wrapper-go/runtime/audio"
	"github.com/willwade/tts-wrapper-go/runtime/media"
	"github.com/willwade/tts-wrapper-go/runtime/playback"
	"github.com/willwade/tts-wrapper-go/runtime/tts"
)

// speakSettings is the per-call state built from SpeakOptions.
type speakSettings struct {
	playback.SpeakOptions
	formatSet bool
}

// SpeakOption configures a single Speak or synthesis call.
type SpeakOption func(*speakSettings)

// WithVoice selects a provider voice.
func WithVoice(voice string) SpeakOption {
	return func(s *speakSettings) { s.Synthesis.Voice = voice }
}

// WithLanguage sets the language code, e.g. "en-GB".
func WithLanguage(lang string) SpeakOption {
	return func(s *speakSettings) { s.Synthesis.Language = lang }
}

// WithRate sets the provider speech rate multiplier.
func WithRate(rate float64) SpeakOption {
	return func(s *speakSettings) { s.Synthesis.Rate = rate }
}

// WithSynthesisConfig replaces the whole synthesizer configuration.
func WithSynthesisConfig(cfg tts.SynthesisConfig) SpeakOption {
	return func(s *speakSettings) { s.Synthesis = cfg }
}

// WithFormat requests the delivered container. audio.FormatUnknown keeps
// the provider's native one.
func WithFormat(f audio.ContainerFormat) SpeakOption {
	return func(s *speakSettings) {
		s.Format = f
		s.formatSet = true
	}
}

// WithConversion tunes conversion (sample rate, bit rate, quality).
func WithConversion(opts media.Options) SpeakOption {
	return func(s *speakSettings) { s.Conversion = opts }
}

// WithWordsPerMinute overrides the estimation rate for this call.
func WithWordsPerMinute(wpm float64) SpeakOption {
	return func(s *speakSettings) { s.WordsPerMinute = wpm }
}

func (c *Client) speakOptions(opts []SpeakOption) speakSettings {
	s := speakSettings{
		SpeakOptions: playback.SpeakOptions{
			Synthesis: tts.DefaultSynthesisConfig(),
			Format:    audio.ParseFormat(c.cfg.Playback.Format),
		},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
