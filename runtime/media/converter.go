package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/willwade/tts-wrapper-go/runtime/audio"
	"github.com/willwade/tts-wrapper-go/runtime/logger"
)

const (
	instrumentationName = "github.com/willwade/tts-wrapper-go/runtime/media"

	strategyIdentity = "identity"
	strategyCache    = "cache"
)

// Options tune a conversion. Zero values leave the choice to the strategy.
type Options struct {
	SampleRate int // Hz
	BitRate    int // kbps, lossy targets only
	Quality    int // codec quality scale, used when BitRate is zero
}

// ConversionRequest asks for Source to be converted to TargetFormat.
// A zero SourceFormat is sniffed from the bytes.
type ConversionRequest struct {
	Source       []byte
	SourceFormat audio.ContainerFormat
	TargetFormat audio.ContainerFormat
	Options      Options
}

// ConversionResult is owned by the caller.
type ConversionResult struct {
	Data         []byte
	Format       audio.ContainerFormat
	MIMEType     string
	Strategy     string
	WasConverted bool
}

// Buffer wraps the result as an audio.Buffer.
func (r *ConversionResult) Buffer() audio.Buffer {
	return audio.WrapBuffer(r.Data, r.Format)
}

// Strategy is one way of converting between two containers.
type Strategy interface {
	Name() string
	Convert(ctx context.Context, src audio.Buffer, target audio.ContainerFormat, opts Options) ([]byte, error)
}

// Attempt describes one strategy execution, reported to observers.
type Attempt struct {
	Strategy string
	From     audio.ContainerFormat
	To       audio.ContainerFormat
	Duration time.Duration
	Err      error
}

// Observer is notified after every strategy attempt.
type Observer func(Attempt)

// ConverterConfig configures the converter and its ffmpeg strategy.
type ConverterConfig struct {
	// FFmpegPath is the encoder binary. Default: "ffmpeg" (uses PATH).
	FFmpegPath string

	// FFmpegTimeout bounds a single ffmpeg run. Default: 5 minutes.
	FFmpegTimeout time.Duration

	// TempDir holds temporary input/output files. Default: os.TempDir().
	TempDir string

	// MaxConcurrent bounds simultaneous ffmpeg processes. Default: NumCPU.
	MaxConcurrent int64

	// DefaultBitRate is used for lossy targets when a request has none (kbps).
	DefaultBitRate int

	// DisableInProcess skips the in-process MP3 encoder and decoder.
	DisableInProcess bool
}

// DefaultConverterConfig returns sensible defaults for conversion.
func DefaultConverterConfig() ConverterConfig {
	return ConverterConfig{
		FFmpegPath:     DefaultFFmpegPath,
		FFmpegTimeout:  DefaultFFmpegTimeout * time.Second,
		MaxConcurrent:  int64(runtime.NumCPU()),
		DefaultBitRate: DefaultBitRateKbps,
	}
}

// Converter decides and executes a conversion path for each request.
// It is safe for concurrent use.
type Converter struct {
	config    ConverterConfig
	encoder   Strategy
	decoder   Strategy
	tool      Strategy
	cache     Cache
	observers []Observer
	tracer    trace.Tracer
	group     singleflight.Group
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithCache stores converted results in cache.
func WithCache(cache Cache) ConverterOption {
	return func(c *Converter) { c.cache = cache }
}

// WithObserver registers an observer for strategy attempts.
func WithObserver(o Observer) ConverterOption {
	return func(c *Converter) { c.observers = append(c.observers, o) }
}

// WithTracer sets the tracer used for conversion spans.
func WithTracer(t trace.Tracer) ConverterOption {
	return func(c *Converter) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMP3Encoder replaces the frame encoder used by the in-process MP3 strategy.
func WithMP3Encoder(factory FrameEncoderFactory) ConverterOption {
	return func(c *Converter) { c.encoder = newInProcessMP3Strategy(factory) }
}

// WithToolStrategy replaces the external-tool strategy.
func WithToolStrategy(s Strategy) ConverterOption {
	return func(c *Converter) { c.tool = s }
}

// NewConverter creates a converter with the given config.
func NewConverter(config ConverterConfig, opts ...ConverterOption) *Converter {
	if config.FFmpegPath == "" {
		config.FFmpegPath = DefaultFFmpegPath
	}
	if config.FFmpegTimeout <= 0 {
		config.FFmpegTimeout = DefaultFFmpegTimeout * time.Second
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = int64(runtime.NumCPU())
	}
	if config.DefaultBitRate <= 0 {
		config.DefaultBitRate = DefaultBitRateKbps
	}

	c := &Converter{
		config:  config,
		encoder: newInProcessMP3Strategy(newShineEncoder),
		decoder: mp3DecodeStrategy{},
		tool:    newFFmpegStrategy(config),
		tracer:  otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Strategies returns the ordered strategy chain for a format pair.
func (c *Converter) Strategies(from, to audio.ContainerFormat) []Strategy {
	var chain []Strategy
	if !c.config.DisableInProcess {
		switch {
		case from == audio.FormatWAV && to == audio.FormatMP3:
			chain = append(chain, c.encoder)
		case from == audio.FormatMP3 && to == audio.FormatWAV:
			chain = append(chain, c.decoder)
		}
	}
	return append(chain, c.tool)
}

// Convert converts req.Source to req.TargetFormat.
//
// Identical formats return the source unchanged. Otherwise the strategies
// for the pair are tried in order and the first success wins. Source bytes
// are never returned labelled as another format: when every strategy fails
// the error carries each attempt.
func (c *Converter) Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error) {
	if len(req.Source) == 0 {
		return nil, ErrEmptyAudio
	}
	from := req.SourceFormat
	if from == audio.FormatUnknown {
		from = audio.Detect(req.Source)
	}
	to := req.TargetFormat

	if from == to {
		return &ConversionResult{
			Data:     req.Source,
			Format:   to,
			MIMEType: to.MIMEType(),
			Strategy: strategyIdentity,
		}, nil
	}
	if to == audio.FormatUnknown {
		return nil, fmt.Errorf("media: target format required (source is %s)", from)
	}

	ctx, span := c.tracer.Start(ctx, "media.Convert", trace.WithAttributes(
		attribute.String("media.from", from.String()),
		attribute.String("media.to", to.String()),
		attribute.Int("media.source_bytes", len(req.Source)),
	))
	defer span.End()

	key := cacheKey(req.Source, to, req.Options)
	if data, ok := c.cacheGet(ctx, key); ok {
		span.SetAttributes(attribute.String("media.strategy", strategyCache))
		return newResult(data, to, strategyCache), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.runChain(ctx, audio.WrapBuffer(req.Source, from), to, req.Options)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Callers sharing a flight each get their own copy.
	res := v.(*ConversionResult)
	span.SetAttributes(attribute.String("media.strategy", res.Strategy))
	c.cacheSet(ctx, key, res.Data)
	return newResult(bytes.Clone(res.Data), res.Format, res.Strategy), nil
}

func (c *Converter) runChain(ctx context.Context, src audio.Buffer, to audio.ContainerFormat, opts Options) (*ConversionResult, error) {
	chain := c.Strategies(src.Format(), to)
	attempts := make([]error, 0, len(chain))

	for _, s := range chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := c.attempt(ctx, s, src, to, opts)
		if err == nil {
			return newResult(data, to, s.Name()), nil
		}
		attempts = append(attempts, err)
	}

	if len(attempts) == 1 {
		return nil, attempts[0]
	}
	return nil, &ConversionError{
		Kind:     AllPathsExhausted,
		From:     src.Format(),
		To:       to,
		Attempts: attempts,
	}
}

func (c *Converter) attempt(ctx context.Context, s Strategy, src audio.Buffer, to audio.ContainerFormat, opts Options) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "media.strategy", trace.WithAttributes(
		attribute.String("media.strategy", s.Name()),
	))
	defer span.End()

	start := time.Now()
	data, err := s.Convert(ctx, src, to, opts)
	if err == nil && len(data) == 0 {
		err = newConversionError(EmptyOutput, s.Name(), nil)
	}
	if err != nil {
		var ce *ConversionError
		if !errors.As(err, &ce) {
			err = newConversionError(EncoderFailed, s.Name(), err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	elapsed := time.Since(start)

	logger.Conversion(ctx, s.Name(), src.Format().String(), to.String(), elapsed, err)
	for _, o := range c.observers {
		o(Attempt{Strategy: s.Name(), From: src.Format(), To: to, Duration: elapsed, Err: err})
	}

	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Converter) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.WarnContext(ctx, "conversion cache read failed", "error", err)
		return nil, false
	}
	return data, ok && len(data) > 0
}

func (c *Converter) cacheSet(ctx context.Context, key string, data []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, data); err != nil {
		logger.WarnContext(ctx, "conversion cache write failed", "error", err)
	}
}

func newResult(data []byte, format audio.ContainerFormat, strategy string) *ConversionResult {
	return &ConversionResult{
		Data:         data,
		Format:       format,
		MIMEType:     format.MIMEType(),
		Strategy:     strategy,
		WasConverted: true,
	}
}

// cacheKey identifies a conversion by source content, target and options.
func cacheKey(source []byte, to audio.ContainerFormat, opts Options) string {
	sum := sha256.Sum256(source)
	return fmt.Sprintf("%s:%s:sr%d:br%d:q%d", hex.EncodeToString(sum[:]), to, opts.SampleRate, opts.BitRate, opts.Quality)
}
