package sdk

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/willwade/tts-wrapper-go/pkg/config"
	pkgerrors "github.com/willwade/tts-wrapper-go/pkg/errors"
	"github.com/willwade/tts-wrapper-go/runtime/audio"
	"github.com/willwade/tts-wrapper-go/runtime/events"
	"github.com/willwade/tts-wrapper-go/runtime/logger"
	"github.com/willwade/tts-wrapper-go/runtime/media"
	metricsprom "github.com/willwade/tts-wrapper-go/runtime/metrics/prometheus"
	"github.com/willwade/tts-wrapper-go/runtime/playback"
	"github.com/willwade/tts-wrapper-go/runtime/telemetry"
	"github.com/willwade/tts-wrapper-go/runtime/tts"
	"github.com/willwade/tts-wrapper-go/runtime/version"
)

const component = "sdk"

// Client is a configured synthesizer, converter and playback engine.
// It is safe for concurrent use; one utterance plays at a time.
type Client struct {
	cfg       *config.Config
	engine    *playback.Engine
	converter *media.Converter
	spans     *telemetry.OTelEventListener

	ownedTP    *sdktrace.TracerProvider
	ownedRedis *redis.Client

	stopMetrics context.CancelFunc
	metricsDone chan error

	mu     sync.Mutex
	closed bool
}

// Open loads the configuration file at configPath and creates a client for synth.
// Options given here are applied after the file.
func Open(configPath string, synth tts.Synthesizer, opts ...Option) (*Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, pkgerrors.New(component, "Open", err)
	}
	return New(synth, append([]Option{WithConfig(cfg)}, opts...)...)
}

// New creates a client for synth. Without WithConfig the defaults are used
// with environment overrides applied.
func New(synth tts.Synthesizer, opts ...Option) (*Client, error) {
	if synth == nil {
		return nil, ErrNoSynthesizer
	}

	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, pkgerrors.New(component, "New", err)
		}
	}
	if o.cfg == nil {
		cfg := config.DefaultConfig()
		if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
			return nil, pkgerrors.New(component, "New", err)
		}
		o.cfg = cfg
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, pkgerrors.New(component, "New", err)
	}

	c := &Client{cfg: o.cfg}
	if err := c.init(synth, o); err != nil {
		_ = c.release()
		return nil, pkgerrors.New(component, "New", err)
	}

	attrs := append(version.GetBuildInfo(),
		"provider", synth.Name(),
		"cache", c.cacheBackend(o),
		"metrics", o.cfg.Metrics.Enabled,
		"telemetry", c.ownedTP != nil || o.tracerProvider != nil,
	)
	logger.Info("TTS client ready", attrs...)
	return c, nil
}

func (c *Client) init(synth tts.Synthesizer, o *options) error {
	cfg := o.cfg
	if err := logger.Configure(loggerSpec(cfg.Logging)); err != nil {
		return err
	}

	tracer, err := c.initTracer(o)
	if err != nil {
		return err
	}

	cache, err := c.initCache(o)
	if err != nil {
		return err
	}

	convOpts := []media.ConverterOption{
		media.WithTracer(tracer),
		media.WithObserver(metricsprom.ConversionObserver()),
	}
	if cache != nil {
		convOpts = append(convOpts, media.WithCache(cache))
	}
	convOpts = append(convOpts, o.converterOpts...)
	c.converter = media.NewConverter(converterConfig(cfg.Conversion), convOpts...)

	probe := o.probe
	if probe == nil {
		probe = playback.SystemProbe(playback.SinkConfig{
			PlayerCommand: cfg.Playback.PlayerCommand,
			PreferDevice:  cfg.Playback.PreferDevice,
			TempDir:       cfg.Playback.TempDir,
		})
	}

	sessions := metricsprom.NewMetricsListener()
	c.spans = telemetry.NewOTelEventListener(tracer)
	c.engine = playback.NewEngine(synth,
		playback.WithConverter(c.converter),
		playback.WithProbe(probe),
		playback.WithTracer(tracer),
		playback.WithWordsPerMinute(float64(cfg.Playback.WordsPerMinute)),
		playback.WithSynthesisObserver(metricsprom.SynthesisObserver()),
		playback.WithStopObserver(sessions.StopObserver()),
		playback.WithStopObserver(c.spans.StopSession),
	)
	c.engine.OnAll(sessions.Listener())
	c.engine.OnAll(c.spans.Listener())

	if cfg.Metrics.Enabled {
		c.startMetrics(cfg.Metrics.Addr)
	}
	return nil
}

func (c *Client) initTracer(o *options) (trace.Tracer, error) {
	if o.tracerProvider != nil {
		return telemetry.Tracer(o.tracerProvider), nil
	}
	tcfg := c.cfg.Telemetry
	if !tcfg.Enabled {
		return telemetry.Tracer(nil), nil
	}
	tp, err := telemetry.NewTracerProvider(context.Background(), tcfg.Endpoint, tcfg.ServiceName)
	if err != nil {
		return nil, err
	}
	c.ownedTP = tp
	telemetry.SetupPropagation()
	return telemetry.Tracer(tp), nil
}

func (c *Client) initCache(o *options) (media.Cache, error) {
	if o.noCache {
		return nil, nil
	}
	if o.cache != nil {
		return o.cache, nil
	}

	ccfg := c.cfg.Cache
	switch ccfg.Backend {
	case config.CacheBackendMemory:
		return media.NewMemoryCache(ccfg.Size)
	case config.CacheBackendRedis:
		client := o.redisClient
		if client == nil {
			client = redis.NewClient(&redis.Options{
				Addr:     ccfg.Redis.Addr,
				Password: ccfg.Redis.Password,
				DB:       ccfg.Redis.DB,
			})
			c.ownedRedis = client
		}
		return media.NewRedisCache(client,
			media.WithCacheTTL(ccfg.TTL),
			media.WithCachePrefix(ccfg.Redis.Prefix),
		), nil
	default:
		return nil, nil
	}
}

func (c *Client) cacheBackend(o *options) string {
	switch {
	case o.noCache:
		return config.CacheBackendNone
	case o.cache != nil:
		return "custom"
	default:
		return c.cfg.Cache.Backend
	}
}

func (c *Client) startMetrics(addr string) {
	exporter := metricsprom.NewExporter(addr)
	ctx, cancel := context.WithCancel(context.Background())
	c.stopMetrics = cancel
	c.metricsDone = make(chan error, 1)
	go func() {
		err := exporter.Run(ctx)
		if err != nil {
			logger.Error("Metrics exporter stopped", "addr", addr, "error", err)
		}
		c.metricsDone <- err
	}()
	logger.Info("Serving metrics", "addr", addr)
}

func converterConfig(cc config.ConversionConfig) media.ConverterConfig {
	mc := media.DefaultConverterConfig()
	if cc.FFmpegPath != "" {
		mc.FFmpegPath = cc.FFmpegPath
	}
	if cc.Timeout > 0 {
		mc.FFmpegTimeout = cc.Timeout
	}
	mc.TempDir = cc.TempDir
	if cc.MaxConcurrent > 0 {
		mc.MaxConcurrent = int64(cc.MaxConcurrent)
	}
	if cc.DefaultBitRate > 0 {
		mc.DefaultBitRate = cc.DefaultBitRate
	}
	mc.DisableInProcess = cc.DisableInProcess
	return mc
}

func loggerSpec(lc config.LoggingConfig) *logger.LoggingConfigSpec {
	spec := &logger.LoggingConfigSpec{
		DefaultLevel: lc.DefaultLevel,
		Format:       lc.Format,
		CommonFields: lc.CommonFields,
	}
	for _, m := range lc.Modules {
		spec.Modules = append(spec.Modules, logger.ModuleLoggingSpec{Name: m.Name, Level: m.Level})
	}
	return spec
}

// Engine returns the underlying playback engine.
func (c *Client) Engine() *playback.Engine {
	return c.engine
}

// Converter returns the underlying format converter.
func (c *Client) Converter() *media.Converter {
	return c.converter
}

// Config returns the effective configuration.
func (c *Client) Config() *config.Config {
	return c.cfg
}

// On registers a listener for one event kind.
func (c *Client) On(kind events.Kind, listener events.Listener) events.Handle {
	return c.engine.On(kind, listener)
}

// OnAll registers a listener for every event kind.
func (c *Client) OnAll(listener events.Listener) events.Handle {
	return c.engine.OnAll(listener)
}

// Off removes a listener.
func (c *Client) Off(h events.Handle) bool {
	return c.engine.Off(h)
}

// Speak synthesizes and plays text, blocking until playback finishes, fails,
// or is stopped.
func (c *Client) Speak(ctx context.Context, text string, opts ...SpeakOption) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	return c.engine.Speak(ctx, text, c.speakOptions(opts).SpeakOptions)
}

// SpeakStreamed is Speak through the synthesizer's streaming interface.
func (c *Client) SpeakStreamed(ctx context.Context, text string, opts ...SpeakOption) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	return c.engine.SpeakStreamed(ctx, text, c.speakOptions(opts).SpeakOptions)
}

// SynthToBytes synthesizes text without playing it.
func (c *Client) SynthToBytes(ctx context.Context, text string, opts ...SpeakOption) (*playback.SynthesisResult, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.engine.SynthToBytes(ctx, text, c.speakOptions(opts).SpeakOptions)
}

// SynthToFile synthesizes text into path. The file extension selects the
// container unless WithFormat is given.
func (c *Client) SynthToFile(ctx context.Context, text, path string, opts ...SpeakOption) (*playback.SynthesisResult, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	s := c.speakOptions(opts)
	if !s.formatSet {
		s.Format = audio.FormatUnknown
	}
	return c.engine.SynthToFile(ctx, text, path, s.SpeakOptions)
}

// Pause pauses the current utterance.
func (c *Client) Pause() error { return c.engine.Pause() }

// Resume resumes a paused utterance.
func (c *Client) Resume() error { return c.engine.Resume() }

// Stop ends the current utterance without an end event.
func (c *Client) Stop() { c.engine.Stop() }

// Close stops playback and releases the metrics server, tracer provider and
// redis client the client created. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if err := c.release(); err != nil {
		return pkgerrors.New(component, "Close", err)
	}
	return nil
}

func (c *Client) release() error {
	var errs []error
	if c.engine != nil {
		c.engine.Stop()
	}
	if c.spans != nil {
		c.spans.Close()
	}
	if c.stopMetrics != nil {
		c.stopMetrics()
		if err := <-c.metricsDone; err != nil {
			errs = append(errs, err)
		}
	}
	if c.ownedTP != nil {
		if err := c.ownedTP.Shutdown(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	if c.ownedRedis != nil {
		if err := c.ownedRedis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Client) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}
