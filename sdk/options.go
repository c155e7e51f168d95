package sdk

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"

	"github.com/willwade/tts-wrapper-go/pkg/config"
	"github.com/willwade/tts-wrapper-go/runtime/media"
	"github.com/willwade/tts-wrapper-go/runtime/playback"
)

// options holds the settings applied by Option functions.
type options struct {
	cfg *config.Config

	probe          playback.Probe
	tracerProvider trace.TracerProvider
	redisClient    *redis.Client
	cache          media.Cache
	noCache        bool
	converterOpts  []media.ConverterOption
}

// Option configures a Client.
type Option func(*options) error

// WithConfig uses cfg instead of the defaults. Open sets this from the file.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config must not be nil")
		}
		o.cfg = cfg
		return nil
	}
}

// WithProbe replaces system audio sink discovery.
//
//	client, _ := sdk.New(synth,
//	    sdk.WithProbe(playback.StaticProbe(func() playback.Sink { return mySink })),
//	)
func WithProbe(p playback.Probe) Option {
	return func(o *options) error {
		o.probe = p
		return nil
	}
}

// WithTracerProvider records spans with tp. The client does not shut it
// down; telemetry settings in the configuration are ignored.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) error {
		o.tracerProvider = tp
		return nil
	}
}

// WithRedisClient uses an existing client for the redis cache backend.
// The client is not closed by Client.Close.
func WithRedisClient(c *redis.Client) Option {
	return func(o *options) error {
		o.redisClient = c
		return nil
	}
}

// WithCache uses cache for conversion results regardless of the configured backend.
func WithCache(cache media.Cache) Option {
	return func(o *options) error {
		o.cache = cache
		return nil
	}
}

// WithoutCache disables conversion result caching.
func WithoutCache() Option {
	return func(o *options) error {
		o.noCache = true
		return nil
	}
}

// WithConverterOptions passes extra options to the converter, e.g. a
// custom MP3 encoder or tool strategy.
func WithConverterOptions(opts ...media.ConverterOption) Option {
	return func(o *options) error {
		o.converterOpts = append(o.converterOpts, opts...)
		return nil
	}
}
