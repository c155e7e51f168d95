// Package config loads the YAML configuration for the speech runtime.
//
// A configuration file is validated against an embedded JSON schema, merged
// over DefaultConfig, and finally adjusted by environment overrides:
//
//	TTS_FFMPEG_PATH       conversion.ffmpegPath
//	TTS_REDIS_ADDR        cache.redis.addr (and selects the redis backend)
//	TTS_WORDS_PER_MINUTE  playback.wordsPerMinute
//	LOG_LEVEL             logging.defaultLevel
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/willwade/tts-wrapper-go/pkg/errors"
)

// Environment variables that override file settings.
const (
	EnvFFmpegPath     = "TTS_FFMPEG_PATH"
	EnvRedisAddr      = "TTS_REDIS_ADDR"
	EnvWordsPerMinute = "TTS_WORDS_PER_MINUTE"
	EnvLogLevel       = "LOG_LEVEL"
)

// Cache backends.
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Defaults.
const (
	DefaultFFmpegPath     = "ffmpeg"
	DefaultFFmpegTimeout  = 300 * time.Second
	DefaultBitRate        = 128
	DefaultCacheSize      = 128
	DefaultCacheTTL       = time.Hour
	DefaultCachePrefix    = "ttswrapper:conv"
	DefaultWordsPerMinute = 150
	DefaultMetricsAddr    = ":9090"
)

// Config is the complete runtime configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Conversion ConversionConfig `yaml:"conversion"`
	Cache      CacheConfig      `yaml:"cache"`
	Playback   PlaybackConfig   `yaml:"playback"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// ConversionConfig configures the audio format converter.
type ConversionConfig struct {
	FFmpegPath       string        `yaml:"ffmpegPath"`
	Timeout          time.Duration `yaml:"timeout"`
	TempDir          string        `yaml:"tempDir"`
	MaxConcurrent    int           `yaml:"maxConcurrent"` // 0 means one per CPU
	DefaultBitRate   int           `yaml:"defaultBitRate"`
	DisableInProcess bool          `yaml:"disableInProcess"`
}

// CacheConfig configures the conversion result cache.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig locates the shared cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// PlaybackConfig configures the playback engine and its audio sink.
type PlaybackConfig struct {
	PlayerCommand  string `yaml:"playerCommand"`
	PreferDevice   bool   `yaml:"preferDevice"`
	TempDir        string `yaml:"tempDir"`
	WordsPerMinute int    `yaml:"wordsPerMinute"`
	// Format is the container requested from conversion before playback.
	// Empty keeps the provider's native format.
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus exporter.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"serviceName"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Logging: DefaultLoggingConfig(),
		Conversion: ConversionConfig{
			FFmpegPath:     DefaultFFmpegPath,
			Timeout:        DefaultFFmpegTimeout,
			DefaultBitRate: DefaultBitRate,
		},
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
			Size:    DefaultCacheSize,
			TTL:     DefaultCacheTTL,
			Redis:   RedisConfig{Prefix: DefaultCachePrefix},
		},
		Playback: PlaybackConfig{
			WordsPerMinute: DefaultWordsPerMinute,
		},
		Metrics: MetricsConfig{
			Addr: DefaultMetricsAddr,
		},
	}
}

// Load reads, validates and returns the configuration at path, with
// environment overrides applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-supplied path
	if err != nil {
		return nil, pkgerrors.New("config", "Load", err).WithDetails(map[string]any{"path": path})
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, pkgerrors.New("config", "Load", err).WithDetails(map[string]any{"path": path})
	}
	return cfg, nil
}

// Parse validates data against the schema and decodes it over DefaultConfig.
// Environment overrides are applied after decoding.
func Parse(data []byte) (*Config, error) {
	if err := ValidateYAML(data); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvFFmpegPath); ok && v != "" {
		c.Conversion.FFmpegPath = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Backend = CacheBackendRedis
	}
	if v, ok := lookup(EnvWordsPerMinute); ok && v != "" {
		wpm, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || wpm <= 0 {
			return &ValidationError{
				Field:   EnvWordsPerMinute,
				Message: "must be a positive integer",
				Value:   v,
			}
		}
		c.Playback.WordsPerMinute = wpm
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.DefaultLevel = strings.ToLower(strings.TrimSpace(v))
	}
	return nil
}

// Validate checks cross-field constraints the schema cannot express.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if c.Cache.Backend == CacheBackendRedis && c.Cache.Redis.Addr == "" {
		return &ValidationError{Field: "cache.redis.addr", Message: "required when cache.backend is redis"}
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return &ValidationError{Field: "metrics.addr", Message: "required when metrics are enabled"}
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return &ValidationError{Field: "telemetry.endpoint", Message: "required when telemetry is enabled"}
	}
	if c.Playback.WordsPerMinute < 0 {
		return &ValidationError{
			Field:   "playback.wordsPerMinute",
			Message: "must not be negative",
			Value:   strconv.Itoa(c.Playback.WordsPerMinute),
		}
	}
	return nil
}
