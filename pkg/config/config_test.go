package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/willwade/tts-wrapper-go/pkg/errors"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvFFmpegPath, EnvRedisAddr, EnvWordsPerMinute, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

const fullConfig = `
logging:
  defaultLevel: debug
  format: json
  commonFields:
    env: test
  modules:
    - name: runtime.media
      level: warn
conversion:
  ffmpegPath: /opt/ffmpeg/bin/ffmpeg
  timeout: 45s
  tempDir: /var/tmp/tts
  maxConcurrent: 2
  defaultBitRate: 96
  disableInProcess: true
cache:
  backend: redis
  size: 64
  ttl: 10m
  redis:
    addr: localhost:6379
    db: 2
    prefix: tts
playback:
  playerCommand: "ffplay -nodisp -autoexit"
  preferDevice: true
  wordsPerMinute: 180
  format: mp3
metrics:
  enabled: true
  addr: ":9464"
telemetry:
  enabled: true
  endpoint: http://collector:4318/v1/traces
  serviceName: narrator
`

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, DefaultWordsPerMinute, cfg.Playback.WordsPerMinute)
	assert.Equal(t, DefaultFFmpegTimeout, cfg.Conversion.Timeout)
}

func TestParse_FullFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, []ModuleLoggingConfig{{Name: "runtime.media", Level: "warn"}}, cfg.Logging.Modules)
	assert.Equal(t, "test", cfg.Logging.CommonFields["env"])

	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Conversion.FFmpegPath)
	assert.Equal(t, 45*time.Second, cfg.Conversion.Timeout)
	assert.Equal(t, 2, cfg.Conversion.MaxConcurrent)
	assert.Equal(t, 96, cfg.Conversion.DefaultBitRate)
	assert.True(t, cfg.Conversion.DisableInProcess)

	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, RedisConfig{Addr: "localhost:6379", DB: 2, Prefix: "tts"}, cfg.Cache.Redis)

	assert.Equal(t, "ffplay -nodisp -autoexit", cfg.Playback.PlayerCommand)
	assert.Equal(t, 180, cfg.Playback.WordsPerMinute)
	assert.Equal(t, "mp3", cfg.Playback.Format)

	assert.Equal(t, MetricsConfig{Enabled: true, Addr: ":9464"}, cfg.Metrics)
	assert.Equal(t, "narrator", cfg.Telemetry.ServiceName)
}

func TestParse_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte("playback:\n  wordsPerMinute: 200\n"))
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Playback.WordsPerMinute)
	assert.Equal(t, DefaultFFmpegPath, cfg.Conversion.FFmpegPath)
	assert.Equal(t, DefaultCachePrefix, cfg.Cache.Redis.Prefix)
}

func TestParse_SchemaViolations(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown section", "speech:\n  rate: 1\n", "speech"},
		{"bad level", "logging:\n  defaultLevel: loud\n", "defaultLevel"},
		{"bad duration", "conversion:\n  timeout: soon\n", "timeout"},
		{"bad backend", "cache:\n  backend: disk\n", "backend"},
		{"bad format", "playback:\n  format: aiff\n", "format"},
		{"non-positive rate", "playback:\n  wordsPerMinute: 0\n", "wordsPerMinute"},
		{"module without level", "logging:\n  modules:\n    - name: runtime\n", "level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "does not match schema")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("logging: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_CrossFieldValidation(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"redis without addr", "cache:\n  backend: redis\n", "cache.redis.addr"},
		{"metrics without addr", "metrics:\n  enabled: true\n  addr: \"\"\n", "metrics.addr"},
		{"telemetry without endpoint", "telemetry:\n  enabled: true\n", "telemetry.endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvFFmpegPath, "/usr/local/bin/ffmpeg")
	t.Setenv(EnvRedisAddr, "redis:6379")
	t.Setenv(EnvWordsPerMinute, " 220 ")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/ffmpeg", cfg.Conversion.FFmpegPath)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 220, cfg.Playback.WordsPerMinute)
	assert.Equal(t, LogLevelDebug, cfg.Logging.DefaultLevel)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	env := map[string]string{EnvWordsPerMinute: "fast"}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	err := DefaultConfig().ApplyEnv(lookup)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, EnvWordsPerMinute, verr.Field)

	cfg := DefaultConfig()
	env = map[string]string{EnvLogLevel: "verbose"}
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Error(t, cfg.Validate(), "an unknown LOG_LEVEL fails validation")
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "tts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "narrator", cfg.Telemetry.ServiceName)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var cerr *pkgerrors.ContextualError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "config", cerr.Component)
	assert.Equal(t, path, cerr.Details["path"])
}

func TestLoggingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr string
	}{
		{"defaults", DefaultLoggingConfig(), ""},
		{"bad level", LoggingConfig{DefaultLevel: "loud"}, "logging.defaultLevel"},
		{"bad format", LoggingConfig{Format: "xml"}, "logging.format"},
		{"unnamed module", LoggingConfig{Modules: []ModuleLoggingConfig{{Level: "info"}}}, "logging.modules[0].name"},
		{"bad module level", LoggingConfig{Modules: []ModuleLoggingConfig{{Name: "runtime", Level: "x"}}}, "logging.modules[runtime].level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
