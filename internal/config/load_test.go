package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		ENV_KEY_PORT,
		ENV_KEY_STORAGE_PATH,
		ENV_KEY_ALLOWED_CONTENT_TYPES,
		ENV_KEY_WEBSITE_STORAGE_ENABLED,
		ENV_KEY_WEBSITE_MAX_STORAGE,
		ENV_KEY_REDIS_HOST,
		ENV_KEY_OTLP_ENDPOINT,
		ENV_KEY_PUBLIC_RATE_LIMIT,
		ENV_KEY_LOG_LEVEL,
		ENV_KEY_LOOKUP_CONCURRENCY,
		ENV_KEY_MEMORY_CACHE_MAX_SIZE,
		ENV_KEY_MAX_UPLOAD_SIZE,
		ENV_KEY_FIREBASE_SERVICE_ACCOUNT_KEY_PATH,
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Port, cfg.Port)
	assert.Equal(t, DefaultAllowedContentTypes, cfg.AllowedContentTypes)
	assert.False(t, cfg.WebsiteStorageEnabled)
	assert.Equal(t, int64(1<<30), cfg.WebsiteMaxStorage)
	assert.Equal(t, 90, cfg.JPEGQuality)
	assert.Equal(t, float64(50), cfg.PublicRateLimit)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.OTLPEnabled)
	assert.Empty(t, cfg.Redis.Addr())
	assert.Equal(t, 16, cfg.LookupConcurrency)
	assert.Equal(t, 8, cfg.DeleteConcurrency)
	assert.Equal(t, 64, cfg.MemoryCacheMaxSize)
	assert.Equal(t, int64(100<<20), cfg.MaxUploadSize)
	assert.Empty(t, cfg.FirebaseCredentialsPath)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(ENV_KEY_PORT, "8080")
	t.Setenv(ENV_KEY_STORAGE_PATH, "/var/lib/assets")
	t.Setenv(ENV_KEY_ALLOWED_CONTENT_TYPES, "image/png, image/jpeg,,")
	t.Setenv(ENV_KEY_WEBSITE_STORAGE_ENABLED, "true")
	t.Setenv(ENV_KEY_WEBSITE_MAX_STORAGE, "10 MiB")
	t.Setenv(ENV_KEY_ASSET_CACHE_TTL, "90s")
	t.Setenv(ENV_KEY_REDIS_HOST, "redis")
	t.Setenv(ENV_KEY_REDIS_PORT, "6380")
	t.Setenv(ENV_KEY_LOG_LEVEL, "DEBUG")
	t.Setenv(ENV_KEY_PUBLIC_RATE_LIMIT, "2.5")
	t.Setenv(ENV_KEY_MIRROR_PROVIDER, "minio")
	t.Setenv(ENV_KEY_MIRROR_BUCKET, "assets")
	t.Setenv(ENV_KEY_LOOKUP_CONCURRENCY, "4")
	t.Setenv(ENV_KEY_MEMORY_CACHE_MAX_SIZE, "16")
	t.Setenv(ENV_KEY_MAX_UPLOAD_SIZE, "5 MiB")
	t.Setenv(ENV_KEY_FIREBASE_SERVICE_ACCOUNT_KEY_PATH, "/etc/assetstore/firebase.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/var/lib/assets", cfg.StoragePath)
	assert.Equal(t, []string{"image/png", "image/jpeg"}, cfg.AllowedContentTypes)
	assert.True(t, cfg.WebsiteStorageEnabled)
	assert.Equal(t, int64(10<<20), cfg.WebsiteMaxStorage)
	assert.Equal(t, 90*time.Second, cfg.AssetCacheTTL)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 2.5, cfg.PublicRateLimit)
	assert.Equal(t, "minio", cfg.Mirror.Provider)
	assert.Equal(t, "assets", cfg.Mirror.Bucket)
	assert.Equal(t, 4, cfg.LookupConcurrency)
	assert.Equal(t, 16, cfg.MemoryCacheMaxSize)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadSize)
	assert.Equal(t, "/etc/assetstore/firebase.json", cfg.FirebaseCredentialsPath)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{ENV_KEY_PORT, "http"},
		{ENV_KEY_WEBSITE_STORAGE_ENABLED, "maybe"},
		{ENV_KEY_WEBSITE_MAX_STORAGE, "lots"},
		{ENV_KEY_ASSET_CACHE_TTL, "forever"},
		{ENV_KEY_PUBLIC_RATE_LIMIT, "fast"},
		{ENV_KEY_LOOKUP_CONCURRENCY, "many"},
		{ENV_KEY_MAX_UPLOAD_SIZE, "huge"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestDBConfigDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "assets"}
	assert.Equal(t, "postgres://u:p@db:5432/assets?sslmode=disable", c.DSN())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}
