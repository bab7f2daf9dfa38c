package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	_ "github.com/joho/godotenv/autoload"
)

// DefaultAllowedContentTypes are the content types accepted for new assets.
var DefaultAllowedContentTypes = []string{
	"image/bmp",
	"image/gif",
	"image/jpeg",
	"image/png",
	"image/webp",
}

// Config is built once at startup and handed to every constructor.
type Config struct {
	AppEnv      string
	Port        int
	LogLevel    slog.Level
	ClientID    string
	ServiceName string
	OTLPEnabled bool
	// PublicRateLimit is requests per second per client IP on public
	// routes. Zero disables limiting.
	PublicRateLimit float64
	// FirebaseCredentialsPath enables bearer token sign-in when set.
	FirebaseCredentialsPath string

	StoragePath           string
	AllowedContentTypes   []string
	WebsiteStorageEnabled bool
	WebsiteMaxStorage     int64
	ImageFilter           string
	JPEGQuality           int
	FontPath              string
	AssetCacheTTL         time.Duration
	DeleteConcurrency     int
	LookupConcurrency     int
	StagingMaxAge         time.Duration
	// MemoryCacheMaxSize caps the in-process cache, in megabytes.
	MemoryCacheMaxSize int
	MaxUploadSize      int64

	DB     DBConfig
	Redis  RedisConfig
	Mirror MirrorConfig

	WorkerConcurrency int
}

type DBConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Database           string
	MaxOpenConnections int
}

// DSN returns the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.Database)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

func (c RedisConfig) Addr() string {
	if c.Host == "" {
		return ""
	}
	return c.Host + ":" + c.Port
}

type MirrorConfig struct {
	// Provider is "minio", "s3" or empty for no mirror.
	Provider  string
	Bucket    string
	Prefix    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		AppEnv:              "local",
		Port:                3050,
		PublicRateLimit:     50,
		LogLevel:            slog.LevelInfo,
		ServiceName:         "assetstore",
		StoragePath:         "./storage",
		AllowedContentTypes: DefaultAllowedContentTypes,
		WebsiteMaxStorage:   1 << 30,
		ImageFilter:         "CatmullRom",
		JPEGQuality:         90,
		AssetCacheTTL:       time.Hour,
		DeleteConcurrency:   8,
		LookupConcurrency:   16,
		MemoryCacheMaxSize:  64,
		MaxUploadSize:       100 << 20,
		StagingMaxAge:       24 * time.Hour,
		Redis:               RedisConfig{Port: "6379"},
		WorkerConcurrency:   10,
	}
}

// Load reads the environment on top of Default.
func Load() (Config, error) {
	cfg := Default()

	cfg.AppEnv = envOr(ENV_KEY_APP_ENV, cfg.AppEnv)
	cfg.ClientID = os.Getenv(ENV_KEY_CLIENT_ID)
	cfg.FirebaseCredentialsPath = os.Getenv(ENV_KEY_FIREBASE_SERVICE_ACCOUNT_KEY_PATH)
	cfg.ServiceName = envOr(ENV_KEY_SERVICE_NAME, cfg.ServiceName)
	cfg.OTLPEnabled = os.Getenv(ENV_KEY_OTLP_ENDPOINT) != ""
	cfg.LogLevel = ParseLogLevel(os.Getenv(ENV_KEY_LOG_LEVEL))

	var err error
	if cfg.Port, err = envInt(ENV_KEY_PORT, cfg.Port); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(ENV_KEY_PUBLIC_RATE_LIMIT); v != "" {
		if cfg.PublicRateLimit, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, fmt.Errorf("%s: %w", ENV_KEY_PUBLIC_RATE_LIMIT, err)
		}
	}

	cfg.StoragePath = envOr(ENV_KEY_STORAGE_PATH, cfg.StoragePath)
	if v := os.Getenv(ENV_KEY_ALLOWED_CONTENT_TYPES); v != "" {
		cfg.AllowedContentTypes = splitList(v)
	}
	if v := os.Getenv(ENV_KEY_WEBSITE_STORAGE_ENABLED); v != "" {
		if cfg.WebsiteStorageEnabled, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", ENV_KEY_WEBSITE_STORAGE_ENABLED, err)
		}
	}
	if v := os.Getenv(ENV_KEY_WEBSITE_MAX_STORAGE); v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", ENV_KEY_WEBSITE_MAX_STORAGE, err)
		}
		cfg.WebsiteMaxStorage = int64(n)
	}
	cfg.ImageFilter = envOr(ENV_KEY_IMAGE_FILTER, cfg.ImageFilter)
	if cfg.JPEGQuality, err = envInt(ENV_KEY_JPEG_QUALITY, cfg.JPEGQuality); err != nil {
		return Config{}, err
	}
	cfg.FontPath = os.Getenv(ENV_KEY_FONT_PATH)
	if cfg.AssetCacheTTL, err = envDuration(ENV_KEY_ASSET_CACHE_TTL, cfg.AssetCacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.DeleteConcurrency, err = envInt(ENV_KEY_DELETE_CONCURRENCY, cfg.DeleteConcurrency); err != nil {
		return Config{}, err
	}
	if cfg.LookupConcurrency, err = envInt(ENV_KEY_LOOKUP_CONCURRENCY, cfg.LookupConcurrency); err != nil {
		return Config{}, err
	}
	if cfg.MemoryCacheMaxSize, err = envInt(ENV_KEY_MEMORY_CACHE_MAX_SIZE, cfg.MemoryCacheMaxSize); err != nil {
		return Config{}, err
	}
	if v := os.Getenv(ENV_KEY_MAX_UPLOAD_SIZE); v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", ENV_KEY_MAX_UPLOAD_SIZE, err)
		}
		cfg.MaxUploadSize = int64(n)
	}
	if cfg.StagingMaxAge, err = envDuration(ENV_KEY_STAGING_MAX_AGE, cfg.StagingMaxAge); err != nil {
		return Config{}, err
	}

	cfg.DB = DBConfig{
		Host:     os.Getenv(ENV_KEY_DB_HOST),
		Port:     os.Getenv(ENV_KEY_DB_PORT),
		User:     os.Getenv(ENV_KEY_DB_USER),
		Password: os.Getenv(ENV_KEY_DB_PASSWORD),
		Database: os.Getenv(ENV_KEY_DB_DATABASE),
	}
	if cfg.DB.MaxOpenConnections, err = envInt(ENV_KEY_DB_MAX_OPEN_CONNECTIONS, 0); err != nil {
		return Config{}, err
	}

	cfg.Redis = RedisConfig{
		Host:     os.Getenv(ENV_KEY_REDIS_HOST),
		Port:     envOr(ENV_KEY_REDIS_PORT, cfg.Redis.Port),
		Password: os.Getenv(ENV_KEY_REDIS_PASSWORD),
	}
	if cfg.WorkerConcurrency, err = envInt(ENV_KEY_WORKER_CONCURRENCY, cfg.WorkerConcurrency); err != nil {
		return Config{}, err
	}

	cfg.Mirror = MirrorConfig{
		Provider:  os.Getenv(ENV_KEY_MIRROR_PROVIDER),
		Bucket:    os.Getenv(ENV_KEY_MIRROR_BUCKET),
		Prefix:    os.Getenv(ENV_KEY_MIRROR_PREFIX),
		Endpoint:  os.Getenv(ENV_KEY_MINIO_ENDPOINT),
		AccessKey: os.Getenv(ENV_KEY_MINIO_ACCESS_KEY),
		SecretKey: os.Getenv(ENV_KEY_MINIO_SECRET_KEY),
	}

	return cfg, nil
}

// ParseLogLevel maps LOG_LEVEL values to slog levels, defaulting to INFO.
func ParseLogLevel(lvl string) slog.Level {
	switch lvl {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
