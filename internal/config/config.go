package config

// Header constants.
const (
	HEADER_KEY_X_USER_ID   = "X-User-Id"
	HEADER_KEY_X_CLIENT_ID = "X-Client-Id"
)

// Environment keys.
const (
	ENV_KEY_APP_ENV           = "APP_ENV"
	ENV_KEY_PORT              = "PORT"
	ENV_KEY_LOG_LEVEL         = "LOG_LEVEL"
	ENV_KEY_CLIENT_ID         = "CLIENT_ID"
	ENV_KEY_SERVICE_NAME      = "OTEL_SERVICE_NAME"
	ENV_KEY_OTLP_ENDPOINT     = "OTEL_EXPORTER_OTLP_ENDPOINT"
	ENV_KEY_PUBLIC_RATE_LIMIT = "PUBLIC_RATE_LIMIT"

	ENV_KEY_FIREBASE_SERVICE_ACCOUNT_KEY_PATH = "FIREBASE_SERVICE_ACCOUNT_KEY_PATH"

	ENV_KEY_DB_HOST                 = "DB_HOST"
	ENV_KEY_DB_PORT                 = "DB_PORT"
	ENV_KEY_DB_USER                 = "DB_USER"
	ENV_KEY_DB_PASSWORD             = "DB_PASSWORD"
	ENV_KEY_DB_DATABASE             = "DB_DATABASE"
	ENV_KEY_DB_MAX_OPEN_CONNECTIONS = "DB_MAX_OPEN_CONNECTIONS"

	ENV_KEY_REDIS_HOST     = "REDIS_HOST"
	ENV_KEY_REDIS_PORT     = "REDIS_PORT"
	ENV_KEY_REDIS_PASSWORD = "REDIS_PASSWORD"

	ENV_KEY_WORKER_CONCURRENCY = "WORKER_CONCURRENCY"

	ENV_KEY_STORAGE_PATH            = "STORAGE_PATH"
	ENV_KEY_ALLOWED_CONTENT_TYPES   = "ALLOWED_CONTENT_TYPES"
	ENV_KEY_WEBSITE_STORAGE_ENABLED = "WEBSITE_STORAGE_ENABLED"
	ENV_KEY_WEBSITE_MAX_STORAGE     = "WEBSITE_MAX_STORAGE"
	ENV_KEY_IMAGE_FILTER            = "IMAGE_OPS_FILTER_TYPE"
	ENV_KEY_JPEG_QUALITY            = "IMAGE_JPEG_QUALITY"
	ENV_KEY_FONT_PATH               = "FONT_PATH"
	ENV_KEY_ASSET_CACHE_TTL         = "ASSET_CACHE_TTL"
	ENV_KEY_DELETE_CONCURRENCY      = "DELETE_CONCURRENCY"
	ENV_KEY_LOOKUP_CONCURRENCY      = "LOOKUP_CONCURRENCY"
	ENV_KEY_MEMORY_CACHE_MAX_SIZE   = "MEMORY_CACHE_MAX_SIZE"
	ENV_KEY_MAX_UPLOAD_SIZE         = "MAX_UPLOAD_SIZE"
	ENV_KEY_STAGING_MAX_AGE         = "STAGING_MAX_AGE"

	ENV_KEY_MIRROR_PROVIDER  = "MIRROR_PROVIDER"
	ENV_KEY_MIRROR_BUCKET    = "MIRROR_BUCKET"
	ENV_KEY_MIRROR_PREFIX    = "MIRROR_PREFIX"
	ENV_KEY_MINIO_ENDPOINT   = "MINIO_ENDPOINT"
	ENV_KEY_MINIO_ACCESS_KEY = "MINIO_ACCESS_KEY"
	ENV_KEY_MINIO_SECRET_KEY = "MINIO_SECRET_KEY"
)

type ContextKey uint

const (
	_ ContextKey = iota
	CTX_KEY_USER_ID
)
