package usecase

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/librarease/assetstore/internal/usecase"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	assetsIngested, _     = meter.Int64Counter("assetstore.assets.ingested", metric.WithDescription("Assets stored"))
	assetsDeduplicated, _ = meter.Int64Counter("assetstore.assets.deduplicated", metric.WithDescription("Uploads answered with an existing asset"))
	assetsDeleted, _      = meter.Int64Counter("assetstore.assets.deleted", metric.WithDescription("Assets deleted"))
	ingestedBytes, _      = meter.Int64Counter("assetstore.assets.ingested_bytes", metric.WithDescription("Bytes stored"))
	assetsRejected, _     = meter.Int64Counter("assetstore.assets.rejected", metric.WithDescription("Uploads rejected by quota or content type"))
	variantsGenerated, _  = meter.Int64Counter("assetstore.variants.generated", metric.WithDescription("Variants rendered and cached"))
	variantCacheHits, _   = meter.Int64Counter("assetstore.variants.cache_hits", metric.WithDescription("Variants served from disk"))
)
