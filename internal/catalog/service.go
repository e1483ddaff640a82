package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/norvia/storefront-api/internal/shopify"
)

// ErrNotFound is returned when no product exists for the requested handle.
var ErrNotFound = errors.New("catalog: product not found")

// Source is the slice of the storefront client the catalog reads from.
type Source interface {
	GetProduct(ctx context.Context, handle string) (*shopify.Product, error)
	GetProducts(ctx context.Context) ([]shopify.Product, error)
}

// Service serves catalog reads through a short-lived Redis cache. The
// storefront platform stays the source of truth; the cache only absorbs
// repeated page loads.
type Service struct {
	source Source
	cache  *Cache
	logger zerolog.Logger
}

// ServiceConfig configures Service dependencies.
type ServiceConfig struct {
	Source Source
	Cache  *Cache
	Logger zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{source: cfg.Source, cache: cfg.Cache, logger: cfg.Logger}
}

const (
	productsCacheKey    = "catalog:products"
	productCacheKeyBase = "catalog:product:"
)

// Products lists the published products.
func (s *Service) Products(ctx context.Context) ([]shopify.Product, error) {
	var cached []shopify.Product
	if hit := s.cacheGet(ctx, productsCacheKey, &cached); hit {
		return cached, nil
	}
	products, err := s.source.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []shopify.Product{}
	}
	s.cacheSet(ctx, productsCacheKey, products)
	return products, nil
}

// Product fetches a single product by handle. Unknown handles return
// ErrNotFound; negative results are not cached.
func (s *Service) Product(ctx context.Context, handle string) (*shopify.Product, error) {
	if handle == "" {
		return nil, ErrNotFound
	}
	key := productCacheKeyBase + handle
	var cached shopify.Product
	if hit := s.cacheGet(ctx, key, &cached); hit {
		return &cached, nil
	}
	product, err := s.source.GetProduct(ctx, handle)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	s.cacheSet(ctx, key, product)
	return product, nil
}

func (s *Service) cacheGet(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		return false
	}
	return hit
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	if err := s.cache.SetJSON(ctx, key, v); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

// DefaultCacheTTL keeps catalog payloads fresh enough for a single-product
// storefront while shielding the platform from burst traffic.
const DefaultCacheTTL = 5 * time.Minute
