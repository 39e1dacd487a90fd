// Package cache keeps provider listings in a go-repository-cache service so
// repeated market lookups skip the platform call.
package cache

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-tink/core"
)

const providerCacheKeyPrefix = "go-tink::v1"

// ProviderCatalog is a core.ProviderLister that serves cached listings and
// falls through to the wrapped lister on a miss. Failed fetches are not
// cached.
type ProviderCatalog struct {
	base  core.ProviderLister
	cache repositorycache.CacheService
}

func NewProviderCatalog(base core.ProviderLister, cacheService repositorycache.CacheService) (*ProviderCatalog, error) {
	if base == nil {
		return nil, catalogError("cache: base provider lister is required")
	}
	if cacheService == nil {
		return nil, catalogError("cache: cache service is required")
	}
	return &ProviderCatalog{base: base, cache: cacheService}, nil
}

// NewCacheService builds an in-process cache whose TTL follows
// cache.provider_ttl_seconds.
func NewCacheService(cfg core.Config) (repositorycache.CacheService, error) {
	config := repositorycache.DefaultConfig()
	if ttl := cfg.ProviderCacheTTL(); ttl > 0 {
		config.TTL = ttl
	}
	return repositorycache.NewCacheService(config)
}

func ProviderCacheKey(filter core.ProviderFilter) string {
	return providerCacheKeyPrefix + "::" + filter.CacheKey()
}

func (c *ProviderCatalog) List(
	ctx context.Context,
	filter core.ProviderFilter,
	completion core.Completion[[]core.Provider],
) *core.Task[[]core.Provider] {
	return core.Go(ctx, func(ctx context.Context) ([]core.Provider, error) {
		return c.list(ctx, filter)
	}, completion)
}

func (c *ProviderCatalog) list(ctx context.Context, filter core.ProviderFilter) ([]core.Provider, error) {
	if c == nil || c.base == nil || c.cache == nil {
		return nil, catalogError("cache: provider catalog is not configured")
	}
	filter.Market = strings.ToUpper(strings.TrimSpace(filter.Market))
	providers, err := repositorycache.GetOrFetch(ctx, c.cache, ProviderCacheKey(filter), func(ctx context.Context) ([]core.Provider, error) {
		return c.base.List(ctx, filter, nil).AwaitContext(ctx)
	})
	if err != nil {
		return nil, err
	}
	return append([]core.Provider(nil), providers...), nil
}

// Invalidate drops the cached listing for filter.
func (c *ProviderCatalog) Invalidate(ctx context.Context, filter core.ProviderFilter) error {
	if c == nil || c.cache == nil {
		return catalogError("cache: provider catalog is not configured")
	}
	filter.Market = strings.ToUpper(strings.TrimSpace(filter.Market))
	return c.cache.Delete(ctx, ProviderCacheKey(filter))
}

func catalogError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}

var _ core.ProviderLister = (*ProviderCatalog)(nil)
