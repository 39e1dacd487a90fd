package cache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-tink/core"
	providercache "github.com/goliatone/go-tink/store/cache"
	"github.com/goliatone/go-tink/transport"
)

const providersBody = `{"providers":[{"name":"se-demo-bank","displayName":"Demo Bank","type":"TEST","status":"ENABLED","credentialsType":"PASSWORD","market":"SE"}]}`

func newCountingService(t *testing.T) (*core.Service, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/api/v1/providers/SE" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(providersBody))
	}))
	t.Cleanup(server.Close)

	cfg := core.DefaultConfig()
	cfg.BaseURL = server.URL
	svc, err := core.NewService(cfg, core.WithTransport(transport.NewRESTAdapter(server.Client())))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, &hits
}

func newCatalog(t *testing.T, svc *core.Service) *providercache.ProviderCatalog {
	t.Helper()
	cfg := svc.Config()
	cfg.Cache.ProviderTTLSeconds = 60
	cacheService, err := providercache.NewCacheService(cfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	catalog, err := providercache.NewProviderCatalog(svc.Providers(), cacheService)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return catalog
}

func TestProviderCatalog_ServesRepeatListsFromCache(t *testing.T) {
	svc, hits := newCountingService(t)
	catalog := newCatalog(t, svc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		providers, err := catalog.List(ctx, core.ProviderFilter{Market: " se "}, nil).Await()
		if err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
		if len(providers) != 1 || providers[0].ID != "se-demo-bank" {
			t.Fatalf("unexpected providers %+v", providers)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single upstream request, got %d", got)
	}
}

func TestProviderCatalog_InvalidateForcesRefetch(t *testing.T) {
	svc, hits := newCountingService(t)
	catalog := newCatalog(t, svc)
	ctx := context.Background()
	filter := core.ProviderFilter{Market: "SE"}

	if _, err := catalog.List(ctx, filter, nil).Await(); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := catalog.Invalidate(ctx, filter); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := catalog.List(ctx, filter, nil).Await(); err != nil {
		t.Fatalf("list after invalidate: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected refetch after invalidate, got %d requests", got)
	}
}

func TestProviderCatalog_CompletionReceivesCachedResult(t *testing.T) {
	svc, _ := newCountingService(t)
	catalog := newCatalog(t, svc)

	done := make(chan core.Result[[]core.Provider], 1)
	catalog.List(context.Background(), core.ProviderFilter{Market: "SE"}, func(result core.Result[[]core.Provider]) {
		done <- result
	})
	select {
	case result := <-done:
		if result.Err != nil || len(result.Value) != 1 {
			t.Fatalf("unexpected completion result %+v", result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("completion was not invoked")
	}
}

func TestProviderCacheKey_SeparatesFilters(t *testing.T) {
	live := providercache.ProviderCacheKey(core.ProviderFilter{Market: "SE"})
	withTest := providercache.ProviderCacheKey(core.ProviderFilter{Market: "SE", IncludeTestProviders: true})
	if live == withTest {
		t.Fatalf("expected distinct keys, both %q", live)
	}
}

func TestNewProviderCatalog_RequiresDependencies(t *testing.T) {
	if _, err := providercache.NewProviderCatalog(nil, nil); err == nil {
		t.Fatal("expected error for missing lister")
	}
}
