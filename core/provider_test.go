package core

import (
	"context"
	"net/http"
	"testing"
)

const providersFixture = `{"providers":[
	{
		"name":"se-demo-bank",
		"displayName":"Demo Bank",
		"type":"TEST",
		"status":"ENABLED",
		"credentialsType":"PASSWORD",
		"capabilities":"[\"CHECKING_ACCOUNTS\",\"TRANSFERS\",\"TELEPORTATION\"]",
		"images":{"icon":"https://cdn.tink.test/demo.png"},
		"market":"se",
		"fields":[{"name":"username","description":"Username","optional":false}]
	},
	{"displayName":"nameless"}
]}`

func TestDecodeProviders_MapsRecords(t *testing.T) {
	providers, err := DecodeProviders([]byte(providersFixture))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(providers) != 1 {
		t.Fatalf("expected nameless record to be skipped, got %d providers", len(providers))
	}
	provider := providers[0]
	if provider.Kind != ProviderKindTest || provider.Status != ProviderStatusEnabled {
		t.Fatalf("unexpected enums %#v", provider)
	}
	if provider.CredentialsKind != CredentialsKindPassword {
		t.Fatalf("expected password credentials kind, got %q", provider.CredentialsKind)
	}
	if provider.GroupDisplayName != "Demo Bank" {
		t.Fatalf("expected group display name fallback, got %q", provider.GroupDisplayName)
	}
	if provider.ImageURL == nil || provider.ImageURL.Host != "cdn.tink.test" {
		t.Fatalf("expected icon url, got %v", provider.ImageURL)
	}
	if provider.MarketCode != "SE" {
		t.Fatalf("expected upper-case market, got %q", provider.MarketCode)
	}
	if len(provider.Capabilities) != 2 || !provider.HasCapability(ProviderCapabilityTransfers) {
		t.Fatalf("expected known capabilities only, got %v", provider.Capabilities)
	}
	if len(provider.Fields) != 1 || provider.Fields[0].Optional {
		t.Fatalf("expected explicit optional=false to survive, got %#v", provider.Fields)
	}
}

func TestProviderFilter_CacheKeyIgnoresCapabilityOrder(t *testing.T) {
	first := ProviderFilter{Market: "se", Capabilities: []ProviderCapability{ProviderCapabilityTransfers, ProviderCapabilityLoans}}
	second := ProviderFilter{Market: "SE", Capabilities: []ProviderCapability{ProviderCapabilityLoans, ProviderCapabilityTransfers}}
	if first.CacheKey() != second.CacheKey() {
		t.Fatalf("expected equal keys, got %q and %q", first.CacheKey(), second.CacheKey())
	}
	second.IncludeTestProviders = true
	if first.CacheKey() == second.CacheKey() {
		t.Fatalf("expected test provider flag to change the key")
	}
}

func TestProviderService_ListBuildsMarketPathAndQuery(t *testing.T) {
	recorder := &requestRecorder{}
	svc := newTestService(t, recorder.wrap(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, providersFixture)
	}))

	providers, err := svc.Providers().List(context.Background(), ProviderFilter{
		Market:               "se",
		Capabilities:         []ProviderCapability{ProviderCapabilityCheckingAccounts, ProviderCapabilityTransfers},
		IncludeTestProviders: true,
	}, nil).Await()
	if err != nil {
		t.Fatalf("list providers: %v", err)
	}
	if len(providers) != 1 {
		t.Fatalf("expected one provider, got %d", len(providers))
	}
	req := recorder.last(t)
	if req.method != http.MethodGet || req.path != "/api/v1/providers/SE" {
		t.Fatalf("unexpected request %s %s", req.method, req.path)
	}
	if got := req.query["capability"]; len(got) != 2 {
		t.Fatalf("expected repeated capability params, got %v", got)
	}
	if req.query["includeTestProviders"][0] != "true" {
		t.Fatalf("expected includeTestProviders flag, got %v", req.query)
	}

	if _, err := svc.Providers().List(context.Background(), ProviderFilter{}, nil).Await(); err != nil {
		t.Fatalf("list providers without market: %v", err)
	}
	if req := recorder.last(t); req.path != "/api/v1/providers" || len(req.query) != 0 {
		t.Fatalf("expected bare providers path, got %s %v", req.path, req.query)
	}
}
