package transport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

type AdapterFactory func(config map[string]any) (core.TransportAdapter, error)

// Registry resolves a configured transport kind to an adapter. Registered
// adapters are shared; factories build a fresh adapter per Build call.
type Registry struct {
	mu        sync.RWMutex
	adapters  map[string]core.TransportAdapter
	factories map[string]AdapterFactory
}

func NewRegistry() *Registry {
	return &Registry{
		adapters:  map[string]core.TransportAdapter{},
		factories: map[string]AdapterFactory{},
	}
}

// NewDefaultRegistry resolves "rest" through NewRESTAdapterFromConfig so the
// service timeout and body limit reach the http client. "grpc" resolves to an
// adapter that rejects every call.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.RegisterFactory(KindREST, NewRESTAdapterFromConfig)
	_ = registry.RegisterFactory(KindGRPC, unsupportedFactory(KindGRPC))
	return registry
}

func (r *Registry) Register(adapter core.TransportAdapter) error {
	if r == nil {
		return registryError("transport: registry is nil", goerrors.CategoryInternal, nil)
	}
	if adapter == nil {
		return registryError("transport: adapter is nil", goerrors.CategoryBadInput, nil)
	}
	kind := normalizeKind(adapter.Kind())
	if kind == "" {
		return registryError("transport: adapter kind is required", goerrors.CategoryBadInput, nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[kind]; exists {
		return registryError(fmt.Sprintf("transport: adapter kind %q already registered", kind), goerrors.CategoryConflict, map[string]any{"kind": kind})
	}
	r.adapters[kind] = adapter
	return nil
}

func (r *Registry) RegisterFactory(kind string, factory AdapterFactory) error {
	if r == nil {
		return registryError("transport: registry is nil", goerrors.CategoryInternal, nil)
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return registryError("transport: adapter kind is required", goerrors.CategoryBadInput, nil)
	}
	if factory == nil {
		return registryError("transport: adapter factory is nil", goerrors.CategoryBadInput, map[string]any{"kind": kind})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return registryError(fmt.Sprintf("transport: adapter factory kind %q already registered", kind), goerrors.CategoryConflict, map[string]any{"kind": kind})
	}
	r.factories[kind] = factory
	return nil
}

// Build implements core.TransportResolver. A registered adapter wins over a
// factory of the same kind.
func (r *Registry) Build(kind string, config map[string]any) (core.TransportAdapter, error) {
	if r == nil {
		return nil, registryError("transport: registry is nil", goerrors.CategoryInternal, nil)
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return nil, registryError("transport: adapter kind is required", goerrors.CategoryBadInput, nil)
	}

	r.mu.RLock()
	adapter, ok := r.adapters[kind]
	factory := r.factories[kind]
	r.mu.RUnlock()
	if ok {
		return adapter, nil
	}
	if factory == nil {
		return nil, registryError(fmt.Sprintf("transport: adapter kind %q not registered", kind), goerrors.CategoryNotFound, map[string]any{"kind": kind})
	}
	built, err := factory(cloneMap(config))
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, registryError(fmt.Sprintf("transport: factory for %q returned nil adapter", kind), goerrors.CategoryInternal, map[string]any{"kind": kind})
	}
	return built, nil
}

func (r *Registry) Get(kind string) (core.TransportAdapter, bool) {
	if r == nil {
		return nil, false
	}
	kind = normalizeKind(kind)
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[kind]
	return adapter, ok
}

// Kinds lists every resolvable kind, registered or factory-built, sorted.
func (r *Registry) Kinds() []string {
	if r == nil {
		return []string{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.adapters)+len(r.factories))
	for kind := range r.adapters {
		seen[kind] = struct{}{}
	}
	for kind := range r.factories {
		seen[kind] = struct{}{}
	}
	kinds := make([]string, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func normalizeKind(kind string) string {
	return strings.TrimSpace(strings.ToLower(kind))
}

func unsupportedFactory(kind string) AdapterFactory {
	return func(config map[string]any) (core.TransportAdapter, error) {
		reason, _ := config["reason"].(string)
		if strings.TrimSpace(reason) == "" {
			reason = "only the rest transport is built in"
		}
		return NewUnsupportedAdapter(kind, reason), nil
	}
}

func registryError(message string, category goerrors.Category, metadata map[string]any) error {
	code := http.StatusInternalServerError
	switch category {
	case goerrors.CategoryBadInput:
		code = http.StatusBadRequest
	case goerrors.CategoryNotFound:
		code = http.StatusNotFound
	case goerrors.CategoryConflict:
		code = http.StatusConflict
	}
	return transportError(message, category, code, metadata)
}

func cloneMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	output := make(map[string]any, len(input))
	for key, value := range input {
		output[key] = value
	}
	return output
}

var _ core.TransportResolver = (*Registry)(nil)
