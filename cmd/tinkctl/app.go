package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-tink"
	"github.com/goliatone/go-tink/adapters/prommetrics"
	"github.com/goliatone/go-tink/adapters/zerologger"
	"github.com/goliatone/go-tink/core"
	"github.com/goliatone/go-tink/security"
	sqlstore "github.com/goliatone/go-tink/store/sql"
	"github.com/prometheus/client_golang/prometheus"
)

type app struct {
	out  io.Writer
	logs io.Writer

	configFile  string
	baseURL     string
	accessToken string
	storeDSN    string
	storeKey    string
	logLevel    string
	prettyLogs  bool

	registry *prometheus.Registry
	client   *persistence.Client
	store    *sqlstore.CredentialsSnapshotStore
	service  *tink.Service
}

// open builds the service on first use. Flags are final by then.
func (a *app) open(ctx context.Context) (*tink.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	loader, err := newViperLoader(a.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	zl := zerologger.New(zerologger.Options{Level: a.logLevel, Pretty: a.prettyLogs, Output: a.logs})
	provider := zerologger.NewProvider(zl)
	a.registry = prometheus.NewRegistry()

	opts := []tink.Option{
		tink.WithConfigProvider(core.NewCfgxConfigProvider(loader)),
		tink.WithLoggerProvider(provider),
		tink.WithLogger(provider.GetLogger("tink")),
		tink.WithMetricsRecorder(prommetrics.New(a.registry)),
	}
	if token := strings.TrimSpace(a.accessToken); token != "" {
		opts = append(opts, tink.WithAccessToken(token))
	}
	if dsn := strings.TrimSpace(a.storeDSN); dsn != "" {
		store, err := a.openStore(ctx, dsn)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tink.WithCredentialsObserver(store))
	}

	runtime := tink.Config{}
	if base := strings.TrimSpace(a.baseURL); base != "" {
		runtime.BaseURL = base
	}
	svc, err := tink.NewService(runtime, opts...)
	if err != nil {
		return nil, err
	}
	a.service = svc
	return svc, nil
}

func (a *app) openStore(ctx context.Context, dsn string) (*sqlstore.CredentialsSnapshotStore, error) {
	if a.store != nil {
		return a.store, nil
	}
	client, err := sqlstore.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	var storeOpts []sqlstore.SnapshotStoreOption
	if key := strings.TrimSpace(a.storeKey); key != "" {
		secrets, err := security.NewAppKeySecretProviderFromString(key)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		storeOpts = append(storeOpts, sqlstore.WithSecretProvider(secrets))
	}
	store, err := sqlstore.NewCredentialsSnapshotStoreFromPersistence(client, storeOpts...)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	a.client = client
	a.store = store
	return store, nil
}

func (a *app) close() error {
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}

func (a *app) printJSON(value any) error {
	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
