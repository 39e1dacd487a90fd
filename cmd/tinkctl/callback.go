package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-tink/core"
	"github.com/goliatone/go-tink/inbound"
	providercache "github.com/goliatone/go-tink/store/cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newCallbackCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callback",
		Short: "Relay third-party authentication redirects",
	}
	cmd.AddCommand(newCallbackRelayCommand(a), newCallbackServeCommand(a))
	return cmd
}

func newCallbackRelayCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "relay <redirect-url>",
		Short: "Relay one redirect URL received by the host app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			redirect, err := inbound.ParseRedirect(args[0])
			if err != nil {
				return err
			}
			svc, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			relay, err := inbound.NewRelay(svc.Credentials(), inbound.WithClaimStore(nil), inbound.WithLogger(svc.Logger("inbound")))
			if err != nil {
				return err
			}
			if _, err := relay.Dispatch(cmd.Context(), redirect); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "callback relayed")
			return nil
		},
	}
}

func newCallbackServeCommand(a *app) *cobra.Command {
	var (
		addr     string
		claimTTL time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the redirect callback, provider catalog and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handler, err := a.serverHandler(ctx, claimTTL)
			if err != nil {
				return err
			}
			server := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			errs := make(chan error, 1)
			go func() {
				errs <- server.ListenAndServe()
			}()
			a.service.Logger("tinkctl").Info("callback server listening", "addr", addr)

			select {
			case err := <-errs:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().DurationVar(&claimTTL, "claim-ttl", 10*time.Minute, "How long a relayed state is held against replays")
	return cmd
}

// serverHandler mounts the callback relay with GET /providers/{market},
// served through the provider cache, and /metrics.
func (a *app) serverHandler(ctx context.Context, claimTTL time.Duration) (http.Handler, error) {
	svc, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	relay, err := inbound.NewRelay(svc.Credentials(),
		inbound.WithClaimTTL(claimTTL),
		inbound.WithLogger(svc.Logger("inbound")),
	)
	if err != nil {
		return nil, err
	}
	cacheService, err := providercache.NewCacheService(svc.Config())
	if err != nil {
		return nil, err
	}
	catalog, err := providercache.NewProviderCatalog(svc.Providers(), cacheService)
	if err != nil {
		return nil, err
	}

	r := inbound.NewHTTPHandler(relay)
	r.Get("/providers/{market}", func(w http.ResponseWriter, req *http.Request) {
		filter := core.ProviderFilter{
			Market:               chi.URLParam(req, "market"),
			IncludeTestProviders: strings.EqualFold(req.URL.Query().Get("includeTestProviders"), "true"),
		}
		providers, err := catalog.List(req.Context(), filter, nil).AwaitContext(req.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		records := make([]providerView, 0, len(providers))
		for _, provider := range providers {
			records = append(records, newProviderView(provider))
		}
		writeJSON(w, map[string]any{"providers": records})
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	return r, nil
}
