package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/goliatone/go-tink/core"
	"github.com/spf13/cobra"
)

func newProvidersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Browse the provider catalog",
	}
	cmd.AddCommand(newProvidersListCommand(a))
	return cmd
}

func newProvidersListCommand(a *app) *cobra.Command {
	var (
		capabilities []string
		includeTest  bool
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "list [market]",
		Short: "List providers, optionally for one market",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := core.ProviderFilter{IncludeTestProviders: includeTest}
			if len(args) == 1 {
				filter.Market = args[0]
			}
			for _, capability := range capabilities {
				filter.Capabilities = append(filter.Capabilities, core.ProviderCapability(capability))
			}
			providers, err := runTask(cmd, a, func(ctx context.Context, svc *core.Service) *core.Task[[]core.Provider] {
				return svc.Providers().List(ctx, filter, nil)
			})
			if err != nil {
				return err
			}
			if asJSON {
				views := make([]providerView, 0, len(providers))
				for _, provider := range providers {
					views = append(views, newProviderView(provider))
				}
				return a.printJSON(views)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDISPLAY NAME\tMARKET\tSTATUS\tCREDENTIALS")
			for _, provider := range providers {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					provider.ID, provider.DisplayName, provider.MarketCode, provider.Status, provider.CredentialsKind)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&capabilities, "capability", nil, "Required capability, repeatable")
	cmd.Flags().BoolVar(&includeTest, "include-test", false, "Include test providers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

type providerView struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"displayName"`
	Market          string   `json:"market"`
	Status          string   `json:"status"`
	CredentialsType string   `json:"credentialsType"`
	Capabilities    []string `json:"capabilities,omitempty"`
	Image           string   `json:"image,omitempty"`
}

func newProviderView(provider core.Provider) providerView {
	view := providerView{
		Name:            provider.ID,
		DisplayName:     provider.DisplayName,
		Market:          provider.MarketCode,
		Status:          string(provider.Status),
		CredentialsType: string(provider.CredentialsKind),
	}
	for _, capability := range provider.Capabilities {
		view.Capabilities = append(view.Capabilities, string(capability))
	}
	if provider.ImageURL != nil {
		view.Image = provider.ImageURL.String()
	}
	return view
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}
