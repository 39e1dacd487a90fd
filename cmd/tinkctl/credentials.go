package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-tink/core"
	"github.com/spf13/cobra"
)

func newCredentialsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "credentials",
		Aliases: []string{"creds"},
		Short:   "Create, inspect and refresh credentials",
	}
	cmd.AddCommand(
		newCredentialsListCommand(a),
		newCredentialsGetCommand(a),
		newCredentialsCreateCommand(a),
		newCredentialsUpdateCommand(a),
		newCredentialsRefreshCommand(a),
		newCredentialsSupplementCommand(a),
		newCredentialsQRCodeCommand(a),
		newCredentialsPollCommand(a),
		newCredentialsHistoryCommand(a),
		newCredentialsActionCommand(a, "delete", "Delete credentials", (*core.CredentialsService).Delete),
		newCredentialsActionCommand(a, "authenticate", "Trigger a manual authentication", (*core.CredentialsService).Authenticate),
		newCredentialsActionCommand(a, "enable", "Enable credentials", (*core.CredentialsService).Enable),
		newCredentialsActionCommand(a, "disable", "Disable credentials", (*core.CredentialsService).Disable),
		newCredentialsActionCommand(a, "cancel-supplement", "Cancel a pending supplemental information request", (*core.CredentialsService).CancelSupplementalInformation),
	)
	return cmd
}

type credentialsAction func(*core.CredentialsService, context.Context, string, core.Completion[struct{}]) *core.Task[struct{}]

func newCredentialsActionCommand(a *app, use, short string, action credentialsAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runTask(cmd, a, func(ctx context.Context, svc *core.Service) *core.Task[struct{}] {
				return action(svc.Credentials(), ctx, args[0], nil)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s: ok\n", use, args[0])
			return nil
		},
	}
}

func newCredentialsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List credentials, grouped by kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			credentials, err := runTask(cmd, a, func(ctx context.Context, svc *core.Service) *core.Task[[]core.Credentials] {
				return svc.Credentials().List(ctx, nil)
			})
			if err != nil {
				return err
			}
			out := make([]core.RESTCredentials, 0, len(credentials))
			for _, item := range core.SortCredentialsByKind(credentials) {
				out = append(out, core.RESTFromCredentials(item))
			}
			return a.printJSON(out)
		},
	}
}

func newCredentialsGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one credentials resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			credentials, err := runTask(cmd, a, func(ctx context.Context, svc *core.Service) *core.Task[core.Credentials] {
				return svc.Credentials().Get(ctx, args[0], nil)
			})
			if err != nil {
				return err
			}
			return a.printJSON(core.RESTFromCredentials(credentials))
		},
	}
}

func newCredentialsCreateCommand(a *app) *cobra.Command {
	var (
		req   core.CreateCredentialsRequest
		items []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create credentials for a provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := core.ParseRefreshableItems(items)
			if err != nil {
				return err
			}
			req.RefreshableItems = parsed
			credentials, err := runTask(cmd, a, func(ctx context.Context, svc *core.Service) *core.Task[core.Credentials] {
				return svc.Credentials().Create(ctx, req, nil)
			})
			if err != nil {
				return err
			}
			return a.printJSON(core.RESTFromCredentials(credentials))
		},
	}
	cmd.Flags().StringVar(&req.ProviderID, "provider", "", "Provider name")
	cmd.Flags().StringToStringVar(&req.Fields, "field", nil, "Credential field as key=value, repeatable")
	cmd.Flags().StringSliceVar(&items, "items", nil, "Refreshable items, defaults to all")
	cmd.Flags().StringVar(&req.AppURI, "app-uri", "", "App URI for third-party authentication")
	cmd.Flags().StringVar(&req.CallbackURI, "callback-uri", "", "Callback URI for third-party authentication")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

func newCredentialsUpdateCommand(a *app) *cobra.Command {
	var req core.UpdateCredentialsRequest
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the fields of existing credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ID = args[0]
			credentials, err := runTask(cmd, a, func(ctx context.Context, svc *core.Service) *core.Task[core.Credentials] {
				return svc.Credentials().Update(ctx, req, nil)
			})
			if err != nil {
				return err
			}
			return a.printJSON(core.RESTFromCredentials(credentials))
		},
	}
	cmd.Flags().StringVar(&req.ProviderID, "provider", "", "Provider name")
	cmd.Flags().StringToStringVar(&req.Fields, "field", nil, "Credential field as key=value, repeatable")
	cmd.Flags().StringVar(&req.AppURI, "app-uri", "", "App URI for third-party authentication")
	cmd.Flags().StringVar(&req.CallbackURI, "callback-uri", "", "Callback URI for third-party authentication")
	return cmd
}

func newCredentialsRefreshCommand(a *app) *cobra.Command {
	var (
		req   core.RefreshCredentialsRequest
		items []string
	)
	cmd := &cobra.Command{
		Use:   "refresh <id>",
		Short: "Refresh credentials data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := core.ParseRefreshableItems(items)
			if err != nil {
				return err
			}
			req.ID = args[0]
			req.RefreshableItems = parsed
			if _, err := runTask(cmd, a, func(ctx context.Context, svc *core.Service) *core.Task[struct{}] {
				return svc.Credentials().Refresh(ctx, req, nil)
			}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "refresh %s: ok\n", req.ID)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&items, "items", nil, "Refreshable items, defaults to all")
	cmd.Flags().BoolVar(&req.Authenticate, "authenticate", false, "Force a fresh authentication")
	cmd.Flags().BoolVar(&req.OptIn, "opt-in", false, "Send the opt-in flag")
	return cmd
}

func newCredentialsSupplementCommand(a *app) *cobra.Command {
	var information map[string]string
	cmd := &cobra.Command{
		Use:   "supplement <id>",
		Short: "Answer a supplemental information request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := runTask(cmd, a, func(ctx context.Context, svc *core.Service) *core.Task[struct{}] {
				return svc.Credentials().AddSupplementalInformation(ctx, args[0], information, nil)
			}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "supplement %s: ok\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&information, "field", nil, "Supplemental field as key=value, repeatable")
	return cmd
}

func newCredentialsQRCodeCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "qr <id>",
		Short: "Download the authentication QR code as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := runTask(cmd, a, func(ctx context.Context, svc *core.Service) *core.Task[[]byte] {
				return svc.Credentials().QRCode(ctx, args[0], nil)
			})
			if err != nil {
				return err
			}
			if strings.TrimSpace(output) == "" || output == "-" {
				_, err = a.out.Write(image)
				return err
			}
			return os.WriteFile(output, image, 0o600)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the image to a file instead of stdout")
	return cmd
}

func newCredentialsPollCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "poll <id>",
		Short: "Follow credentials until the status settles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			credentials, err := runTask(cmd, a, func(ctx context.Context, svc *core.Service) *core.Task[core.Credentials] {
				return svc.StatusPoller().Poll(ctx, args[0], func(update core.Credentials) {
					fmt.Fprintf(a.out, "%s %s\n", update.ID, update.Status)
				}, nil)
			})
			if err != nil {
				return err
			}
			return a.printJSON(core.RESTFromCredentials(credentials))
		},
	}
}

type snapshotView struct {
	ID            string `json:"id"`
	CredentialsID string `json:"credentialsId"`
	ProviderID    string `json:"providerName"`
	Status        string `json:"status"`
	StatusPayload string `json:"statusPayload,omitempty"`
	ObservedAt    string `json:"observedAt"`
}

func newCredentialsHistoryCommand(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show recorded status transitions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(a.storeDSN) == "" {
				return fmt.Errorf("history needs --store")
			}
			store, err := a.openStore(cmd.Context(), a.storeDSN)
			if err != nil {
				return err
			}
			snapshots, err := store.History(cmd.Context(), core.CredentialsHistoryFilter{CredentialsID: args[0], Limit: limit})
			if err != nil {
				return err
			}
			views := make([]snapshotView, 0, len(snapshots))
			for _, snapshot := range snapshots {
				views = append(views, snapshotView{
					ID:            snapshot.ID,
					CredentialsID: snapshot.CredentialsID,
					ProviderID:    snapshot.ProviderID,
					Status:        string(snapshot.Status),
					StatusPayload: snapshot.StatusPayload,
					ObservedAt:    snapshot.ObservedAt.UTC().Format(time.RFC3339),
				})
			}
			return a.printJSON(views)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of snapshots, 0 for all")
	return cmd
}
