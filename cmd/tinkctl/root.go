package main

import (
	"context"
	"io"
	"os"

	"github.com/goliatone/go-tink/core"
	"github.com/spf13/cobra"
)

func newRootCommand(out io.Writer) *cobra.Command {
	return newRootCommandWithApp(&app{out: out, logs: os.Stderr})
}

func newRootCommandWithApp(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tinkctl",
		Short:         "Manage Tink credentials from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to a config file (yaml, json or toml)")
	flags.StringVar(&a.baseURL, "base-url", "", "Platform base URL, overrides config")
	flags.StringVar(&a.accessToken, "access-token", os.Getenv("TINK_ACCESS_TOKEN"), "Bearer token sent with every request")
	flags.StringVar(&a.storeDSN, "store", "", "Snapshot store DSN (sqlite file path or postgres:// URL)")
	flags.StringVar(&a.storeKey, "store-key", os.Getenv("TINK_STORE_KEY"), "Key used to seal stored credential payloads")
	flags.StringVar(&a.logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	flags.BoolVar(&a.prettyLogs, "pretty-logs", false, "Human readable logs")

	root.AddCommand(
		newCredentialsCommand(a),
		newProvidersCommand(a),
		newCallbackCommand(a),
	)
	return root
}

// runTask opens the service and awaits the task built by fn.
func runTask[T any](cmd *cobra.Command, a *app, fn func(ctx context.Context, svc *core.Service) *core.Task[T]) (T, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := a.open(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(ctx, svc).AwaitContext(ctx)
}
