package tink

import (
	"github.com/goliatone/go-tink/core"
	"github.com/goliatone/go-tink/transport"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Credentials = core.Credentials
type CredentialsKind = core.CredentialsKind
type CredentialsStatus = core.CredentialsStatus
type CredentialsSnapshot = core.CredentialsSnapshot
type CredentialsHistoryFilter = core.CredentialsHistoryFilter
type Provider = core.Provider
type ProviderFilter = core.ProviderFilter
type RefreshableItem = core.RefreshableItem
type RefreshableItems = core.RefreshableItems

type CreateCredentialsRequest = core.CreateCredentialsRequest
type UpdateCredentialsRequest = core.UpdateCredentialsRequest
type RefreshCredentialsRequest = core.RefreshCredentialsRequest

type Task[T any] = core.Task[T]
type Result[T any] = core.Result[T]
type Completion[T any] = core.Completion[T]

var (
	WithLogger              = core.WithLogger
	WithLoggerProvider      = core.WithLoggerProvider
	WithMetricsRecorder     = core.WithMetricsRecorder
	WithErrorFactory        = core.WithErrorFactory
	WithErrorMapper         = core.WithErrorMapper
	WithConfigProvider      = core.WithConfigProvider
	WithOptionsResolver     = core.WithOptionsResolver
	WithTransport           = core.WithTransport
	WithTransportResolver   = core.WithTransportResolver
	WithAuthorizer          = core.WithAuthorizer
	WithAccessToken         = core.WithAccessToken
	WithCredentialsObserver = core.WithCredentialsObserver
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewService builds a service on the default transport registry. An explicit
// WithTransport or WithTransportResolver in opts takes precedence.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, core.WithTransportResolver(transport.NewDefaultRegistry()))
	all = append(all, opts...)
	return core.NewService(cfg, all...)
}
