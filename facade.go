package tink

import (
	"fmt"

	tinkcommand "github.com/goliatone/go-tink/command"
	"github.com/goliatone/go-tink/core"
	tinkquery "github.com/goliatone/go-tink/query"
)

type CredentialsService interface {
	tinkcommand.CredentialsMutator
	tinkquery.CredentialsReader
}

type Commands struct {
	Create                        *tinkcommand.CreateCredentialsCommand
	Update                        *tinkcommand.UpdateCredentialsCommand
	Delete                        *tinkcommand.DeleteCredentialsCommand
	Refresh                       *tinkcommand.RefreshCredentialsCommand
	Authenticate                  *tinkcommand.AuthenticateCredentialsCommand
	AddSupplementalInformation    *tinkcommand.AddSupplementalInformationCommand
	CancelSupplementalInformation *tinkcommand.CancelSupplementalInformationCommand
	Enable                        *tinkcommand.EnableCredentialsCommand
	Disable                       *tinkcommand.DisableCredentialsCommand
	RelayThirdPartyCallback       *tinkcommand.RelayThirdPartyCallbackCommand
}

// Queries holds the read handlers. History and ListProviders stay nil unless
// a history reader or provider lister was supplied or could be resolved.
type Queries struct {
	List          *tinkquery.ListCredentialsQuery
	Get           *tinkquery.GetCredentialsQuery
	QRCode        *tinkquery.CredentialsQRCodeQuery
	History       *tinkquery.CredentialsHistoryQuery
	ListProviders *tinkquery.ListProvidersQuery
}

type Facade struct {
	credentials CredentialsService
	commands    Commands
	queries     Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	historyReader  tinkquery.CredentialsHistoryReader
	providerLister core.ProviderLister
}

func WithHistoryReader(reader tinkquery.CredentialsHistoryReader) FacadeOption {
	return func(options *facadeOptions) {
		options.historyReader = reader
	}
}

// WithProviderLister overrides the lister, e.g. with a cached catalog.
func WithProviderLister(lister core.ProviderLister) FacadeOption {
	return func(options *facadeOptions) {
		options.providerLister = lister
	}
}

func NewFacade(credentials CredentialsService, opts ...FacadeOption) (*Facade, error) {
	if credentials == nil {
		return nil, fmt.Errorf("tink: credentials service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{credentials: credentials}
	facade.commands = Commands{
		Create:                        tinkcommand.NewCreateCredentialsCommand(credentials),
		Update:                        tinkcommand.NewUpdateCredentialsCommand(credentials),
		Delete:                        tinkcommand.NewDeleteCredentialsCommand(credentials),
		Refresh:                       tinkcommand.NewRefreshCredentialsCommand(credentials),
		Authenticate:                  tinkcommand.NewAuthenticateCredentialsCommand(credentials),
		AddSupplementalInformation:    tinkcommand.NewAddSupplementalInformationCommand(credentials),
		CancelSupplementalInformation: tinkcommand.NewCancelSupplementalInformationCommand(credentials),
		Enable:                        tinkcommand.NewEnableCredentialsCommand(credentials),
		Disable:                       tinkcommand.NewDisableCredentialsCommand(credentials),
		RelayThirdPartyCallback:       tinkcommand.NewRelayThirdPartyCallbackCommand(credentials),
	}
	facade.queries = Queries{
		List:   tinkquery.NewListCredentialsQuery(credentials),
		Get:    tinkquery.NewGetCredentialsQuery(credentials),
		QRCode: tinkquery.NewCredentialsQRCodeQuery(credentials),
	}
	if reader := cfg.historyReader; reader != nil {
		facade.queries.History = tinkquery.NewCredentialsHistoryQuery(reader)
	}
	if lister := cfg.providerLister; lister != nil {
		facade.queries.ListProviders = tinkquery.NewListProvidersQuery(lister)
	}
	return facade, nil
}

// NewServiceFacade wires a facade over svc. The history query is resolved
// from the credentials observer when it can also read history.
func NewServiceFacade(svc *Service, opts ...FacadeOption) (*Facade, error) {
	if svc == nil {
		return nil, fmt.Errorf("tink: service is required")
	}
	base := []FacadeOption{WithProviderLister(svc.Providers())}
	if reader, ok := svc.Dependencies().CredentialsObserver.(tinkquery.CredentialsHistoryReader); ok {
		base = append(base, WithHistoryReader(reader))
	}
	return NewFacade(svc.Credentials(), append(base, opts...)...)
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Credentials() CredentialsService {
	if f == nil {
		return nil
	}
	return f.credentials
}
