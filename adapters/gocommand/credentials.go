package gocommand

import (
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	goerrors "github.com/goliatone/go-errors"
	tinkcommand "github.com/goliatone/go-tink/command"
	"github.com/goliatone/go-tink/core"
	"github.com/goliatone/go-tink/query"
)

// CredentialsService is the subset of core.CredentialsService the dispatcher
// handlers need.
type CredentialsService interface {
	tinkcommand.CredentialsMutator
	query.CredentialsReader
}

type CredentialsHandlers struct {
	Credentials CredentialsService
	Providers   core.ProviderLister
	// History is optional; without it the history query is not registered.
	History query.CredentialsHistoryReader
}

// Subscriptions tracks dispatcher subscriptions so callers can detach every
// handler at once.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// RegisterCredentialsHandlers registers one command per credentials mutation
// and one query per read. On error every subscription made so far is removed.
func RegisterCredentialsHandlers(
	adapter *RegistryAdapter,
	handlers CredentialsHandlers,
	runnerOpts ...runner.Option,
) (subs Subscriptions, err error) {
	if handlers.Credentials == nil {
		return nil, adapterError("gocommand: credentials service is required", goerrors.CategoryBadInput)
	}
	defer func() {
		if err != nil {
			subs.Unsubscribe()
			subs = nil
		}
	}()

	svc := handlers.Credentials
	add := func(subscription commanddispatcher.Subscription, registerErr error) {
		if err != nil {
			return
		}
		if registerErr != nil {
			err = registerErr
			return
		}
		subs = append(subs, subscription)
	}

	add(RegisterAndSubscribe(adapter, tinkcommand.NewCreateCredentialsCommand(svc), runnerOpts...))
	add(RegisterAndSubscribe(adapter, tinkcommand.NewUpdateCredentialsCommand(svc), runnerOpts...))
	add(RegisterAndSubscribe(adapter, tinkcommand.NewDeleteCredentialsCommand(svc), runnerOpts...))
	add(RegisterAndSubscribe(adapter, tinkcommand.NewRefreshCredentialsCommand(svc), runnerOpts...))
	add(RegisterAndSubscribe(adapter, tinkcommand.NewAuthenticateCredentialsCommand(svc), runnerOpts...))
	add(RegisterAndSubscribe(adapter, tinkcommand.NewAddSupplementalInformationCommand(svc), runnerOpts...))
	add(RegisterAndSubscribe(adapter, tinkcommand.NewCancelSupplementalInformationCommand(svc), runnerOpts...))
	add(RegisterAndSubscribe(adapter, tinkcommand.NewEnableCredentialsCommand(svc), runnerOpts...))
	add(RegisterAndSubscribe(adapter, tinkcommand.NewDisableCredentialsCommand(svc), runnerOpts...))
	add(RegisterAndSubscribe(adapter, tinkcommand.NewRelayThirdPartyCallbackCommand(svc), runnerOpts...))

	add(RegisterAndSubscribeQuery(adapter, query.NewListCredentialsQuery(svc), runnerOpts...))
	add(RegisterAndSubscribeQuery(adapter, query.NewGetCredentialsQuery(svc), runnerOpts...))
	add(RegisterAndSubscribeQuery(adapter, query.NewCredentialsQRCodeQuery(svc), runnerOpts...))
	if handlers.Providers != nil {
		add(RegisterAndSubscribeQuery(adapter, query.NewListProvidersQuery(handlers.Providers), runnerOpts...))
	}
	if handlers.History != nil {
		add(RegisterAndSubscribeQuery(adapter, query.NewCredentialsHistoryQuery(handlers.History), runnerOpts...))
	}
	return subs, err
}

var _ CredentialsService = (*core.CredentialsService)(nil)
