package command

import (
	"context"
	"net/http"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

// CredentialsMutator is the write half of core.CredentialsAPI.
type CredentialsMutator interface {
	Create(ctx context.Context, req core.CreateCredentialsRequest, completion core.Completion[core.Credentials]) *core.Task[core.Credentials]
	Update(ctx context.Context, req core.UpdateCredentialsRequest, completion core.Completion[core.Credentials]) *core.Task[core.Credentials]
	Delete(ctx context.Context, id string, completion core.Completion[struct{}]) *core.Task[struct{}]
	Refresh(ctx context.Context, req core.RefreshCredentialsRequest, completion core.Completion[struct{}]) *core.Task[struct{}]
	Authenticate(ctx context.Context, id string, completion core.Completion[struct{}]) *core.Task[struct{}]
	AddSupplementalInformation(ctx context.Context, id string, information map[string]string, completion core.Completion[struct{}]) *core.Task[struct{}]
	CancelSupplementalInformation(ctx context.Context, id string, completion core.Completion[struct{}]) *core.Task[struct{}]
	Enable(ctx context.Context, id string, completion core.Completion[struct{}]) *core.Task[struct{}]
	Disable(ctx context.Context, id string, completion core.Completion[struct{}]) *core.Task[struct{}]
	ThirdPartyCallback(ctx context.Context, state string, parameters map[string]string, completion core.Completion[struct{}]) *core.Task[struct{}]
}

type CreateCredentialsCommand struct {
	service CredentialsMutator
}

func NewCreateCredentialsCommand(service CredentialsMutator) *CreateCredentialsCommand {
	return &CreateCredentialsCommand{service: service}
}

func (c *CreateCredentialsCommand) Execute(ctx context.Context, msg CreateCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	out, err := c.service.Create(ctx, msg.Request, nil).AwaitContext(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateCredentialsCommand struct {
	service CredentialsMutator
}

func NewUpdateCredentialsCommand(service CredentialsMutator) *UpdateCredentialsCommand {
	return &UpdateCredentialsCommand{service: service}
}

func (c *UpdateCredentialsCommand) Execute(ctx context.Context, msg UpdateCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	out, err := c.service.Update(ctx, msg.Request, nil).AwaitContext(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteCredentialsCommand struct {
	service CredentialsMutator
}

func NewDeleteCredentialsCommand(service CredentialsMutator) *DeleteCredentialsCommand {
	return &DeleteCredentialsCommand{service: service}
}

func (c *DeleteCredentialsCommand) Execute(ctx context.Context, msg DeleteCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	return awaitEmpty(ctx, c.service.Delete(ctx, msg.CredentialsID, nil))
}

type RefreshCredentialsCommand struct {
	service CredentialsMutator
}

func NewRefreshCredentialsCommand(service CredentialsMutator) *RefreshCredentialsCommand {
	return &RefreshCredentialsCommand{service: service}
}

func (c *RefreshCredentialsCommand) Execute(ctx context.Context, msg RefreshCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	return awaitEmpty(ctx, c.service.Refresh(ctx, msg.Request, nil))
}

type AuthenticateCredentialsCommand struct {
	service CredentialsMutator
}

func NewAuthenticateCredentialsCommand(service CredentialsMutator) *AuthenticateCredentialsCommand {
	return &AuthenticateCredentialsCommand{service: service}
}

func (c *AuthenticateCredentialsCommand) Execute(ctx context.Context, msg AuthenticateCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	return awaitEmpty(ctx, c.service.Authenticate(ctx, msg.CredentialsID, nil))
}

type AddSupplementalInformationCommand struct {
	service CredentialsMutator
}

func NewAddSupplementalInformationCommand(service CredentialsMutator) *AddSupplementalInformationCommand {
	return &AddSupplementalInformationCommand{service: service}
}

func (c *AddSupplementalInformationCommand) Execute(ctx context.Context, msg AddSupplementalInformationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	return awaitEmpty(ctx, c.service.AddSupplementalInformation(ctx, msg.CredentialsID, msg.Information, nil))
}

type CancelSupplementalInformationCommand struct {
	service CredentialsMutator
}

func NewCancelSupplementalInformationCommand(service CredentialsMutator) *CancelSupplementalInformationCommand {
	return &CancelSupplementalInformationCommand{service: service}
}

func (c *CancelSupplementalInformationCommand) Execute(ctx context.Context, msg CancelSupplementalInformationMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	return awaitEmpty(ctx, c.service.CancelSupplementalInformation(ctx, msg.CredentialsID, nil))
}

type EnableCredentialsCommand struct {
	service CredentialsMutator
}

func NewEnableCredentialsCommand(service CredentialsMutator) *EnableCredentialsCommand {
	return &EnableCredentialsCommand{service: service}
}

func (c *EnableCredentialsCommand) Execute(ctx context.Context, msg EnableCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	return awaitEmpty(ctx, c.service.Enable(ctx, msg.CredentialsID, nil))
}

type DisableCredentialsCommand struct {
	service CredentialsMutator
}

func NewDisableCredentialsCommand(service CredentialsMutator) *DisableCredentialsCommand {
	return &DisableCredentialsCommand{service: service}
}

func (c *DisableCredentialsCommand) Execute(ctx context.Context, msg DisableCredentialsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	return awaitEmpty(ctx, c.service.Disable(ctx, msg.CredentialsID, nil))
}

type RelayThirdPartyCallbackCommand struct {
	service CredentialsMutator
}

func NewRelayThirdPartyCallbackCommand(service CredentialsMutator) *RelayThirdPartyCallbackCommand {
	return &RelayThirdPartyCallbackCommand{service: service}
}

func (c *RelayThirdPartyCallbackCommand) Execute(ctx context.Context, msg RelayThirdPartyCallbackMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: credentials service is required")
	}
	return awaitEmpty(ctx, c.service.ThirdPartyCallback(ctx, msg.State, msg.Parameters, nil))
}

func awaitEmpty(ctx context.Context, task *core.Task[struct{}]) error {
	_, err := task.AwaitContext(ctx)
	return err
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}
