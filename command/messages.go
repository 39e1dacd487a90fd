package command

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

const (
	TypeCreateCredentials             = "tink.command.credentials.create"
	TypeUpdateCredentials             = "tink.command.credentials.update"
	TypeDeleteCredentials             = "tink.command.credentials.delete"
	TypeRefreshCredentials            = "tink.command.credentials.refresh"
	TypeAuthenticateCredentials       = "tink.command.credentials.authenticate"
	TypeAddSupplementalInformation    = "tink.command.credentials.supplemental_information.add"
	TypeCancelSupplementalInformation = "tink.command.credentials.supplemental_information.cancel"
	TypeEnableCredentials             = "tink.command.credentials.enable"
	TypeDisableCredentials            = "tink.command.credentials.disable"
	TypeRelayThirdPartyCallback       = "tink.command.credentials.third_party_callback"
)

type CreateCredentialsMessage struct {
	Request core.CreateCredentialsRequest
}

func (CreateCredentialsMessage) Type() string { return TypeCreateCredentials }

func (m CreateCredentialsMessage) Validate() error {
	return requireField("provider_id", m.Request.ProviderID)
}

type UpdateCredentialsMessage struct {
	Request core.UpdateCredentialsRequest
}

func (UpdateCredentialsMessage) Type() string { return TypeUpdateCredentials }

func (m UpdateCredentialsMessage) Validate() error {
	if err := requireField("credentials_id", m.Request.ID); err != nil {
		return err
	}
	return requireField("provider_id", m.Request.ProviderID)
}

type DeleteCredentialsMessage struct {
	CredentialsID string
}

func (DeleteCredentialsMessage) Type() string { return TypeDeleteCredentials }

func (m DeleteCredentialsMessage) Validate() error {
	return requireField("credentials_id", m.CredentialsID)
}

type RefreshCredentialsMessage struct {
	Request core.RefreshCredentialsRequest
}

func (RefreshCredentialsMessage) Type() string { return TypeRefreshCredentials }

func (m RefreshCredentialsMessage) Validate() error {
	return requireField("credentials_id", m.Request.ID)
}

type AuthenticateCredentialsMessage struct {
	CredentialsID string
}

func (AuthenticateCredentialsMessage) Type() string { return TypeAuthenticateCredentials }

func (m AuthenticateCredentialsMessage) Validate() error {
	return requireField("credentials_id", m.CredentialsID)
}

type AddSupplementalInformationMessage struct {
	CredentialsID string
	Information   map[string]string
}

func (AddSupplementalInformationMessage) Type() string { return TypeAddSupplementalInformation }

func (m AddSupplementalInformationMessage) Validate() error {
	if err := requireField("credentials_id", m.CredentialsID); err != nil {
		return err
	}
	if len(m.Information) == 0 {
		return commandValidationError("information", "at least one field is required; use cancel to abort")
	}
	return nil
}

type CancelSupplementalInformationMessage struct {
	CredentialsID string
}

func (CancelSupplementalInformationMessage) Type() string { return TypeCancelSupplementalInformation }

func (m CancelSupplementalInformationMessage) Validate() error {
	return requireField("credentials_id", m.CredentialsID)
}

type EnableCredentialsMessage struct {
	CredentialsID string
}

func (EnableCredentialsMessage) Type() string { return TypeEnableCredentials }

func (m EnableCredentialsMessage) Validate() error {
	return requireField("credentials_id", m.CredentialsID)
}

type DisableCredentialsMessage struct {
	CredentialsID string
}

func (DisableCredentialsMessage) Type() string { return TypeDisableCredentials }

func (m DisableCredentialsMessage) Validate() error {
	return requireField("credentials_id", m.CredentialsID)
}

type RelayThirdPartyCallbackMessage struct {
	State      string
	Parameters map[string]string
}

func (RelayThirdPartyCallbackMessage) Type() string { return TypeRelayThirdPartyCallback }

func (m RelayThirdPartyCallbackMessage) Validate() error {
	return requireField("state", m.State)
}

func requireField(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return commandValidationError(field, "is required")
	}
	return nil
}

func commandValidationError(field string, message string) error {
	return goerrors.NewValidation("command: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}
