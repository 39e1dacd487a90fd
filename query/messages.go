package query

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

const (
	TypeListCredentials    = "tink.query.credentials.list"
	TypeGetCredentials     = "tink.query.credentials.get"
	TypeCredentialsQRCode  = "tink.query.credentials.qr_code"
	TypeCredentialsHistory = "tink.query.credentials.history"
	TypeListProviders      = "tink.query.providers.list"
)

type ListCredentialsMessage struct{}

func (ListCredentialsMessage) Type() string { return TypeListCredentials }

type GetCredentialsMessage struct {
	CredentialsID string
}

func (GetCredentialsMessage) Type() string { return TypeGetCredentials }

func (m GetCredentialsMessage) Validate() error {
	return requireField("credentials_id", m.CredentialsID)
}

type CredentialsQRCodeMessage struct {
	CredentialsID string
}

func (CredentialsQRCodeMessage) Type() string { return TypeCredentialsQRCode }

func (m CredentialsQRCodeMessage) Validate() error {
	return requireField("credentials_id", m.CredentialsID)
}

type CredentialsHistoryMessage struct {
	Filter core.CredentialsHistoryFilter
}

func (CredentialsHistoryMessage) Type() string { return TypeCredentialsHistory }

func (m CredentialsHistoryMessage) Validate() error {
	if err := requireField("credentials_id", m.Filter.CredentialsID); err != nil {
		return err
	}
	if m.Filter.Limit < 0 {
		return queryValidationError("limit", "must be >= 0")
	}
	return nil
}

type ListProvidersMessage struct {
	Filter core.ProviderFilter
}

func (ListProvidersMessage) Type() string { return TypeListProviders }

func (m ListProvidersMessage) Validate() error {
	market := strings.TrimSpace(m.Filter.Market)
	if market != "" && len(market) != 2 {
		return queryValidationError("market", "must be a two-letter market code")
	}
	return nil
}

func requireField(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return queryValidationError(field, "is required")
	}
	return nil
}

func queryValidationError(field string, message string) error {
	return goerrors.NewValidation("query: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}
