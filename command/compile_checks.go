package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-tink/core"
)

var (
	_ gocmd.Commander[CreateCredentialsMessage]             = (*CreateCredentialsCommand)(nil)
	_ gocmd.Commander[UpdateCredentialsMessage]             = (*UpdateCredentialsCommand)(nil)
	_ gocmd.Commander[DeleteCredentialsMessage]             = (*DeleteCredentialsCommand)(nil)
	_ gocmd.Commander[RefreshCredentialsMessage]            = (*RefreshCredentialsCommand)(nil)
	_ gocmd.Commander[AuthenticateCredentialsMessage]       = (*AuthenticateCredentialsCommand)(nil)
	_ gocmd.Commander[AddSupplementalInformationMessage]    = (*AddSupplementalInformationCommand)(nil)
	_ gocmd.Commander[CancelSupplementalInformationMessage] = (*CancelSupplementalInformationCommand)(nil)
	_ gocmd.Commander[EnableCredentialsMessage]             = (*EnableCredentialsCommand)(nil)
	_ gocmd.Commander[DisableCredentialsMessage]            = (*DisableCredentialsCommand)(nil)
	_ gocmd.Commander[RelayThirdPartyCallbackMessage]       = (*RelayThirdPartyCallbackCommand)(nil)

	_ CredentialsMutator = (*core.CredentialsService)(nil)
)
