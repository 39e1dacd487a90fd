package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-tink/core"
)

var (
	_ gocmd.Querier[ListCredentialsMessage, []core.Credentials]            = (*ListCredentialsQuery)(nil)
	_ gocmd.Querier[GetCredentialsMessage, core.Credentials]               = (*GetCredentialsQuery)(nil)
	_ gocmd.Querier[CredentialsQRCodeMessage, []byte]                      = (*CredentialsQRCodeQuery)(nil)
	_ gocmd.Querier[CredentialsHistoryMessage, []core.CredentialsSnapshot] = (*CredentialsHistoryQuery)(nil)
	_ gocmd.Querier[ListProvidersMessage, []core.Provider]                 = (*ListProvidersQuery)(nil)

	_ CredentialsReader = (*core.CredentialsService)(nil)
)
