package query

import (
	"context"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

type CredentialsReader interface {
	List(ctx context.Context, completion core.Completion[[]core.Credentials]) *core.Task[[]core.Credentials]
	Get(ctx context.Context, id string, completion core.Completion[core.Credentials]) *core.Task[core.Credentials]
	QRCode(ctx context.Context, id string, completion core.Completion[[]byte]) *core.Task[[]byte]
}

type CredentialsHistoryReader interface {
	History(ctx context.Context, filter core.CredentialsHistoryFilter) ([]core.CredentialsSnapshot, error)
}

type ListCredentialsQuery struct {
	reader CredentialsReader
}

func NewListCredentialsQuery(reader CredentialsReader) *ListCredentialsQuery {
	return &ListCredentialsQuery{reader: reader}
}

// Query returns the credentials sorted by kind.
func (q *ListCredentialsQuery) Query(ctx context.Context, _ ListCredentialsMessage) ([]core.Credentials, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: credentials reader is required")
	}
	credentials, err := q.reader.List(ctx, nil).AwaitContext(ctx)
	if err != nil {
		return nil, err
	}
	return core.SortCredentialsByKind(credentials), nil
}

type GetCredentialsQuery struct {
	reader CredentialsReader
}

func NewGetCredentialsQuery(reader CredentialsReader) *GetCredentialsQuery {
	return &GetCredentialsQuery{reader: reader}
}

func (q *GetCredentialsQuery) Query(ctx context.Context, msg GetCredentialsMessage) (core.Credentials, error) {
	if q == nil || q.reader == nil {
		return core.Credentials{}, queryDependencyError("query: credentials reader is required")
	}
	return q.reader.Get(ctx, msg.CredentialsID, nil).AwaitContext(ctx)
}

type CredentialsQRCodeQuery struct {
	reader CredentialsReader
}

func NewCredentialsQRCodeQuery(reader CredentialsReader) *CredentialsQRCodeQuery {
	return &CredentialsQRCodeQuery{reader: reader}
}

func (q *CredentialsQRCodeQuery) Query(ctx context.Context, msg CredentialsQRCodeMessage) ([]byte, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: credentials reader is required")
	}
	return q.reader.QRCode(ctx, msg.CredentialsID, nil).AwaitContext(ctx)
}

type CredentialsHistoryQuery struct {
	reader CredentialsHistoryReader
}

func NewCredentialsHistoryQuery(reader CredentialsHistoryReader) *CredentialsHistoryQuery {
	return &CredentialsHistoryQuery{reader: reader}
}

func (q *CredentialsHistoryQuery) Query(ctx context.Context, msg CredentialsHistoryMessage) ([]core.CredentialsSnapshot, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: credentials history reader is required")
	}
	return q.reader.History(ctx, msg.Filter)
}

type ListProvidersQuery struct {
	lister core.ProviderLister
}

func NewListProvidersQuery(lister core.ProviderLister) *ListProvidersQuery {
	return &ListProvidersQuery{lister: lister}
}

func (q *ListProvidersQuery) Query(ctx context.Context, msg ListProvidersMessage) ([]core.Provider, error) {
	if q == nil || q.lister == nil {
		return nil, queryDependencyError("query: provider lister is required")
	}
	return q.lister.List(ctx, msg.Filter, nil).AwaitContext(ctx)
}

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}
