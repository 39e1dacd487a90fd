package query

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

type stubCredentialsReader struct {
	credentials []core.Credentials
	image       []byte
	gotID       string
}

func (s *stubCredentialsReader) List(ctx context.Context, completion core.Completion[[]core.Credentials]) *core.Task[[]core.Credentials] {
	return core.Go(ctx, func(context.Context) ([]core.Credentials, error) { return s.credentials, nil }, completion)
}

func (s *stubCredentialsReader) Get(ctx context.Context, id string, completion core.Completion[core.Credentials]) *core.Task[core.Credentials] {
	s.gotID = id
	return core.Go(ctx, func(context.Context) (core.Credentials, error) {
		return core.Credentials{ID: id}, nil
	}, completion)
}

func (s *stubCredentialsReader) QRCode(ctx context.Context, id string, completion core.Completion[[]byte]) *core.Task[[]byte] {
	s.gotID = id
	return core.Go(ctx, func(context.Context) ([]byte, error) { return s.image, nil }, completion)
}

type stubHistoryReader struct {
	filter core.CredentialsHistoryFilter
}

func (s *stubHistoryReader) History(_ context.Context, filter core.CredentialsHistoryFilter) ([]core.CredentialsSnapshot, error) {
	s.filter = filter
	return []core.CredentialsSnapshot{{CredentialsID: filter.CredentialsID, Status: core.CredentialsStatusUpdated}}, nil
}

type stubProviderLister struct {
	filter core.ProviderFilter
}

func (s *stubProviderLister) List(ctx context.Context, filter core.ProviderFilter, completion core.Completion[[]core.Provider]) *core.Task[[]core.Provider] {
	s.filter = filter
	return core.Go(ctx, func(context.Context) ([]core.Provider, error) {
		return []core.Provider{{ID: "se-demo-bank"}}, nil
	}, completion)
}

func TestListCredentialsQuery_SortsByKind(t *testing.T) {
	reader := &stubCredentialsReader{credentials: []core.Credentials{
		{ID: "a", Kind: core.CredentialsKindPassword},
		{ID: "b", Kind: core.CredentialsKindMobileBankID},
	}}
	out, err := NewListCredentialsQuery(reader).Query(context.Background(), ListCredentialsMessage{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].ID != "b" {
		t.Fatalf("expected mobile bankid first, got %#v", out)
	}
}

func TestReadQueries_DelegateToReaders(t *testing.T) {
	ctx := context.Background()
	reader := &stubCredentialsReader{image: []byte{1, 2, 3}}

	credentials, err := NewGetCredentialsQuery(reader).Query(ctx, GetCredentialsMessage{CredentialsID: "cred_1"})
	if err != nil || credentials.ID != "cred_1" {
		t.Fatalf("unexpected get result %#v, %v", credentials, err)
	}

	image, err := NewCredentialsQRCodeQuery(reader).Query(ctx, CredentialsQRCodeMessage{CredentialsID: "cred_2"})
	if err != nil || len(image) != 3 || reader.gotID != "cred_2" {
		t.Fatalf("unexpected qr result %v, %v", image, err)
	}

	history := &stubHistoryReader{}
	snapshots, err := NewCredentialsHistoryQuery(history).Query(ctx, CredentialsHistoryMessage{
		Filter: core.CredentialsHistoryFilter{CredentialsID: "cred_1", Limit: 5},
	})
	if err != nil || len(snapshots) != 1 || history.filter.Limit != 5 {
		t.Fatalf("unexpected history result %#v, %v", snapshots, err)
	}

	lister := &stubProviderLister{}
	providers, err := NewListProvidersQuery(lister).Query(ctx, ListProvidersMessage{Filter: core.ProviderFilter{Market: "SE"}})
	if err != nil || len(providers) != 1 || lister.filter.Market != "SE" {
		t.Fatalf("unexpected providers result %#v, %v", providers, err)
	}
}

func TestMessages_ValidateReturnsRichError(t *testing.T) {
	messages := []interface{ Validate() error }{
		GetCredentialsMessage{},
		CredentialsQRCodeMessage{},
		CredentialsHistoryMessage{},
		CredentialsHistoryMessage{Filter: core.CredentialsHistoryFilter{CredentialsID: "cred_1", Limit: -1}},
		ListProvidersMessage{Filter: core.ProviderFilter{Market: "SWE"}},
	}
	for _, msg := range messages {
		err := msg.Validate()
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			t.Fatalf("%T: expected go-errors envelope, got %T", msg, err)
		}
		if rich.TextCode != core.ServiceErrorBadInput {
			t.Fatalf("%T: expected %q text code, got %q", msg, core.ServiceErrorBadInput, rich.TextCode)
		}
	}
}

func TestQueries_NilReaderReturnsRichError(t *testing.T) {
	var q *GetCredentialsQuery
	_, err := q.Query(context.Background(), GetCredentialsMessage{CredentialsID: "cred_1"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal dependency error, got %v", err)
	}
}
