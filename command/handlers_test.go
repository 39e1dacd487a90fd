package command

import (
	"context"
	"errors"
	"testing"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

type recordedCall struct {
	op          string
	id          string
	information map[string]string
	refresh     core.RefreshCredentialsRequest
}

type stubMutator struct {
	calls []recordedCall
	err   error
	out   core.Credentials
}

func (s *stubMutator) record(call recordedCall) *core.Task[struct{}] {
	s.calls = append(s.calls, call)
	return core.Go(context.Background(), func(context.Context) (struct{}, error) {
		return struct{}{}, s.err
	}, nil)
}

func (s *stubMutator) Create(ctx context.Context, req core.CreateCredentialsRequest, completion core.Completion[core.Credentials]) *core.Task[core.Credentials] {
	s.calls = append(s.calls, recordedCall{op: "create", id: req.ProviderID})
	return core.Go(ctx, func(context.Context) (core.Credentials, error) { return s.out, s.err }, completion)
}

func (s *stubMutator) Update(ctx context.Context, req core.UpdateCredentialsRequest, completion core.Completion[core.Credentials]) *core.Task[core.Credentials] {
	s.calls = append(s.calls, recordedCall{op: "update", id: req.ID})
	return core.Go(ctx, func(context.Context) (core.Credentials, error) { return s.out, s.err }, completion)
}

func (s *stubMutator) Delete(_ context.Context, id string, _ core.Completion[struct{}]) *core.Task[struct{}] {
	return s.record(recordedCall{op: "delete", id: id})
}

func (s *stubMutator) Refresh(_ context.Context, req core.RefreshCredentialsRequest, _ core.Completion[struct{}]) *core.Task[struct{}] {
	return s.record(recordedCall{op: "refresh", id: req.ID, refresh: req})
}

func (s *stubMutator) Authenticate(_ context.Context, id string, _ core.Completion[struct{}]) *core.Task[struct{}] {
	return s.record(recordedCall{op: "authenticate", id: id})
}

func (s *stubMutator) AddSupplementalInformation(_ context.Context, id string, information map[string]string, _ core.Completion[struct{}]) *core.Task[struct{}] {
	return s.record(recordedCall{op: "supplemental", id: id, information: information})
}

func (s *stubMutator) CancelSupplementalInformation(_ context.Context, id string, _ core.Completion[struct{}]) *core.Task[struct{}] {
	return s.record(recordedCall{op: "cancel_supplemental", id: id})
}

func (s *stubMutator) Enable(_ context.Context, id string, _ core.Completion[struct{}]) *core.Task[struct{}] {
	return s.record(recordedCall{op: "enable", id: id})
}

func (s *stubMutator) Disable(_ context.Context, id string, _ core.Completion[struct{}]) *core.Task[struct{}] {
	return s.record(recordedCall{op: "disable", id: id})
}

func (s *stubMutator) ThirdPartyCallback(_ context.Context, state string, parameters map[string]string, _ core.Completion[struct{}]) *core.Task[struct{}] {
	return s.record(recordedCall{op: "callback", id: state, information: parameters})
}

func TestCreateCredentialsCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	svc := &stubMutator{out: core.Credentials{ID: "cred_1", ProviderID: "se-demo-bank"}}
	cmd := NewCreateCredentialsCommand(svc)
	collector := gocmd.NewResult[core.Credentials]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, CreateCredentialsMessage{Request: core.CreateCredentialsRequest{ProviderID: "se-demo-bank"}})
	if err != nil {
		t.Fatalf("execute create: %v", err)
	}
	if len(svc.calls) != 1 || svc.calls[0].id != "se-demo-bank" {
		t.Fatalf("expected create invocation, got %#v", svc.calls)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.ID != "cred_1" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	svc := &stubMutator{}
	ctx := context.Background()
	refresh := core.RefreshCredentialsRequest{ID: "cred_1", Authenticate: true}

	steps := []struct {
		op  string
		run func() error
	}{
		{"delete", func() error { return NewDeleteCredentialsCommand(svc).Execute(ctx, DeleteCredentialsMessage{CredentialsID: "cred_1"}) }},
		{"refresh", func() error { return NewRefreshCredentialsCommand(svc).Execute(ctx, RefreshCredentialsMessage{Request: refresh}) }},
		{"authenticate", func() error {
			return NewAuthenticateCredentialsCommand(svc).Execute(ctx, AuthenticateCredentialsMessage{CredentialsID: "cred_1"})
		}},
		{"supplemental", func() error {
			return NewAddSupplementalInformationCommand(svc).Execute(ctx, AddSupplementalInformationMessage{
				CredentialsID: "cred_1",
				Information:   map[string]string{"otp": "123"},
			})
		}},
		{"cancel_supplemental", func() error {
			return NewCancelSupplementalInformationCommand(svc).Execute(ctx, CancelSupplementalInformationMessage{CredentialsID: "cred_1"})
		}},
		{"enable", func() error { return NewEnableCredentialsCommand(svc).Execute(ctx, EnableCredentialsMessage{CredentialsID: "cred_1"}) }},
		{"disable", func() error { return NewDisableCredentialsCommand(svc).Execute(ctx, DisableCredentialsMessage{CredentialsID: "cred_1"}) }},
	}
	for index, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.op, err)
		}
		if len(svc.calls) != index+1 || svc.calls[index].op != step.op || svc.calls[index].id != "cred_1" {
			t.Fatalf("%s: unexpected calls %#v", step.op, svc.calls)
		}
	}
	if !svc.calls[1].refresh.Authenticate {
		t.Fatalf("expected refresh request to be forwarded unchanged")
	}
	if svc.calls[3].information["otp"] != "123" {
		t.Fatalf("expected supplemental information to be forwarded")
	}
}

func TestRelayThirdPartyCallbackCommand_ForwardsStateAndParameters(t *testing.T) {
	svc := &stubMutator{}
	err := NewRelayThirdPartyCallbackCommand(svc).Execute(context.Background(), RelayThirdPartyCallbackMessage{
		State:      "state_1",
		Parameters: map[string]string{"code": "abc"},
	})
	if err != nil {
		t.Fatalf("execute relay: %v", err)
	}
	if svc.calls[0].id != "state_1" || svc.calls[0].information["code"] != "abc" {
		t.Fatalf("unexpected relay call %#v", svc.calls[0])
	}
}

func TestCommands_PropagateServiceErrors(t *testing.T) {
	sentinel := errors.New("platform unavailable")
	svc := &stubMutator{err: sentinel}
	err := NewEnableCredentialsCommand(svc).Execute(context.Background(), EnableCredentialsMessage{CredentialsID: "cred_1"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestMessages_ValidateReturnsRichError(t *testing.T) {
	messages := []interface{ Validate() error }{
		CreateCredentialsMessage{},
		UpdateCredentialsMessage{Request: core.UpdateCredentialsRequest{ID: "cred_1"}},
		DeleteCredentialsMessage{},
		RefreshCredentialsMessage{},
		AuthenticateCredentialsMessage{},
		AddSupplementalInformationMessage{CredentialsID: "cred_1"},
		CancelSupplementalInformationMessage{},
		EnableCredentialsMessage{},
		DisableCredentialsMessage{},
		RelayThirdPartyCallbackMessage{},
	}
	for _, msg := range messages {
		err := msg.Validate()
		if err == nil {
			t.Fatalf("%T: expected validation error", msg)
		}
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			t.Fatalf("%T: expected go-errors envelope, got %T", msg, err)
		}
		if rich.Category != goerrors.CategoryValidation {
			t.Fatalf("%T: expected validation category, got %q", msg, rich.Category)
		}
		if rich.TextCode != core.ServiceErrorBadInput {
			t.Fatalf("%T: expected %q text code, got %q", msg, core.ServiceErrorBadInput, rich.TextCode)
		}
	}
	if err := (CancelSupplementalInformationMessage{CredentialsID: "cred_1"}).Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
}

func TestCreateCredentialsCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *CreateCredentialsCommand
	err := cmd.Execute(context.Background(), CreateCredentialsMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}
