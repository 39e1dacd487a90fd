package gocommand

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goliatone/go-command"
	tinkcommand "github.com/goliatone/go-tink/command"
	"github.com/goliatone/go-tink/core"
	"github.com/goliatone/go-tink/query"
	"github.com/goliatone/go-tink/transport"
)

const credentialsBody = `{"id":"cred_1","providerName":"se-demo-bank","type":"PASSWORD","status":"UPDATED"}`

type seenRequests struct {
	mu    sync.Mutex
	paths []string
}

func (s *seenRequests) add(method string, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, method+" "+path)
}

func (s *seenRequests) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.paths) == 0 {
		return ""
	}
	return s.paths[len(s.paths)-1]
}

func newDispatchService(t *testing.T) (*core.Service, *seenRequests) {
	t.Helper()
	seen := &seenRequests{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.add(r.Method, r.URL.Path)
		switch r.URL.Path {
		case "/api/v1/credentials/cred_1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(credentialsBody))
		case "/api/v1/credentials/list":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"credentials":[` + credentialsBody + `]}`))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(server.Close)

	cfg := core.DefaultConfig()
	cfg.BaseURL = server.URL
	svc, err := core.NewService(cfg,
		core.WithTransport(transport.NewRESTAdapter(server.Client())),
		core.WithAccessToken("token_123"),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, seen
}

type fixedHistory struct {
	snapshots []core.CredentialsSnapshot
}

func (f fixedHistory) History(context.Context, core.CredentialsHistoryFilter) ([]core.CredentialsSnapshot, error) {
	return f.snapshots, nil
}

func TestRegisterCredentialsHandlers_DispatchesCommands(t *testing.T) {
	svc, seen := newDispatchService(t)
	adapter := NewRegistryAdapter(command.NewRegistry())

	subs, err := RegisterCredentialsHandlers(adapter, CredentialsHandlers{Credentials: svc.Credentials()})
	if err != nil {
		t.Fatalf("register handlers: %v", err)
	}
	t.Cleanup(subs.Unsubscribe)
	if len(subs) != 13 {
		t.Fatalf("expected 13 subscriptions without providers or history, got %d", len(subs))
	}

	ctx := context.Background()
	if err := Dispatch(ctx, tinkcommand.EnableCredentialsMessage{CredentialsID: "cred_1"}); err != nil {
		t.Fatalf("dispatch enable: %v", err)
	}
	if got := seen.last(); got != "POST /api/v1/credentials/cred_1/enable" {
		t.Fatalf("unexpected request %q", got)
	}

	if err := Dispatch(ctx, tinkcommand.DeleteCredentialsMessage{CredentialsID: "cred_1"}); err != nil {
		t.Fatalf("dispatch delete: %v", err)
	}
	if got := seen.last(); got != "DELETE /api/v1/credentials/cred_1" {
		t.Fatalf("unexpected request %q", got)
	}
}

func TestRegisterCredentialsHandlers_RunsQueries(t *testing.T) {
	svc, _ := newDispatchService(t)
	adapter := NewRegistryAdapter(command.NewRegistry())
	history := fixedHistory{snapshots: []core.CredentialsSnapshot{{CredentialsID: "cred_1", Status: core.CredentialsStatusUpdated}}}

	subs, err := RegisterCredentialsHandlers(adapter, CredentialsHandlers{
		Credentials: svc.Credentials(),
		Providers:   svc.Providers(),
		History:     history,
	})
	if err != nil {
		t.Fatalf("register handlers: %v", err)
	}
	t.Cleanup(subs.Unsubscribe)
	if len(subs) != 15 {
		t.Fatalf("expected 15 subscriptions, got %d", len(subs))
	}

	ctx := context.Background()
	credentials, err := Query[query.GetCredentialsMessage, core.Credentials](ctx, query.GetCredentialsMessage{CredentialsID: "cred_1"})
	if err != nil {
		t.Fatalf("query get: %v", err)
	}
	if credentials.ID != "cred_1" || credentials.Status != core.CredentialsStatusUpdated {
		t.Fatalf("unexpected credentials %+v", credentials)
	}

	snapshots, err := Query[query.CredentialsHistoryMessage, []core.CredentialsSnapshot](ctx, query.CredentialsHistoryMessage{
		Filter: core.CredentialsHistoryFilter{CredentialsID: "cred_1"},
	})
	if err != nil {
		t.Fatalf("query history: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(snapshots))
	}
}

func TestRegisterCredentialsHandlers_RequiresService(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	if _, err := RegisterCredentialsHandlers(adapter, CredentialsHandlers{}); err == nil {
		t.Fatalf("expected missing credentials service to fail")
	}
	if _, err := RegisterCredentialsHandlers(nil, CredentialsHandlers{Credentials: &core.CredentialsService{}}); err == nil {
		t.Fatalf("expected nil adapter to fail")
	}
}
