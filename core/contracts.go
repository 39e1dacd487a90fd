package core

import (
	"context"
	"net/url"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                url.Values
	Body                 []byte
	Metadata             map[string]any
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// TransportAdapter executes one request. Implementations must honor ctx
// cancellation so a cancelled Task abandons the in-flight call.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type TransportResolver interface {
	Build(kind string, config map[string]any) (TransportAdapter, error)
}

// RequestAuthorizer decorates outgoing requests with credentials for the
// platform API, usually a bearer access token.
type RequestAuthorizer interface {
	Authorize(ctx context.Context, req *TransportRequest) error
}

// CredentialsObserver receives every credentials value the service decoded
// from a successful response.
type CredentialsObserver interface {
	ObserveCredentials(ctx context.Context, credentials []Credentials) error
}

type CredentialsAPI interface {
	List(ctx context.Context, completion Completion[[]Credentials]) *Task[[]Credentials]
	Get(ctx context.Context, id string, completion Completion[Credentials]) *Task[Credentials]
	Create(ctx context.Context, req CreateCredentialsRequest, completion Completion[Credentials]) *Task[Credentials]
	Update(ctx context.Context, req UpdateCredentialsRequest, completion Completion[Credentials]) *Task[Credentials]
	Delete(ctx context.Context, id string, completion Completion[struct{}]) *Task[struct{}]
	Refresh(ctx context.Context, req RefreshCredentialsRequest, completion Completion[struct{}]) *Task[struct{}]
	Authenticate(ctx context.Context, id string, completion Completion[struct{}]) *Task[struct{}]
	AddSupplementalInformation(ctx context.Context, id string, information map[string]string, completion Completion[struct{}]) *Task[struct{}]
	CancelSupplementalInformation(ctx context.Context, id string, completion Completion[struct{}]) *Task[struct{}]
	Enable(ctx context.Context, id string, completion Completion[struct{}]) *Task[struct{}]
	Disable(ctx context.Context, id string, completion Completion[struct{}]) *Task[struct{}]
	ThirdPartyCallback(ctx context.Context, state string, parameters map[string]string, completion Completion[struct{}]) *Task[struct{}]
	QRCode(ctx context.Context, id string, completion Completion[[]byte]) *Task[[]byte]
}

type ProviderLister interface {
	List(ctx context.Context, filter ProviderFilter, completion Completion[[]Provider]) *Task[[]Provider]
}
