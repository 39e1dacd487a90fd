package transport

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

// KindGRPC names the platform's gRPC surface, which this module does not
// implement.
const KindGRPC = "grpc"

// UnsupportedAdapter keeps a transport kind resolvable while failing every
// call with a stable error.
type UnsupportedAdapter struct {
	kind   string
	reason string
}

func NewUnsupportedAdapter(kind string, reason string) *UnsupportedAdapter {
	return &UnsupportedAdapter{
		kind:   strings.TrimSpace(strings.ToLower(kind)),
		reason: strings.TrimSpace(reason),
	}
}

func (a *UnsupportedAdapter) Kind() string {
	if a == nil {
		return ""
	}
	return a.kind
}

func (a *UnsupportedAdapter) Do(_ context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil {
		return core.TransportResponse{}, transportError(
			"transport: adapter is nil",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			nil,
		)
	}
	message := "transport: " + a.kind + " adapter is not configured"
	if a.reason != "" {
		message += ": " + a.reason
	}
	return core.TransportResponse{}, transportError(
		message,
		goerrors.CategoryOperation,
		http.StatusNotImplemented,
		map[string]any{"adapter": a.kind, "method": req.Method},
	)
}

var _ core.TransportAdapter = (*UnsupportedAdapter)(nil)
