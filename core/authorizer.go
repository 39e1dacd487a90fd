package core

import (
	"context"
	"fmt"
	"strings"
)

type BearerTokenAuthorizer struct {
	Token string
}

func (a BearerTokenAuthorizer) Authorize(_ context.Context, req *TransportRequest) error {
	if req == nil {
		return fmt.Errorf("core: transport request is required")
	}
	token := strings.TrimSpace(a.Token)
	if token == "" {
		return fmt.Errorf("core: access token is required for bearer authorization")
	}
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	req.Headers["Authorization"] = "Bearer " + token
	return nil
}

// TokenSourceAuthorizer resolves the token per request, for hosts that
// refresh access tokens out of band.
type TokenSourceAuthorizer struct {
	Source func(ctx context.Context) (string, error)
}

func (a TokenSourceAuthorizer) Authorize(ctx context.Context, req *TransportRequest) error {
	if a.Source == nil {
		return fmt.Errorf("core: token source is required")
	}
	token, err := a.Source(ctx)
	if err != nil {
		return fmt.Errorf("core: resolve access token: %w", err)
	}
	return BearerTokenAuthorizer{Token: token}.Authorize(ctx, req)
}
