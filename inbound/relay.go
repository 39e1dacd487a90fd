package inbound

import (
	"context"
	"errors"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-tink/core"
)

// CallbackRelayer is satisfied by *core.CredentialsService.
type CallbackRelayer interface {
	ThirdPartyCallback(
		ctx context.Context,
		state string,
		parameters map[string]string,
		completion core.Completion[struct{}],
	) *core.Task[struct{}]
}

type Outcome struct {
	State   string
	Relayed bool
	Deduped bool
}

type Relay struct {
	callbacks CallbackRelayer
	claims    StateClaimStore
	claimTTL  time.Duration
	logger    glog.Logger
}

type RelayOption func(*Relay)

// WithClaimStore replaces the in-memory claim store. Pass nil to relay every
// redirect without deduplication.
func WithClaimStore(store StateClaimStore) RelayOption {
	return func(r *Relay) {
		r.claims = store
	}
}

func WithClaimTTL(ttl time.Duration) RelayOption {
	return func(r *Relay) {
		if ttl > 0 {
			r.claimTTL = ttl
		}
	}
}

func WithLogger(logger glog.Logger) RelayOption {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRelay(callbacks CallbackRelayer, opts ...RelayOption) (*Relay, error) {
	if callbacks == nil {
		return nil, inboundInternal("inbound: callback relayer is required", nil)
	}
	relay := &Relay{
		callbacks: callbacks,
		claims:    NewMemoryClaimStore(),
		claimTTL:  defaultClaimTTL,
		logger:    glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(relay)
		}
	}
	return relay, nil
}

// Dispatch forwards the redirect to the platform and waits for the answer.
func (r *Relay) Dispatch(ctx context.Context, redirect Redirect) (Outcome, error) {
	if r == nil || r.callbacks == nil {
		return Outcome{}, inboundInternal("inbound: relay is not configured", nil)
	}
	redirect.State = strings.TrimSpace(redirect.State)
	if redirect.State == "" {
		return Outcome{}, inboundBadInput("inbound: redirect state is required", nil)
	}
	outcome := Outcome{State: redirect.State}
	metadata := map[string]any{"parameters": parameterNames(redirect.Parameters)}

	claimID := ""
	if r.claims != nil {
		var accepted bool
		var err error
		claimID, accepted, err = r.claims.Claim(ctx, redirect.State, r.claimTTL)
		if err != nil {
			return outcome, err
		}
		if !accepted {
			outcome.Deduped = true
			r.logger.Debug("redirect already relayed", "parameters", metadata["parameters"])
			return outcome, nil
		}
	}

	_, err := r.callbacks.ThirdPartyCallback(ctx, redirect.State, redirect.Parameters, nil).AwaitContext(ctx)
	if err != nil {
		if claimID != "" {
			if releaseErr := r.claims.Release(ctx, claimID); releaseErr != nil {
				err = errors.Join(err, releaseErr)
			}
		}
		r.logger.Warn("redirect relay failed", "error", err)
		return outcome, relayError(err, metadata)
	}
	if claimID != "" {
		if err := r.claims.Complete(ctx, claimID); err != nil {
			return outcome, err
		}
	}
	outcome.Relayed = true
	r.logger.Info("redirect relayed", "parameters", metadata["parameters"])
	return outcome, nil
}
