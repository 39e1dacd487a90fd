package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type credentialsGetter interface {
	Get(ctx context.Context, id string, completion Completion[Credentials]) *Task[Credentials]
}

// StatusPoller follows a credentials resource until the platform reports a
// status outside created, authenticating and updating.
type StatusPoller struct {
	credentials credentialsGetter
	interval    time.Duration
	maxAttempts int
	instr       *instrumentation
}

func NewStatusPoller(credentials credentialsGetter, interval time.Duration, maxAttempts int) *StatusPoller {
	if interval <= 0 {
		interval = time.Duration(defaultPollingIntervalMS) * time.Millisecond
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultPollingMaxAttempts
	}
	return &StatusPoller{credentials: credentials, interval: interval, maxAttempts: maxAttempts}
}

// Poll fetches the credentials until they settle. onUpdate runs on every
// observed status change, including the first fetch.
func (p *StatusPoller) Poll(
	ctx context.Context,
	id string,
	onUpdate func(Credentials),
	completion Completion[Credentials],
) *Task[Credentials] {
	return Go(ctx, func(ctx context.Context) (Credentials, error) {
		return p.poll(ctx, id, onUpdate)
	}, completion)
}

func (p *StatusPoller) poll(ctx context.Context, id string, onUpdate func(Credentials)) (latest Credentials, err error) {
	startedAt := time.Now().UTC()
	id = strings.TrimSpace(id)
	attempts := 0
	fields := map[string]any{"credentials_id": id}
	defer func() {
		fields["attempts"] = attempts
		fields["final_status"] = string(latest.Status)
		p.instr.observeOperation(ctx, startedAt, "credentials_poll", err, fields)
	}()

	if p == nil || p.credentials == nil {
		return Credentials{}, goerrors.New("core: status poller is not configured", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ServiceErrorInternal)
	}
	if id == "" {
		return Credentials{}, badInputError("core: credentials id is required", nil)
	}

	var lastStatus CredentialsStatus
	for attempts < p.maxAttempts {
		attempts++
		current, getErr := p.credentials.Get(ctx, id, nil).AwaitContext(ctx)
		if getErr != nil {
			return latest, getErr
		}
		latest = current
		if current.Status != lastStatus {
			lastStatus = current.Status
			if onUpdate != nil {
				onUpdate(current)
			}
		}
		if !isPollingStatus(current.Status) {
			return latest, nil
		}
		if attempts == p.maxAttempts {
			break
		}
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return latest, ctx.Err()
		case <-timer.C:
		}
	}
	return latest, goerrors.New(
		fmt.Sprintf("core: credentials %s still %s after %d attempts", id, latest.Status, attempts),
		goerrors.CategoryOperation,
	).
		WithCode(http.StatusGatewayTimeout).
		WithTextCode(ServiceErrorTimeout).
		WithMetadata(map[string]any{"credentials_id": id, "status": string(latest.Status)})
}

func isPollingStatus(status CredentialsStatus) bool {
	switch status {
	case CredentialsStatusCreated, CredentialsStatusAuthenticating, CredentialsStatusUpdating:
		return true
	default:
		return false
	}
}
