package gojob

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-tink/core"
)

const (
	JobIDRefresh = "tink.credentials.refresh"

	ParamCredentialsID = "credentials_id"
	ParamItems         = "items"
	ParamAuthenticate  = "authenticate"
	ParamOptIn         = "opt_in"
	ParamAttempt       = "attempt"
)

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt enforces bounded retry behavior for a nack operation.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// backoff doubles BaseDelay per attempt, capped by MaxDelay in NormalizeAttempt.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt && delay < time.Hour; i++ {
		delay *= 2
	}
	return delay
}

// RefreshMessage encodes a refresh request as a go-job execution message. The
// idempotency key collapses duplicate refreshes of the same scope.
func RefreshMessage(req core.RefreshCredentialsRequest) *job.ExecutionMessage {
	id := strings.TrimSpace(req.ID)
	items := req.RefreshableItems.Strings()
	scope := "all"
	if !req.RefreshableItems.IsAll() {
		scope = strings.Join(items, ",")
	}
	return &job.ExecutionMessage{
		JobID:      JobIDRefresh,
		ScriptPath: JobIDRefresh,
		Parameters: map[string]any{
			ParamCredentialsID: id,
			ParamItems:         items,
			ParamAuthenticate:  req.Authenticate,
			ParamOptIn:         req.OptIn,
		},
		IdempotencyKey: fmt.Sprintf("%s:%s:%s", JobIDRefresh, id, scope),
		DedupPolicy:    job.DeduplicationPolicy("drop"),
	}
}

// RefreshRequestFromMessage decodes a message built by RefreshMessage. It
// accepts parameters that went through a JSON round trip.
func RefreshRequestFromMessage(msg *job.ExecutionMessage) (core.RefreshCredentialsRequest, error) {
	if msg == nil {
		return core.RefreshCredentialsRequest{}, jobError("gojob: execution message is required", nil)
	}
	if strings.TrimSpace(msg.JobID) != JobIDRefresh {
		return core.RefreshCredentialsRequest{}, jobError("gojob: unexpected job id", map[string]any{"job_id": msg.JobID})
	}
	id, _ := msg.Parameters[ParamCredentialsID].(string)
	id = strings.TrimSpace(id)
	if id == "" {
		return core.RefreshCredentialsRequest{}, jobError("gojob: credentials_id parameter is required", nil)
	}
	items, err := core.ParseRefreshableItems(stringSlice(msg.Parameters[ParamItems]))
	if err != nil {
		return core.RefreshCredentialsRequest{}, jobError(err.Error(), map[string]any{"credentials_id": id})
	}
	return core.RefreshCredentialsRequest{
		ID:               id,
		RefreshableItems: items,
		Authenticate:     boolParam(msg.Parameters[ParamAuthenticate]),
		OptIn:            boolParam(msg.Parameters[ParamOptIn]),
	}, nil
}

type RefreshEnqueuer struct {
	enqueuer queue.Enqueuer
}

func NewRefreshEnqueuer(enqueuer queue.Enqueuer) *RefreshEnqueuer {
	return &RefreshEnqueuer{enqueuer: enqueuer}
}

func (e *RefreshEnqueuer) Enqueue(ctx context.Context, req core.RefreshCredentialsRequest) error {
	if e == nil || e.enqueuer == nil {
		return jobError("gojob: enqueuer is not configured", nil)
	}
	if strings.TrimSpace(req.ID) == "" {
		return jobError("gojob: credentials id is required", nil)
	}
	return e.enqueuer.Enqueue(ctx, RefreshMessage(req))
}

type Refresher interface {
	Refresh(ctx context.Context, req core.RefreshCredentialsRequest, completion core.Completion[struct{}]) *core.Task[struct{}]
}

// RefreshRunner pulls refresh jobs and runs them against the credentials
// service. Retryable platform failures are requeued under the policy; all
// other failures are dead-lettered.
type RefreshRunner struct {
	dequeuer  queue.Dequeuer
	refresher Refresher
	policy    RetryPolicy
	hook      worker.Hook
	logger    glog.Logger
	now       func() time.Time
}

type RunnerOption func(*RefreshRunner)

func WithHook(hook worker.Hook) RunnerOption {
	return func(r *RefreshRunner) { r.hook = hook }
}

func WithLogger(logger glog.Logger) RunnerOption {
	return func(r *RefreshRunner) { r.logger = logger }
}

func NewRefreshRunner(dequeuer queue.Dequeuer, refresher Refresher, policy RetryPolicy, opts ...RunnerOption) *RefreshRunner {
	runner := &RefreshRunner{
		dequeuer:  dequeuer,
		refresher: refresher,
		policy:    policy,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(runner)
		}
	}
	runner.logger = glog.Ensure(runner.logger)
	return runner
}

// RunOnce processes a single delivery. It returns the refresh error after the
// delivery has been acked or nacked.
func (r *RefreshRunner) RunOnce(ctx context.Context) error {
	if r == nil || r.dequeuer == nil || r.refresher == nil {
		return jobError("gojob: refresh runner is not configured", nil)
	}
	delivery, err := r.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}

	msg := delivery.Message()
	attempt := attemptOf(msg)
	event := worker.Event{Message: msg, Delivery: delivery, Attempt: attempt, StartedAt: r.now().UTC()}
	r.onStart(ctx, event)

	req, err := RefreshRequestFromMessage(msg)
	if err != nil {
		event.Err = err
		r.onFailure(ctx, event)
		if nackErr := delivery.Nack(ctx, queue.NackOptions{DeadLetter: true, Reason: err.Error()}); nackErr != nil {
			return nackErr
		}
		return err
	}

	_, err = r.refresher.Refresh(ctx, req, nil).AwaitContext(ctx)
	event.Duration = r.now().UTC().Sub(event.StartedAt)
	if err == nil {
		r.onSuccess(ctx, event)
		return delivery.Ack(ctx)
	}

	event.Err = err
	opts := queue.NackOptions{Reason: err.Error(), DeadLetter: true}
	if core.IsRetryable(err) {
		opts = queue.NackOptions{Reason: err.Error(), Requeue: true, Delay: r.policy.backoff(attempt)}
	}
	opts = r.policy.NormalizeAttempt(opts, attempt)
	event.Delay = opts.Delay
	if opts.Requeue {
		r.onRetry(ctx, event)
	} else {
		r.onFailure(ctx, event)
	}
	if nackErr := delivery.Nack(ctx, opts); nackErr != nil {
		return nackErr
	}
	return err
}

func (r *RefreshRunner) onStart(ctx context.Context, event worker.Event) {
	if r.hook != nil {
		r.hook.OnStart(ctx, event)
	}
}

func (r *RefreshRunner) onSuccess(ctx context.Context, event worker.Event) {
	r.logger.Debug("refresh job completed", "credentials_id", credentialsIDOf(event.Message), "attempt", event.Attempt)
	if r.hook != nil {
		r.hook.OnSuccess(ctx, event)
	}
}

func (r *RefreshRunner) onFailure(ctx context.Context, event worker.Event) {
	r.logger.Error("refresh job failed", "credentials_id", credentialsIDOf(event.Message), "attempt", event.Attempt, "error", event.Err)
	if r.hook != nil {
		r.hook.OnFailure(ctx, event)
	}
}

func (r *RefreshRunner) onRetry(ctx context.Context, event worker.Event) {
	r.logger.Warn("refresh job requeued", "credentials_id", credentialsIDOf(event.Message), "attempt", event.Attempt, "delay", event.Delay.String())
	if r.hook != nil {
		r.hook.OnRetry(ctx, event)
	}
}

// MetricsHook counts worker events as tink.refresh_job.<event> counters.
type MetricsHook struct {
	recorder core.MetricsRecorder
}

func NewMetricsHook(recorder core.MetricsRecorder) *MetricsHook {
	if recorder == nil {
		recorder = core.NopMetricsRecorder{}
	}
	return &MetricsHook{recorder: recorder}
}

func (h *MetricsHook) OnStart(ctx context.Context, event worker.Event)   { h.count(ctx, "start", event) }
func (h *MetricsHook) OnSuccess(ctx context.Context, event worker.Event) { h.count(ctx, "success", event) }
func (h *MetricsHook) OnFailure(ctx context.Context, event worker.Event) { h.count(ctx, "failure", event) }
func (h *MetricsHook) OnRetry(ctx context.Context, event worker.Event)   { h.count(ctx, "retry", event) }

func (h *MetricsHook) count(ctx context.Context, name string, event worker.Event) {
	if h == nil || h.recorder == nil {
		return
	}
	tags := map[string]string{"attempt": strconv.Itoa(event.Attempt)}
	h.recorder.IncCounter(ctx, "tink.refresh_job."+name, 1, tags)
	if event.Duration > 0 {
		h.recorder.ObserveHistogram(ctx, "tink.refresh_job.duration_ms", float64(event.Duration.Milliseconds()), tags)
	}
}

func attemptOf(msg *job.ExecutionMessage) int {
	if msg == nil {
		return 1
	}
	switch value := msg.Parameters[ParamAttempt].(type) {
	case int:
		if value > 0 {
			return value
		}
	case float64:
		if value > 0 {
			return int(value)
		}
	}
	return 1
}

func credentialsIDOf(msg *job.ExecutionMessage) string {
	if msg == nil {
		return ""
	}
	id, _ := msg.Parameters[ParamCredentialsID].(string)
	return id
}

func stringSlice(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if text, ok := item.(string); ok {
				out = append(out, text)
			}
		}
		return out
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil
		}
		return strings.Split(typed, ",")
	default:
		return nil
	}
}

func boolParam(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(typed))
		return parsed
	default:
		return false
	}
}

func jobError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ServiceErrorBadInput)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

var (
	_ worker.Hook = (*MetricsHook)(nil)
	_ Refresher   = (*core.CredentialsService)(nil)
)
