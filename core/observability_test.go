package core

import (
	"context"
	"net/http"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func newObservedService(t *testing.T, handler http.HandlerFunc) (*Service, *captureMetricsRecorder, *captureLogger) {
	t.Helper()
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	svc := newTestService(t, handler,
		WithMetricsRecorder(metrics),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithLogger(logger),
	)
	return svc, metrics, logger
}

func TestServiceObservability_GetSuccess(t *testing.T) {
	svc, metrics, logger := newObservedService(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, credentialsFixture)
	})

	if _, err := svc.Credentials().Get(context.Background(), "cred_1", nil).Await(); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !metrics.hasCounter("tink.credentials_get.total", "success") {
		t.Fatalf("expected tink.credentials_get.total success counter")
	}
	if !hasHistogram(metrics.histograms, "tink.credentials_get.duration_ms", "success") {
		t.Fatalf("expected tink.credentials_get.duration_ms histogram")
	}
	if !hasLog(logger.snapshot(), "info", "credentials_get succeeded", "credentials_get") {
		t.Fatalf("expected credentials_get succeeded structured log")
	}
}

func TestServiceObservability_RefreshFailure(t *testing.T) {
	svc, metrics, logger := newObservedService(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, `{}`)
	})

	_, err := svc.Credentials().Refresh(context.Background(), RefreshCredentialsRequest{ID: "missing"}, nil).Await()
	if err == nil {
		t.Fatalf("expected refresh error")
	}
	if !metrics.hasCounter("tink.credentials_refresh.total", "failure") {
		t.Fatalf("expected refresh failure counter")
	}
	if !hasLog(logger.snapshot(), "error", "credentials_refresh failed", "credentials_refresh") {
		t.Fatalf("expected refresh failure log")
	}

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	for _, counter := range metrics.counters {
		if counter.name == "tink.credentials_refresh.total" && counter.tags["status_class"] != string(HTTPStatusNotFound) {
			t.Fatalf("expected status_class tag on failure counter, got %#v", counter.tags)
		}
	}
}

func TestServiceObservability_EnrichesStructuredErrorFields(t *testing.T) {
	logger := newCaptureLogger()
	instr := newInstrumentation("tink", logger, nil)

	richErr := goerrors.New("platform timeout", goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(ServiceErrorExternalFailure).
		WithSeverity(goerrors.SeverityCritical).
		WithMetadata(map[string]any{"status_class": string(HTTPStatusServerError)})
	instr.observeOperation(
		context.Background(),
		time.Now().UTC().Add(-100*time.Millisecond),
		"credentials_list",
		richErr,
		map[string]any{"provider_id": "se-demo-bank"},
	)

	records := logger.snapshot()
	if len(records) == 0 {
		t.Fatalf("expected logs to be emitted")
	}
	last := records[len(records)-1]
	if last.fields["error_category"] != "external" {
		t.Fatalf("expected error_category external, got %#v", last.fields["error_category"])
	}
	if last.fields["error_text_code"] != ServiceErrorExternalFailure {
		t.Fatalf("expected error_text_code %q, got %#v", ServiceErrorExternalFailure, last.fields["error_text_code"])
	}
	if last.fields["error_severity"] != goerrors.SeverityCritical.String() {
		t.Fatalf("expected critical severity, got %#v", last.fields["error_severity"])
	}
	if last.fields["status_class"] != string(HTTPStatusServerError) {
		t.Fatalf("expected status_class propagation, got %#v", last.fields["status_class"])
	}
	if last.fields["provider_id"] != "se-demo-bank" {
		t.Fatalf("expected provider_id propagation, got %#v", last.fields["provider_id"])
	}
}

func TestServiceObservability_CancelledOperationIsNotAFailure(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	instr := newInstrumentation("", logger, metrics)

	instr.observeOperation(context.Background(), time.Now().UTC(), "Credentials Get", cancelledError(), nil)

	if !metrics.hasCounter("tink.credentials_get.total", "cancelled") {
		t.Fatalf("expected cancelled counter under the default prefix")
	}
	if hasLog(logger.snapshot(), "error", "credentials_get failed", "credentials_get") {
		t.Fatalf("expected cancellation not to be logged as a failure")
	}
	if !hasLog(logger.snapshot(), "info", "credentials_get cancelled", "credentials_get") {
		t.Fatalf("expected cancellation log")
	}
}

func hasHistogram(items []capturedHistogram, name string, status string) bool {
	for _, item := range items {
		if item.name == name && item.tags["status"] == status {
			return true
		}
	}
	return false
}

func hasLog(items []capturedLog, level string, message string, eventType string) bool {
	for _, item := range items {
		if item.level != level {
			continue
		}
		if item.msg != message {
			continue
		}
		if item.fields["event_type"] == eventType {
			return true
		}
	}
	return false
}
