package core

import (
	stderrors "errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	goerrors "github.com/goliatone/go-errors"
)

func TestServiceErrorMapper_AssignsStableCodes(t *testing.T) {
	mapped := serviceErrorMapper(stderrors.New("core: credentials not found"))
	if mapped.TextCode != ServiceErrorNotFound {
		t.Fatalf("expected not found text code, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusNotFound {
		t.Fatalf("expected http 404, got %d", mapped.Code)
	}

	mapped = serviceErrorMapper(stderrors.New("core: provider id is required"))
	if mapped.TextCode != ServiceErrorBadInput {
		t.Fatalf("expected bad input code, got %q", mapped.TextCode)
	}
	if mapped.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %q", mapped.Category)
	}
}

func TestServiceErrorMapper_PreservesRichErrors(t *testing.T) {
	source := NewHTTPStatusError(http.MethodGet, "/api/v1/credentials/x", http.StatusConflict, nil)
	mapped := serviceErrorMapper(source)
	if mapped.TextCode != ErrorTextConflict {
		t.Fatalf("expected platform text code to survive, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusConflict {
		t.Fatalf("expected status code to survive, got %d", mapped.Code)
	}
}

func TestClassifyHTTPStatus(t *testing.T) {
	cases := []struct {
		status int
		class  HTTPStatusClass
		ok     bool
	}{
		{400, HTTPStatusBadRequest, true},
		{401, HTTPStatusUnauthorized, true},
		{403, HTTPStatusForbidden, true},
		{404, HTTPStatusNotFound, true},
		{409, HTTPStatusConflict, true},
		{412, HTTPStatusPreconditionFailed, true},
		{418, HTTPStatusClientError, true},
		{429, HTTPStatusTooManyRequests, true},
		{451, HTTPStatusUnavailableForLegalReasons, true},
		{500, HTTPStatusInternalServerError, true},
		{503, HTTPStatusServerError, true},
		{302, "", false},
		{600, "", false},
	}
	for _, tc := range cases {
		class, ok := ClassifyHTTPStatus(tc.status)
		if class != tc.class || ok != tc.ok {
			t.Fatalf("status %d: expected %q/%v, got %q/%v", tc.status, tc.class, tc.ok, class, ok)
		}
	}
}

func TestNewHTTPStatusError_CarriesStatusAndExcerpt(t *testing.T) {
	body := strings.Repeat("x", maxErrorBodyExcerpt+100)
	err := NewHTTPStatusError("post", "/api/v1/credentials", http.StatusTooManyRequests, []byte(body))
	if err.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status code 429, got %d", err.Code)
	}
	if err.Category != goerrors.CategoryRateLimit {
		t.Fatalf("expected rate limit category, got %q", err.Category)
	}
	if err.Metadata["method"] != http.MethodPost {
		t.Fatalf("expected normalized method, got %v", err.Metadata["method"])
	}
	if err.Metadata["retryable"] != true {
		t.Fatalf("expected 429 to be retryable")
	}
	excerpt, _ := err.Metadata["response_body"].(string)
	if len(excerpt) != maxErrorBodyExcerpt {
		t.Fatalf("expected truncated excerpt, got %d bytes", len(excerpt))
	}

	unlisted := NewHTTPStatusError(http.MethodGet, "/x", 299+400, nil)
	if unlisted.Code != 699 {
		t.Fatalf("expected raw status to be kept, got %d", unlisted.Code)
	}
	if class, _, _ := HTTPStatusClassOf(unlisted); class != HTTPStatusServerError {
		t.Fatalf("expected out of range status to classify as server error, got %q", class)
	}
}

func TestNewHTTPStatusError_ExcerptKeepsRunesWhole(t *testing.T) {
	body := "x" + strings.Repeat("é", maxErrorBodyExcerpt)
	err := NewHTTPStatusError(http.MethodGet, "/api/v1/credentials/list", http.StatusBadGateway, []byte(body))
	excerpt, _ := err.Metadata["response_body"].(string)
	if !utf8.ValidString(excerpt) {
		t.Fatalf("expected valid utf-8 excerpt, got %q", excerpt[len(excerpt)-4:])
	}
	if len(excerpt) != maxErrorBodyExcerpt-1 {
		t.Fatalf("expected excerpt to stop before the split rune, got %d bytes", len(excerpt))
	}
	if got := truncateExcerpt("héllo", 2); got != "h" {
		t.Fatalf("expected cut before a partial rune, got %q", got)
	}
}

func TestHTTPStatusClassOf_IgnoresOtherErrors(t *testing.T) {
	if _, _, ok := HTTPStatusClassOf(stderrors.New("plain")); ok {
		t.Fatalf("expected plain errors to have no class")
	}
	if _, _, ok := HTTPStatusClassOf(badInputError("bad", nil)); ok {
		t.Fatalf("expected validation errors to have no class")
	}
	if !IsHTTPStatusClass(NewHTTPStatusError(http.MethodGet, "/x", 404, nil), HTTPStatusNotFound) {
		t.Fatalf("expected 404 to match not found class")
	}
}

func TestCancelledError(t *testing.T) {
	err := cancelledError()
	if !IsCancelled(err) {
		t.Fatalf("expected cancelled error to be detected")
	}
	if IsCancelled(badInputError("bad", nil)) {
		t.Fatalf("expected bad input not to be a cancellation")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewHTTPStatusError("POST", "/x", 429, nil)) {
		t.Fatalf("expected 429 to be retryable")
	}
	if !IsRetryable(NewHTTPStatusError("POST", "/x", 503, nil)) {
		t.Fatalf("expected 503 to be retryable")
	}
	if IsRetryable(NewHTTPStatusError("POST", "/x", 404, nil)) {
		t.Fatalf("expected 404 not to be retryable")
	}
	if IsRetryable(stderrors.New("plain")) {
		t.Fatalf("expected plain error not to be retryable")
	}
}
