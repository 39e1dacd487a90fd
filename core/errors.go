package core

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput        = "SERVICE_BAD_INPUT"
	ServiceErrorNotFound        = "SERVICE_NOT_FOUND"
	ServiceErrorUnauthorized    = "SERVICE_UNAUTHORIZED"
	ServiceErrorForbidden       = "SERVICE_FORBIDDEN"
	ServiceErrorConflict        = "SERVICE_CONFLICT"
	ServiceErrorRateLimited     = "SERVICE_RATE_LIMITED"
	ServiceErrorOperationFailed = "SERVICE_OPERATION_FAILED"
	ServiceErrorExternalFailure = "SERVICE_EXTERNAL_FAILURE"
	ServiceErrorCancelled       = "SERVICE_CANCELLED"
	ServiceErrorTimeout         = "SERVICE_TIMEOUT"
	ServiceErrorInternal        = "SERVICE_INTERNAL_ERROR"
)

const (
	ErrorTextBadRequest                 = "TINK_BAD_REQUEST"
	ErrorTextUnauthorized               = "TINK_UNAUTHORIZED"
	ErrorTextForbidden                  = "TINK_FORBIDDEN"
	ErrorTextNotFound                   = "TINK_NOT_FOUND"
	ErrorTextConflict                   = "TINK_CONFLICT"
	ErrorTextPreconditionFailed         = "TINK_PRECONDITION_FAILED"
	ErrorTextTooManyRequests            = "TINK_TOO_MANY_REQUESTS"
	ErrorTextUnavailableForLegalReasons = "TINK_UNAVAILABLE_FOR_LEGAL_REASONS"
	ErrorTextInternalServerError        = "TINK_INTERNAL_SERVER_ERROR"
	ErrorTextClientError                = "TINK_CLIENT_ERROR"
	ErrorTextServerError                = "TINK_SERVER_ERROR"
	ErrorTextDecodeFailed               = "TINK_DECODE_FAILED"
)

// HTTPStatusClass names the classification of a non-2xx platform response.
type HTTPStatusClass string

const (
	HTTPStatusBadRequest                 HTTPStatusClass = "bad_request"
	HTTPStatusUnauthorized               HTTPStatusClass = "unauthorized"
	HTTPStatusForbidden                  HTTPStatusClass = "forbidden"
	HTTPStatusNotFound                   HTTPStatusClass = "not_found"
	HTTPStatusConflict                   HTTPStatusClass = "conflict"
	HTTPStatusPreconditionFailed         HTTPStatusClass = "precondition_failed"
	HTTPStatusTooManyRequests            HTTPStatusClass = "too_many_requests"
	HTTPStatusUnavailableForLegalReasons HTTPStatusClass = "unavailable_for_legal_reasons"
	HTTPStatusInternalServerError        HTTPStatusClass = "internal_server_error"
	HTTPStatusClientError                HTTPStatusClass = "client_error"
	HTTPStatusServerError                HTTPStatusClass = "server_error"
)

type httpStatusRule struct {
	class    HTTPStatusClass
	textCode string
	category goerrors.Category
}

var exactHTTPStatusRules = map[int]httpStatusRule{
	http.StatusBadRequest:                 {HTTPStatusBadRequest, ErrorTextBadRequest, goerrors.CategoryBadInput},
	http.StatusUnauthorized:               {HTTPStatusUnauthorized, ErrorTextUnauthorized, goerrors.CategoryAuth},
	http.StatusForbidden:                  {HTTPStatusForbidden, ErrorTextForbidden, goerrors.CategoryAuthz},
	http.StatusNotFound:                   {HTTPStatusNotFound, ErrorTextNotFound, goerrors.CategoryNotFound},
	http.StatusConflict:                   {HTTPStatusConflict, ErrorTextConflict, goerrors.CategoryConflict},
	http.StatusPreconditionFailed:         {HTTPStatusPreconditionFailed, ErrorTextPreconditionFailed, goerrors.CategoryConflict},
	http.StatusTooManyRequests:            {HTTPStatusTooManyRequests, ErrorTextTooManyRequests, goerrors.CategoryRateLimit},
	http.StatusUnavailableForLegalReasons: {HTTPStatusUnavailableForLegalReasons, ErrorTextUnavailableForLegalReasons, goerrors.CategoryAuthz},
	http.StatusInternalServerError:        {HTTPStatusInternalServerError, ErrorTextInternalServerError, goerrors.CategoryExternal},
}

// ClassifyHTTPStatus reports the class of a response status. ok is false for
// statuses below 400 or above 599.
func ClassifyHTTPStatus(statusCode int) (HTTPStatusClass, bool) {
	rule, ok := httpStatusRuleFor(statusCode)
	return rule.class, ok
}

func httpStatusRuleFor(statusCode int) (httpStatusRule, bool) {
	if rule, ok := exactHTTPStatusRules[statusCode]; ok {
		return rule, true
	}
	switch {
	case statusCode >= 400 && statusCode < 500:
		return httpStatusRule{HTTPStatusClientError, ErrorTextClientError, goerrors.CategoryBadInput}, true
	case statusCode >= 500 && statusCode < 600:
		return httpStatusRule{HTTPStatusServerError, ErrorTextServerError, goerrors.CategoryExternal}, true
	default:
		return httpStatusRule{}, false
	}
}

const maxErrorBodyExcerpt = 512

// NewHTTPStatusError builds the error returned for a non-2xx response. The
// error Code is always the received status, including unlisted ones.
func NewHTTPStatusError(method string, path string, statusCode int, body []byte) *goerrors.Error {
	rule, ok := httpStatusRuleFor(statusCode)
	if !ok {
		rule = httpStatusRule{HTTPStatusServerError, ErrorTextServerError, goerrors.CategoryExternal}
	}
	metadata := map[string]any{
		"status_code":  statusCode,
		"status_class": string(rule.class),
		"method":       strings.ToUpper(strings.TrimSpace(method)),
		"path":         path,
		"retryable":    statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError,
	}
	if excerpt := strings.TrimSpace(string(body)); excerpt != "" {
		metadata["response_body"] = truncateExcerpt(excerpt, maxErrorBodyExcerpt)
	}
	return goerrors.New(
		fmt.Sprintf("core: %s %s returned status %d", metadata["method"], path, statusCode),
		rule.category,
	).
		WithCode(statusCode).
		WithTextCode(rule.textCode).
		WithMetadata(metadata)
}

// truncateExcerpt cuts value to at most limit bytes without splitting a rune.
func truncateExcerpt(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}

// HTTPStatusClassOf extracts the status class and code from an error produced
// by NewHTTPStatusError.
func HTTPStatusClassOf(err error) (HTTPStatusClass, int, bool) {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr == nil {
		return "", 0, false
	}
	class, ok := richErr.Metadata["status_class"].(string)
	if !ok || class == "" {
		return "", 0, false
	}
	return HTTPStatusClass(class), richErr.Code, true
}

func IsHTTPStatusClass(err error, class HTTPStatusClass) bool {
	got, _, ok := HTTPStatusClassOf(err)
	return ok && got == class
}

// IsRetryable reports whether the platform marked the failure as transient
// (429, 5xx) or the transport timed out. The SDK itself never retries.
func IsRetryable(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr == nil {
		return false
	}
	if richErr.TextCode == ServiceErrorTimeout {
		return true
	}
	retryable, _ := richErr.Metadata["retryable"].(bool)
	return retryable
}

func badInputError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ServiceErrorBadInput)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func errNoRefreshableItems(credentialsID string) *goerrors.Error {
	var metadata map[string]any
	if id := strings.TrimSpace(credentialsID); id != "" {
		metadata = map[string]any{"credentials_id": id}
	}
	return badInputError("core: refreshable items must select at least one known item", metadata)
}

func decodeError(source error, message string, metadata map[string]any) *goerrors.Error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryInternal)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryInternal, message)
	}
	err = err.WithCode(http.StatusBadGateway).WithTextCode(ErrorTextDecodeFailed)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func cancelledError() *goerrors.Error {
	return goerrors.New("core: task cancelled", goerrors.CategoryOperation).
		WithCode(499).
		WithTextCode(ServiceErrorCancelled).
		WithSeverity(goerrors.SeverityInfo)
}

func IsCancelled(err error) bool {
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr != nil && richErr.TextCode == ServiceErrorCancelled
}

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ServiceErrorNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must not"):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ServiceErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func newServiceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureServiceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryNotFound:
		return ServiceErrorNotFound
	case goerrors.CategoryAuth:
		return ServiceErrorUnauthorized
	case goerrors.CategoryAuthz:
		return ServiceErrorForbidden
	case goerrors.CategoryConflict:
		return ServiceErrorConflict
	case goerrors.CategoryRateLimit:
		return ServiceErrorRateLimited
	case goerrors.CategoryOperation:
		return ServiceErrorOperationFailed
	case goerrors.CategoryExternal:
		return ServiceErrorExternalFailure
	default:
		return ServiceErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}
