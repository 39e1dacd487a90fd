package inbound

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

func inboundError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func inboundWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	if source == nil {
		return inboundError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func inboundBadInput(message string, metadata map[string]any) error {
	return inboundError(
		message,
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		core.ServiceErrorBadInput,
		metadata,
	)
}

func inboundInternal(message string, metadata map[string]any) error {
	return inboundError(
		message,
		goerrors.CategoryInternal,
		http.StatusInternalServerError,
		core.ServiceErrorInternal,
		metadata,
	)
}

func inboundExternal(source error, message string, metadata map[string]any) error {
	return inboundWrapError(
		source,
		goerrors.CategoryExternal,
		message,
		http.StatusBadGateway,
		core.ServiceErrorExternalFailure,
		metadata,
	)
}

// relayError keeps input the SDK refused before calling the platform as a 400.
// Anything the platform answered is a platform failure.
func relayError(source error, metadata map[string]any) error {
	var richErr *goerrors.Error
	if goerrors.As(source, &richErr) && richErr != nil && richErr.TextCode == core.ServiceErrorBadInput {
		if _, answered := richErr.Metadata["status_code"]; answered {
			return inboundExternal(source, "inbound: relay third-party callback", metadata)
		}
		return inboundWrapBadInput(source, "inbound: relay third-party callback")
	}
	return inboundExternal(source, "inbound: relay third-party callback", metadata)
}

func inboundWrapBadInput(source error, message string) error {
	return inboundWrapError(
		source,
		goerrors.CategoryBadInput,
		message,
		http.StatusBadRequest,
		core.ServiceErrorBadInput,
		nil,
	)
}
