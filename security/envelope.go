package security

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-tink/core"
)

const (
	envelopePrefix    = "tink.secret.v1:"
	envelopeAlgorithm = "aes-256-gcm"
)

type envelope struct {
	KeyID      string `json:"kid"`
	Version    int    `json:"ver"`
	Algorithm  string `json:"alg"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

func encodeEnvelope(value envelope, nonce []byte, sealed []byte) ([]byte, error) {
	value.Algorithm = envelopeAlgorithm
	value.Nonce = base64.StdEncoding.EncodeToString(nonce)
	value.Ciphertext = base64.StdEncoding.EncodeToString(sealed)
	data, err := json.Marshal(value)
	if err != nil {
		return nil, securityWrapError(err, "security: encode envelope")
	}
	return append([]byte(envelopePrefix), data...), nil
}

// decodeEnvelope accepts payloads with or without the prefix.
func decodeEnvelope(payload []byte) (envelope, []byte, []byte, error) {
	raw := strings.TrimPrefix(string(payload), envelopePrefix)
	var parsed envelope
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return envelope{}, nil, nil, securityWrapError(err, "security: decode envelope")
	}
	if parsed.Algorithm != "" && parsed.Algorithm != envelopeAlgorithm {
		return envelope{}, nil, nil, securityError("security: unsupported envelope algorithm " + parsed.Algorithm)
	}
	nonce, err := base64.StdEncoding.DecodeString(parsed.Nonce)
	if err != nil {
		return envelope{}, nil, nil, securityWrapError(err, "security: decode nonce")
	}
	sealed, err := base64.StdEncoding.DecodeString(parsed.Ciphertext)
	if err != nil {
		return envelope{}, nil, nil, securityWrapError(err, "security: decode ciphertext")
	}
	return parsed, nonce, sealed, nil
}

func securityError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}

func securityWrapError(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}
