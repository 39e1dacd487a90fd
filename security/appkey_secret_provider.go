// Package security seals credentials snapshot payloads at rest.
package security

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goliatone/go-tink/core"
)

type Option func(*AppKeySecretProvider)

// AppKeySecretProvider encrypts with AES-GCM under a single application key.
// Keys that are not 16, 24 or 32 bytes are stretched with SHA-256.
type AppKeySecretProvider struct {
	key       []byte
	keyID     string
	version   int
	notBefore time.Time
	notAfter  time.Time
	now       func() time.Time
}

func WithKeyID(id string) Option {
	return func(provider *AppKeySecretProvider) {
		trimmed := strings.TrimSpace(id)
		if trimmed != "" {
			provider.keyID = trimmed
		}
	}
}

func WithVersion(version int) Option {
	return func(provider *AppKeySecretProvider) {
		if version > 0 {
			provider.version = version
		}
	}
}

// WithRotationWindow limits Encrypt to [notBefore, notAfter]. Decrypt stays
// allowed so rotated-out snapshots remain readable.
func WithRotationWindow(notBefore time.Time, notAfter time.Time) Option {
	return func(provider *AppKeySecretProvider) {
		provider.notBefore = notBefore.UTC()
		provider.notAfter = notAfter.UTC()
	}
}

func NewAppKeySecretProvider(keyMaterial []byte, opts ...Option) (*AppKeySecretProvider, error) {
	key := bytes.TrimSpace(keyMaterial)
	if len(key) == 0 {
		return nil, securityError("security: key material is required")
	}
	provider := &AppKeySecretProvider{
		key:     normalizeKey(key),
		keyID:   "tink-app-key",
		version: 1,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(provider)
	}
	return provider, nil
}

func NewAppKeySecretProviderFromString(key string, opts ...Option) (*AppKeySecretProvider, error) {
	return NewAppKeySecretProvider([]byte(key), opts...)
}

func (p *AppKeySecretProvider) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	if p == nil {
		return nil, securityError("security: secret provider is nil")
	}
	if len(plaintext) == 0 {
		return nil, securityError("security: plaintext is required")
	}
	if !p.allows(p.now()) {
		return nil, securityError(fmt.Sprintf("security: key %s v%d is outside its rotation window", p.keyID, p.version))
	}
	gcm, err := p.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, securityWrapError(err, "security: nonce generation failed")
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	return encodeEnvelope(envelope{KeyID: p.keyID, Version: p.version}, nonce, sealed)
}

func (p *AppKeySecretProvider) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	if p == nil {
		return nil, securityError("security: secret provider is nil")
	}
	if len(ciphertext) == 0 {
		return nil, securityError("security: ciphertext is required")
	}
	parsed, nonce, sealed, err := decodeEnvelope(ciphertext)
	if err != nil {
		return nil, err
	}
	if parsed.KeyID != "" && parsed.KeyID != p.keyID {
		return nil, securityError(fmt.Sprintf("security: key id mismatch: got %q want %q", parsed.KeyID, p.keyID))
	}
	if parsed.Version > 0 && parsed.Version != p.version {
		return nil, securityError(fmt.Sprintf("security: key version mismatch: got %d want %d", parsed.Version, p.version))
	}
	gcm, err := p.gcm()
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, securityError("security: invalid nonce size")
	}
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, securityWrapError(err, "security: decrypt payload")
	}
	return plaintext, nil
}

func (p *AppKeySecretProvider) KeyID() string {
	if p == nil {
		return ""
	}
	return p.keyID
}

func (p *AppKeySecretProvider) Version() int {
	if p == nil {
		return 0
	}
	return p.version
}

func (p *AppKeySecretProvider) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(p.key)
	if err != nil {
		return nil, securityWrapError(err, "security: create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, securityWrapError(err, "security: create gcm")
	}
	return gcm, nil
}

func (p *AppKeySecretProvider) allows(at time.Time) bool {
	ts := at.UTC()
	if !p.notBefore.IsZero() && ts.Before(p.notBefore) {
		return false
	}
	if !p.notAfter.IsZero() && ts.After(p.notAfter) {
		return false
	}
	return true
}

func normalizeKey(value []byte) []byte {
	if len(value) == 16 || len(value) == 24 || len(value) == 32 {
		key := make([]byte, len(value))
		copy(key, value)
		return key
	}
	sum := sha256.Sum256(value)
	return sum[:]
}

var _ core.SecretProvider = (*AppKeySecretProvider)(nil)
