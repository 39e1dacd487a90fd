package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-tink/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const ErrorTextSnapshotNotFound = "TINK_SNAPSHOT_NOT_FOUND"

// CredentialsSnapshotStore records credentials status transitions. Plugged in
// as the service CredentialsObserver it sees every credentials value the SDK
// decodes and appends a row only when the status moved.
type CredentialsSnapshotStore struct {
	db      *bun.DB
	repo    repository.Repository[*credentialsSnapshotRecord]
	secrets core.SecretProvider
	now     func() time.Time
}

type SnapshotStoreOption func(*CredentialsSnapshotStore)

// WithSecretProvider seals the stored wire payload.
func WithSecretProvider(secrets core.SecretProvider) SnapshotStoreOption {
	return func(s *CredentialsSnapshotStore) { s.secrets = secrets }
}

func WithClock(now func() time.Time) SnapshotStoreOption {
	return func(s *CredentialsSnapshotStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewCredentialsSnapshotStore(db *bun.DB, opts ...SnapshotStoreOption) (*CredentialsSnapshotStore, error) {
	if db == nil {
		return nil, storeError("sqlstore: bun db is required", goerrors.CategoryInternal)
	}
	repo := repository.NewRepository[*credentialsSnapshotRecord](db, snapshotHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, storeWrapError(err, "sqlstore: invalid snapshot repository wiring")
		}
	}
	store := &CredentialsSnapshotStore{db: db, repo: repo, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

func (s *CredentialsSnapshotStore) ObserveCredentials(ctx context.Context, credentials []core.Credentials) error {
	if s == nil || s.repo == nil {
		return storeError("sqlstore: snapshot store is not configured", goerrors.CategoryInternal)
	}
	for _, item := range credentials {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		latest, err := s.latestRecord(ctx, item.ID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if latest != nil && latest.Status == string(item.Status) {
			continue
		}
		record, err := s.newRecord(ctx, item)
		if err != nil {
			return err
		}
		if _, err := s.repo.Create(ctx, record); err != nil {
			return storeWrapError(err, "sqlstore: insert credentials snapshot")
		}
	}
	return nil
}

// Latest returns the newest snapshot of a credentials resource.
func (s *CredentialsSnapshotStore) Latest(ctx context.Context, credentialsID string) (core.CredentialsSnapshot, error) {
	if s == nil || s.repo == nil {
		return core.CredentialsSnapshot{}, storeError("sqlstore: snapshot store is not configured", goerrors.CategoryInternal)
	}
	credentialsID = strings.TrimSpace(credentialsID)
	if credentialsID == "" {
		return core.CredentialsSnapshot{}, storeError("sqlstore: credentials id is required", goerrors.CategoryBadInput)
	}
	record, err := s.latestRecord(ctx, credentialsID)
	if err != nil {
		return core.CredentialsSnapshot{}, err
	}
	return s.toDomain(ctx, record)
}

// History lists snapshots newest first.
func (s *CredentialsSnapshotStore) History(ctx context.Context, filter core.CredentialsHistoryFilter) ([]core.CredentialsSnapshot, error) {
	if s == nil || s.repo == nil {
		return nil, storeError("sqlstore: snapshot store is not configured", goerrors.CategoryInternal)
	}
	credentialsID := strings.TrimSpace(filter.CredentialsID)
	if credentialsID == "" {
		return nil, storeError("sqlstore: credentials id is required", goerrors.CategoryBadInput)
	}
	if filter.Limit < 0 {
		return nil, storeError("sqlstore: limit must be >= 0", goerrors.CategoryBadInput)
	}
	criteria := []repository.SelectCriteria{
		repository.SelectBy("credentials_id", "=", credentialsID),
		newestFirst(),
	}
	if filter.Limit > 0 {
		criteria = append(criteria, repository.SelectPaginate(filter.Limit, 0))
	}
	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, storeWrapError(err, "sqlstore: list credentials snapshots")
	}
	out := make([]core.CredentialsSnapshot, 0, len(records))
	for _, record := range records {
		snapshot, err := s.toDomain(ctx, record)
		if err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}
	return out, nil
}

func (s *CredentialsSnapshotStore) latestRecord(ctx context.Context, credentialsID string) (*credentialsSnapshotRecord, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("credentials_id", "=", strings.TrimSpace(credentialsID)),
		newestFirst(),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, storeWrapError(err, "sqlstore: load latest credentials snapshot")
	}
	if len(records) == 0 {
		return nil, storeError("sqlstore: no snapshot for credentials "+credentialsID, goerrors.CategoryNotFound).
			WithMetadata(map[string]any{"credentials_id": credentialsID})
	}
	return records[0], nil
}

func (s *CredentialsSnapshotStore) newRecord(ctx context.Context, item core.Credentials) (*credentialsSnapshotRecord, error) {
	payload, err := json.Marshal(core.RESTFromCredentials(item))
	if err != nil {
		return nil, storeWrapError(err, "sqlstore: encode credentials payload")
	}
	sealed := false
	if s.secrets != nil {
		payload, err = s.secrets.Encrypt(ctx, payload)
		if err != nil {
			return nil, storeWrapError(err, "sqlstore: seal credentials payload")
		}
		sealed = true
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	var statusUpdated *time.Time
	if item.StatusUpdated != nil {
		value := item.StatusUpdated.UTC()
		statusUpdated = &value
	}
	return &credentialsSnapshotRecord{
		ID:            id.String(),
		CredentialsID: strings.TrimSpace(item.ID),
		ProviderID:    item.ProviderID,
		Kind:          string(item.Kind),
		Status:        string(item.Status),
		StatusPayload: item.StatusPayload,
		StatusUpdated: statusUpdated,
		Payload:       payload,
		PayloadSealed: sealed,
		ObservedAt:    s.now().UTC(),
	}, nil
}

func (s *CredentialsSnapshotStore) toDomain(ctx context.Context, record *credentialsSnapshotRecord) (core.CredentialsSnapshot, error) {
	if record == nil {
		return core.CredentialsSnapshot{}, storeError("sqlstore: snapshot record is nil", goerrors.CategoryInternal)
	}
	payload := record.Payload
	if record.PayloadSealed {
		if s.secrets == nil {
			return core.CredentialsSnapshot{}, storeError("sqlstore: sealed snapshot requires a secret provider", goerrors.CategoryInternal)
		}
		opened, err := s.secrets.Decrypt(ctx, payload)
		if err != nil {
			return core.CredentialsSnapshot{}, storeWrapError(err, "sqlstore: open credentials payload")
		}
		payload = opened
	}
	credentials, err := core.DecodeCredentials(payload)
	if err != nil {
		return core.CredentialsSnapshot{}, err
	}
	return core.CredentialsSnapshot{
		ID:            record.ID,
		CredentialsID: record.CredentialsID,
		ProviderID:    record.ProviderID,
		Status:        core.CredentialsStatus(record.Status),
		StatusPayload: record.StatusPayload,
		Credentials:   credentials,
		ObservedAt:    record.ObservedAt.UTC(),
	}, nil
}

func newestFirst() repository.SelectCriteria {
	return repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.observed_at DESC").OrderExpr("?TableAlias.id DESC")
	})
}

func isNotFound(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr != nil && richErr.TextCode == ErrorTextSnapshotNotFound
}

func storeError(message string, category goerrors.Category) *goerrors.Error {
	code, textCode := http.StatusInternalServerError, core.ServiceErrorInternal
	switch category {
	case goerrors.CategoryBadInput:
		code, textCode = http.StatusBadRequest, core.ServiceErrorBadInput
	case goerrors.CategoryNotFound:
		code, textCode = http.StatusNotFound, ErrorTextSnapshotNotFound
	}
	return goerrors.New(message, category).WithCode(code).WithTextCode(textCode)
}

func storeWrapError(err error, message string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}

var _ core.CredentialsObserver = (*CredentialsSnapshotStore)(nil)
