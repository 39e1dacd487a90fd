package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type credentialsSnapshotRecord struct {
	bun.BaseModel `bun:"table:tink_credentials_snapshots,alias:tcs"`

	ID            string     `bun:"id,pk"`
	CredentialsID string     `bun:"credentials_id,notnull"`
	ProviderID    string     `bun:"provider_id,notnull"`
	Kind          string     `bun:"kind,notnull"`
	Status        string     `bun:"status,notnull"`
	StatusPayload string     `bun:"status_payload,notnull"`
	StatusUpdated *time.Time `bun:"status_updated,nullzero"`
	Payload       []byte     `bun:"payload,notnull"`
	PayloadSealed bool       `bun:"payload_sealed,notnull"`
	ObservedAt    time.Time  `bun:"observed_at,notnull"`
}
