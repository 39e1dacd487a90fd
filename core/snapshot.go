package core

import "time"

// CredentialsSnapshot is one recorded status transition of a credentials
// resource, as persisted by a CredentialsObserver.
type CredentialsSnapshot struct {
	ID            string
	CredentialsID string
	ProviderID    string
	Status        CredentialsStatus
	StatusPayload string
	Credentials   Credentials
	ObservedAt    time.Time
}

// CredentialsHistoryFilter selects snapshots of one credentials resource,
// newest first. A zero Limit returns every snapshot.
type CredentialsHistoryFilter struct {
	CredentialsID string
	Limit         int
}
