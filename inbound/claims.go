package inbound

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

const defaultClaimTTL = 10 * time.Minute

// StateClaimStore guards a redirect state against being relayed twice.
// Claim reports false while another relay holds the state or a completed
// relay is still inside its TTL.
type StateClaimStore interface {
	Claim(ctx context.Context, state string, ttl time.Duration) (claimID string, accepted bool, err error)
	Complete(ctx context.Context, claimID string) error
	Release(ctx context.Context, claimID string) error
}

type claimStatus int

const (
	claimPending claimStatus = iota
	claimRelayed
)

type stateClaim struct {
	status    claimStatus
	claimID   string
	ttl       time.Duration
	expiresAt time.Time
}

type MemoryClaimStore struct {
	mu     sync.Mutex
	states map[string]stateClaim
	claims map[string]string
	nextID int
	Now    func() time.Time
}

func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{
		states: map[string]stateClaim{},
		claims: map[string]string{},
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (s *MemoryClaimStore) Claim(_ context.Context, state string, ttl time.Duration) (string, bool, error) {
	if s == nil {
		return "", false, inboundInternal("inbound: claim store is nil", nil)
	}
	state = strings.TrimSpace(state)
	if state == "" {
		return "", false, inboundBadInput("inbound: redirect state is required", nil)
	}
	if ttl <= 0 {
		ttl = defaultClaimTTL
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked(now)
	if _, exists := s.states[state]; exists {
		return "", false, nil
	}

	s.nextID++
	claimID := fmt.Sprintf("claim_%d", s.nextID)
	s.states[state] = stateClaim{
		status:    claimPending,
		claimID:   claimID,
		ttl:       ttl,
		expiresAt: now.Add(ttl),
	}
	s.claims[claimID] = state
	return claimID, true, nil
}

func (s *MemoryClaimStore) Complete(_ context.Context, claimID string) error {
	if s == nil {
		return inboundInternal("inbound: claim store is nil", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, current, ok := s.pendingLocked(claimID)
	if !ok {
		return nil
	}
	current.status = claimRelayed
	current.expiresAt = s.now().Add(current.ttl)
	s.states[state] = current
	delete(s.claims, claimID)
	return nil
}

// Release drops a pending claim so the same state can be relayed again.
func (s *MemoryClaimStore) Release(_ context.Context, claimID string) error {
	if s == nil {
		return inboundInternal("inbound: claim store is nil", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, _, ok := s.pendingLocked(claimID)
	if !ok {
		return nil
	}
	delete(s.states, state)
	delete(s.claims, claimID)
	return nil
}

func (s *MemoryClaimStore) pendingLocked(claimID string) (string, stateClaim, bool) {
	claimID = strings.TrimSpace(claimID)
	state, ok := s.claims[claimID]
	if !ok {
		return "", stateClaim{}, false
	}
	current, exists := s.states[state]
	if !exists || current.claimID != claimID || current.status != claimPending {
		delete(s.claims, claimID)
		return "", stateClaim{}, false
	}
	return state, current, true
}

func (s *MemoryClaimStore) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *MemoryClaimStore) evictExpiredLocked(now time.Time) {
	for state, current := range s.states {
		if now.Before(current.expiresAt) {
			continue
		}
		delete(s.claims, current.claimID)
		delete(s.states, state)
	}
}

var _ StateClaimStore = (*MemoryClaimStore)(nil)
