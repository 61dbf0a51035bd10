package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pollux/contexts/identity-access/access-control/domain/entities"
	"pollux/contexts/identity-access/access-control/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	event     ports.EventEnvelope
	published bool
}

type Store struct {
	mu sync.RWMutex

	grants map[string]entities.RoleGrant
	outbox map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		grants: make(map[string]entities.RoleGrant),
		outbox: make(map[string]outboxRecord),
	}
}

// SeedGrant installs a grant without the admin gate. Used by the
// composition root to plant the bootstrap admin and service accounts.
func (s *Store) SeedGrant(grant entities.RoleGrant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[strings.TrimSpace(grant.Account)] = grant
}

func (s *Store) GetGrant(_ context.Context, account string) (entities.RoleGrant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grant, ok := s.grants[strings.TrimSpace(account)]
	return grant, ok, nil
}

func (s *Store) SaveGrant(_ context.Context, grant entities.RoleGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[strings.TrimSpace(grant.Account)] = grant
	return nil
}

func (s *Store) ListGrants(_ context.Context) ([]entities.RoleGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.RoleGrant, 0, len(s.grants))
	for _, grant := range s.grants {
		items = append(items, grant)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AssignedAt.Equal(items[j].AssignedAt) {
			return items[i].Account < items[j].Account
		}
		return items[i].AssignedAt.Before(items[j].AssignedAt)
	})
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, event ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox[event.EventID] = outboxRecord{event: event}
	return nil
}

// PendingOutbox exposes unpublished events for assertions in tests.
func (s *Store) PendingOutbox() []ports.EventEnvelope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.EventEnvelope, 0, len(s.outbox))
	for _, record := range s.outbox {
		if !record.published {
			items = append(items, record.event)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].OccurredAt.Before(items[j].OccurredAt) })
	return items
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
