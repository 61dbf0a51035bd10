package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"pollux/contexts/identity-access/registration-service/domain/entities"
	"pollux/contexts/identity-access/registration-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	event     ports.EventEnvelope
	published bool
}

type Store struct {
	mu sync.RWMutex

	accounts map[string]entities.Account
	outbox   map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		accounts: make(map[string]entities.Account),
		outbox:   make(map[string]outboxRecord),
	}
}

func (s *Store) GetAccount(_ context.Context, address string) (entities.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[strings.TrimSpace(address)]
	return account, ok, nil
}

func (s *Store) SaveAccount(_ context.Context, account entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.TrimSpace(account.Address)] = account
	return nil
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
