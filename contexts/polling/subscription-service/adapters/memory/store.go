package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"pollux/contexts/polling/subscription-service/domain/entities"
	"pollux/contexts/polling/subscription-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	row       ports.OutboxRow
	appended  time.Time
	published bool
}

// Store keeps subscription state behind one RWMutex.
type Store struct {
	mu sync.RWMutex

	subscriptions map[string]entities.Subscription // "pollID|user"
	outbox        map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		subscriptions: make(map[string]entities.Subscription),
		outbox:        make(map[string]outboxRecord),
	}
}

func subscriptionKey(user string, pollID string) string {
	return strings.TrimSpace(pollID) + "|" + strings.TrimSpace(user)
}

func (s *Store) GetSubscription(_ context.Context, user string, pollID string) (entities.Subscription, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subscription, ok := s.subscriptions[subscriptionKey(user, pollID)]
	return subscription, ok, nil
}

func (s *Store) SaveSubscription(_ context.Context, subscription entities.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions[subscriptionKey(subscription.User, subscription.PollID)] = subscription
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox[event.EventID] = outboxRecord{
		row: ports.OutboxRow{
			OutboxID:  event.EventID,
			EventType: event.EventType,
			Payload:   payload,
		},
		appended: event.OccurredAt,
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]outboxRecord, 0, len(s.outbox))
	for _, record := range s.outbox {
		if !record.published {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].appended.Before(records[j].appended) })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	rows := make([]ports.OutboxRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.row)
	}
	return rows, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[outboxID]
	if !ok {
		return nil
	}
	record.published = true
	s.outbox[outboxID] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
