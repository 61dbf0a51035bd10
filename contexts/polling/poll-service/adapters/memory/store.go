package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"pollux/contexts/polling/poll-service/domain/entities"
	domainerrors "pollux/contexts/polling/poll-service/domain/errors"
	"pollux/contexts/polling/poll-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	row       ports.OutboxRow
	appended  time.Time
	published bool
}

// Store keeps poll state behind one RWMutex. Polls are stored by value;
// reads hand out copies so callers cannot mutate tallies in place.
type Store struct {
	mu sync.RWMutex

	polls  map[string]entities.Poll
	order  []string
	outbox map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		polls:  make(map[string]entities.Poll),
		outbox: make(map[string]outboxRecord),
	}
}

func (s *Store) SavePoll(_ context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pollID := strings.TrimSpace(poll.PollID)
	if _, exists := s.polls[pollID]; !exists {
		s.order = append(s.order, pollID)
	}
	s.polls[pollID] = clonePoll(poll)
	return nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (entities.Poll, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return entities.Poll{}, false, nil
	}
	return clonePoll(poll), true, nil
}

func (s *Store) ListPolls(_ context.Context) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Poll, 0, len(s.order))
	for _, pollID := range s.order {
		items = append(items, clonePoll(s.polls[pollID]))
	}
	return items, nil
}

func (s *Store) AddTallies(_ context.Context, pollID string, indexes []int, amounts []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return domainerrors.ErrPollNotFound
	}
	if len(indexes) != len(amounts) {
		return domainerrors.ErrInvalidOption
	}
	for _, index := range indexes {
		if index < 0 || index >= len(poll.Tallies) {
			return domainerrors.ErrInvalidOption
		}
	}
	for i, index := range indexes {
		poll.Tallies[index] += amounts[i]
	}
	s.polls[strings.TrimSpace(pollID)] = poll
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

func clonePoll(poll entities.Poll) entities.Poll {
	cloned := poll
	cloned.Options = append([]string(nil), poll.Options...)
	cloned.Tallies = append([]uint64(nil), poll.Tallies...)
	return cloned
}
