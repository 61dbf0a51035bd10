package memory

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"pollux/contexts/token-core/token-ledger/domain/entities"
	domainerrors "pollux/contexts/token-core/token-ledger/domain/errors"
	"pollux/contexts/token-core/token-ledger/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	row       ports.OutboxRow
	appended  time.Time
	published bool
}

// Store keeps all ledger state behind one RWMutex: every mutating method
// validates and commits under the write lock, which gives the coarse
// serialization the engine assumes.
type Store struct {
	mu sync.RWMutex

	assets    map[string]entities.Asset
	balances  map[string]map[string]uint64 // assetID -> holder -> amount
	approvals map[string]map[string]bool   // owner -> spender -> approved
	nonces    map[string]map[uint64]time.Time
	outbox    map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		assets:    make(map[string]entities.Asset),
		balances:  make(map[string]map[string]uint64),
		approvals: make(map[string]map[string]bool),
		nonces:    make(map[string]map[uint64]time.Time),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) CreateAsset(_ context.Context, asset entities.Asset, floatHolder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	assetID := strings.TrimSpace(asset.AssetID)
	if _, ok := s.assets[assetID]; ok {
		return domainerrors.ErrAssetExists
	}
	s.assets[assetID] = asset
	s.balances[assetID] = map[string]uint64{
		strings.TrimSpace(floatHolder): asset.TotalSupply,
	}
	return nil
}

func (s *Store) GetAsset(_ context.Context, assetID string) (entities.Asset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[strings.TrimSpace(assetID)]
	return asset, ok, nil
}

func (s *Store) BalanceOf(_ context.Context, holder string, assetID string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	holders, ok := s.balances[strings.TrimSpace(assetID)]
	if !ok {
		return 0, domainerrors.ErrUnknownAsset
	}
	return holders[strings.TrimSpace(holder)], nil
}

func (s *Store) Move(ctx context.Context, assetID string, from string, to string, amount uint64) error {
	return s.MoveBatch(ctx, assetID, from, to, []uint64{amount})
}

func (s *Store) MoveBatch(_ context.Context, assetID string, from string, to string, amounts []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	holders, ok := s.balances[strings.TrimSpace(assetID)]
	if !ok {
		return domainerrors.ErrUnknownAsset
	}
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	total := uint64(0)
	for _, amount := range amounts {
		if amount > math.MaxUint64-total {
			return domainerrors.ErrInvalidTransfer
		}
		total += amount
	}
	if holders[from] < total {
		return domainerrors.ErrInsufficientBalance
	}
	holders[from] -= total
	holders[to] += total
	if holders[from] == 0 {
		delete(holders, from)
	}
	return nil
}

func (s *Store) ListBalances(_ context.Context, assetID string) ([]entities.Balance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	holders, ok := s.balances[strings.TrimSpace(assetID)]
	if !ok {
		return nil, domainerrors.ErrUnknownAsset
	}
	items := make([]entities.Balance, 0, len(holders))
	for holder, amount := range holders {
		items = append(items, entities.Balance{
			Holder:  holder,
			AssetID: strings.TrimSpace(assetID),
			Amount:  amount,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Holder < items[j].Holder })
	return items, nil
}

func (s *Store) SetApproval(_ context.Context, owner string, spender string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner = strings.TrimSpace(owner)
	if s.approvals[owner] == nil {
		s.approvals[owner] = make(map[string]bool)
	}
	s.approvals[owner][strings.TrimSpace(spender)] = approved
	return nil
}

func (s *Store) IsApproved(_ context.Context, owner string, spender string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approvals[strings.TrimSpace(owner)][strings.TrimSpace(spender)], nil
}

func (s *Store) IsNonceUsed(_ context.Context, holder string, nonce uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, used := s.nonces[strings.TrimSpace(holder)][nonce]
	return used, nil
}

func (s *Store) MarkNonceUsed(_ context.Context, holder string, nonce uint64, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	holder = strings.TrimSpace(holder)
	if s.nonces[holder] == nil {
		s.nonces[holder] = make(map[uint64]time.Time)
	}
	s.nonces[holder][nonce] = usedAt
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
