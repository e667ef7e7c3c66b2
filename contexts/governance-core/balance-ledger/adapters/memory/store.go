package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"polity/contexts/governance-core/balance-ledger/domain/entities"
	domainerrors "polity/contexts/governance-core/balance-ledger/domain/errors"
	"polity/internal/shared/events"
	"polity/internal/shared/outbox"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   outbox.Message
	published bool
}

type Store struct {
	mu sync.RWMutex

	accounts map[string]entities.Account
	managers map[string]bool
	outbox   map[string]outboxRecord
}

// NewStore grants the compliance manager capability to each listed caller.
func NewStore(complianceManagers ...string) *Store {
	managers := make(map[string]bool, len(complianceManagers))
	for _, manager := range complianceManagers {
		manager = strings.TrimSpace(manager)
		if manager != "" {
			managers[manager] = true
		}
	}
	return &Store{
		accounts: make(map[string]entities.Account),
		managers: managers,
		outbox:   make(map[string]outboxRecord),
	}
}

func (s *Store) GetAccount(_ context.Context, address string) (entities.Account, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[strings.TrimSpace(address)]
	if !ok {
		return entities.Account{}, false, nil
	}
	return account, true, nil
}

func (s *Store) SaveAccount(_ context.Context, account entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.TrimSpace(account.Address)] = account
	return nil
}

func (s *Store) SaveAccounts(_ context.Context, accounts []entities.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range accounts {
		s.accounts[strings.TrimSpace(account.Address)] = account
	}
	return nil
}

func (s *Store) IsComplianceManager(_ context.Context, caller string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.managers[strings.TrimSpace(caller)], nil
}

// GrantComplianceManager is a wiring hook for bootstrap; the in-process
// membership service caller is registered through it.
func (s *Store) GrantComplianceManager(caller string) {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managers[caller] = true
}

func (s *Store) AppendOutbox(_ context.Context, envelope events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: outbox.Message{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]outbox.Message, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
