package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"polity/contexts/governance-core/membership-service/domain/entities"
	domainerrors "polity/contexts/governance-core/membership-service/domain/errors"
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

	members     map[string]entities.Member
	roll        []string
	delegations map[string]string
	outbox      map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		members:     make(map[string]entities.Member),
		delegations: make(map[string]string),
		outbox:      make(map[string]outboxRecord),
	}
}

func (s *Store) GetMember(_ context.Context, address string) (entities.Member, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[strings.TrimSpace(address)]
	if !ok {
		return entities.Member{}, false, nil
	}
	return member, true, nil
}

func (s *Store) SaveMember(_ context.Context, member entities.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[strings.TrimSpace(member.Address)] = member
	return nil
}

func (s *Store) RemoveMember(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	address = strings.TrimSpace(address)
	if _, ok := s.members[address]; !ok {
		return domainerrors.ErrNotMember
	}
	delete(s.members, address)
	return nil
}

func (s *Store) AppendToRoll(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roll = append(s.roll, strings.TrimSpace(address))
	return nil
}

func (s *Store) ListRoll(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.roll...), nil
}

func (s *Store) GetDelegation(_ context.Context, delegator string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.delegations[strings.TrimSpace(delegator)], nil
}

func (s *Store) SaveDelegation(_ context.Context, delegation entities.Delegation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delegations[strings.TrimSpace(delegation.Delegator)] = strings.TrimSpace(delegation.Delegatee)
	return nil
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
