package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"polity/contexts/governance-core/proposal-engine/domain/entities"
	domainerrors "polity/contexts/governance-core/proposal-engine/domain/errors"
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

	proposals map[uint64]entities.Proposal
	nextID    uint64
	votes     map[string]bool
	params    entities.Parameters
	outbox    map[string]outboxRecord
}

// NewStore seeds the global parameters; proposal ids start at 0.
func NewStore(params entities.Parameters) *Store {
	return &Store{
		proposals: make(map[uint64]entities.Proposal),
		votes:     make(map[string]bool),
		params:    params,
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) NextProposalID(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id, nil
}

func (s *Store) SaveProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[proposal.ID] = proposal
	return nil
}

func (s *Store) GetProposal(_ context.Context, id uint64) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[id]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) ListProposals(_ context.Context) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		items = append(items, proposal)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *Store) HasVoted(_ context.Context, proposalID uint64, voter string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.votes[voteKey(proposalID, voter)], nil
}

func (s *Store) RecordVote(_ context.Context, proposal entities.Proposal, voter string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey(proposal.ID, voter)
	if s.votes[key] {
		return domainerrors.ErrAlreadyVoted
	}
	if _, ok := s.proposals[proposal.ID]; !ok {
		return domainerrors.ErrProposalNotFound
	}
	s.proposals[proposal.ID] = proposal
	s.votes[key] = true
	return nil
}

func (s *Store) GetParameters(_ context.Context) (entities.Parameters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params, nil
}

func (s *Store) SaveParameters(_ context.Context, params entities.Parameters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = params
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

func voteKey(proposalID uint64, voter string) string {
	return fmt.Sprintf("%d:%s", proposalID, strings.TrimSpace(voter))
}
