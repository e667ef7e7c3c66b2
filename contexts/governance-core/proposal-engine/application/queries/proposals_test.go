package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"polity/contexts/governance-core/proposal-engine/adapters/memory"
	"polity/contexts/governance-core/proposal-engine/domain/entities"
	domainerrors "polity/contexts/governance-core/proposal-engine/domain/errors"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func TestProposalStatusDerivation(t *testing.T) {
	start := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	clock := &stepClock{now: start}
	store := memory.NewStore(entities.Parameters{
		VotingPeriod:     100 * time.Second,
		QuorumPercentage: 10,
	})
	queries := ProposalQueries{Proposals: store, Parameters: store, Clock: clock}

	if err := store.SaveProposal(context.Background(), entities.Proposal{
		ID:        0,
		Proposer:  "alice",
		StartTime: start,
		UpdatedAt: start,
	}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	view, err := queries.GetProposal(context.Background(), 0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.Status != entities.StatusOpen {
		t.Fatalf("status = %s, want open", view.Status)
	}

	// The boundary instant itself is still open.
	clock.now = start.Add(100 * time.Second)
	view, _ = queries.GetProposal(context.Background(), 0)
	if view.Status != entities.StatusOpen {
		t.Fatalf("status at boundary = %s, want open", view.Status)
	}

	clock.now = start.Add(101 * time.Second)
	view, _ = queries.GetProposal(context.Background(), 0)
	if view.Status != entities.StatusClosedPending {
		t.Fatalf("status after window = %s, want closed_pending", view.Status)
	}

	executed := view.Proposal
	executed.Executed = true
	if err := store.SaveProposal(context.Background(), executed); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	view, _ = queries.GetProposal(context.Background(), 0)
	if view.Status != entities.StatusExecuted {
		t.Fatalf("status = %s, want executed", view.Status)
	}
}

func TestGetProposalNotFound(t *testing.T) {
	store := memory.NewStore(entities.Parameters{VotingPeriod: time.Minute, QuorumPercentage: 10})
	queries := ProposalQueries{Proposals: store, Parameters: store, Clock: &stepClock{now: time.Now().UTC()}}

	_, err := queries.GetProposal(context.Background(), 42)
	if !errors.Is(err, domainerrors.ErrProposalNotFound) {
		t.Fatalf("expected ErrProposalNotFound, got %v", err)
	}
}
