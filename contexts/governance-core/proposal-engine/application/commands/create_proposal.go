package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "polity/contexts/governance-core/proposal-engine/application"
	"polity/contexts/governance-core/proposal-engine/domain/entities"
	domainerrors "polity/contexts/governance-core/proposal-engine/domain/errors"
	"polity/contexts/governance-core/proposal-engine/ports"
)

// CreateProposalCommand opens a new proposal. The description is opaque
// text and is not validated.
type CreateProposalCommand struct {
	CallerID    string
	Description string
}

// ProposalUseCase drives the proposal lifecycle: creation, weighted voting,
// and irreversible execution. State is derived, never stored: a proposal is
// open while now is within start time plus the CURRENT voting period, then
// closed-pending until executed.
type ProposalUseCase struct {
	Proposals  ports.ProposalRepository
	Parameters ports.ParameterRepository
	Membership ports.MembershipDirectory
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc ProposalUseCase) CreateProposal(ctx context.Context, cmd CreateProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	logger.Info("create proposal started",
		"event", "proposal_create_started",
		"module", "governance-core/proposal-engine",
		"layer", "application",
		"proposer", caller,
	)

	if caller == "" {
		return entities.Proposal{}, domainerrors.ErrInvalidAccount
	}
	if err := uc.requireEligibleMember(ctx, caller); err != nil {
		return entities.Proposal{}, err
	}
	power, err := uc.Membership.VotingPower(ctx, caller)
	if err != nil {
		return entities.Proposal{}, err
	}
	if power == 0 {
		return entities.Proposal{}, domainerrors.ErrZeroVotingPower
	}

	id, err := uc.Proposals.NextProposalID(ctx)
	if err != nil {
		return entities.Proposal{}, err
	}
	now := uc.now()
	proposal := entities.Proposal{
		ID:          id,
		Proposer:    caller,
		Description: cmd.Description,
		StartTime:   now,
		UpdatedAt:   now,
	}
	if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
		return entities.Proposal{}, err
	}
	if err := uc.appendEvent(ctx, "proposal.created", proposal.ID, now, map[string]any{
		"proposal_id": proposal.ID,
		"proposer":    proposal.Proposer,
		"description": proposal.Description,
		"start_time":  proposal.StartTime.Format(time.RFC3339),
	}); err != nil {
		return entities.Proposal{}, err
	}

	logger.Info("proposal created",
		"event", "proposal_created",
		"module", "governance-core/proposal-engine",
		"layer", "application",
		"proposal_id", proposal.ID,
		"proposer", caller,
	)
	return proposal, nil
}

func (uc ProposalUseCase) requireEligibleMember(ctx context.Context, account string) error {
	status, err := uc.Membership.MemberStatus(ctx, account)
	if err != nil {
		return err
	}
	if !status.Approved {
		return domainerrors.ErrNotMember
	}
	if !status.CompliancePassed {
		return domainerrors.ErrNotCompliant
	}
	return nil
}

func (uc ProposalUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc ProposalUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	proposalID uint64,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newProposalEnvelope(eventID, eventType, proposalID, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
