package commands

import (
	"context"
	"strings"

	application "polity/contexts/governance-core/proposal-engine/application"
	domainerrors "polity/contexts/governance-core/proposal-engine/domain/errors"
)

// CastVoteCommand records a weighted vote on an open proposal.
type CastVoteCommand struct {
	CallerID   string
	ProposalID uint64
	Support    bool
}

// CastVoteResult reports the weight that was counted.
type CastVoteResult struct {
	ProposalID   uint64
	Support      bool
	Weight       uint64
	ForVotes     uint64
	AgainstVotes uint64
}

// CastVote validates eligibility, the write-once vote mark, and the voting
// window against the CURRENT voting period, then adds the caller's full
// voting weight to one tally. A vote arriving after the window elapsed is
// rejected, never silently dropped.
func (uc ProposalUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	logger.Info("cast vote started",
		"event", "proposal_vote_started",
		"module", "governance-core/proposal-engine",
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"voter", caller,
		"support", cmd.Support,
	)

	if caller == "" {
		return CastVoteResult{}, domainerrors.ErrInvalidAccount
	}
	if err := uc.requireEligibleMember(ctx, caller); err != nil {
		return CastVoteResult{}, err
	}

	proposal, err := uc.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return CastVoteResult{}, err
	}
	voted, err := uc.Proposals.HasVoted(ctx, cmd.ProposalID, caller)
	if err != nil {
		return CastVoteResult{}, err
	}
	if voted {
		return CastVoteResult{}, domainerrors.ErrAlreadyVoted
	}

	params, err := uc.Parameters.GetParameters(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	now := uc.now()
	if !proposal.AcceptsVotes(now, params.VotingPeriod) {
		logger.Warn("vote rejected after window close",
			"event", "proposal_vote_window_closed",
			"module", "governance-core/proposal-engine",
			"layer", "application",
			"proposal_id", cmd.ProposalID,
			"voter", caller,
		)
		return CastVoteResult{}, domainerrors.ErrVotingClosed
	}

	weight, err := uc.Membership.VotingPower(ctx, caller)
	if err != nil {
		return CastVoteResult{}, err
	}
	if weight == 0 {
		return CastVoteResult{}, domainerrors.ErrZeroVotingPower
	}

	if cmd.Support {
		proposal.ForVotes += weight
	} else {
		proposal.AgainstVotes += weight
	}
	proposal.UpdatedAt = now
	if err := uc.Proposals.RecordVote(ctx, proposal, caller); err != nil {
		return CastVoteResult{}, err
	}
	if err := uc.appendEvent(ctx, "proposal.vote_cast", proposal.ID, now, map[string]any{
		"proposal_id": proposal.ID,
		"voter":       caller,
		"support":     cmd.Support,
		"weight":      weight,
	}); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "proposal_vote_cast",
		"module", "governance-core/proposal-engine",
		"layer", "application",
		"proposal_id", proposal.ID,
		"voter", caller,
		"support", cmd.Support,
		"weight", weight,
	)
	return CastVoteResult{
		ProposalID:   proposal.ID,
		Support:      cmd.Support,
		Weight:       weight,
		ForVotes:     proposal.ForVotes,
		AgainstVotes: proposal.AgainstVotes,
	}, nil
}
