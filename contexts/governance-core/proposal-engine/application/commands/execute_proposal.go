package commands

import (
	"context"
	"strings"

	application "polity/contexts/governance-core/proposal-engine/application"
	"polity/contexts/governance-core/proposal-engine/domain/entities"
	domainerrors "polity/contexts/governance-core/proposal-engine/domain/errors"
)

// ExecuteProposalCommand finalizes a proposal whose window has elapsed.
// Execution is open to any caller; the outcome rules are what gate it.
type ExecuteProposalCommand struct {
	CallerID   string
	ProposalID uint64
}

// ExecuteProposalResult carries the evaluated outcome figures.
type ExecuteProposalResult struct {
	Proposal         entities.Proposal
	TotalVotes       uint64
	TotalVotingPower uint64
	QuorumVotes      uint64
}

// ExecuteProposal applies the quorum and strict-majority rules at execution
// time: totalVotes must reach floor(totalPower * quorumPct / 100) and
// forVotes must strictly exceed againstVotes (ties fail). On success the
// executed flag is set; it never reverts. Recording pass/fail is the sole
// execution effect.
func (uc ProposalUseCase) ExecuteProposal(ctx context.Context, cmd ExecuteProposalCommand) (ExecuteProposalResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	logger.Info("execute proposal started",
		"event", "proposal_execute_started",
		"module", "governance-core/proposal-engine",
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"caller", caller,
	)

	proposal, err := uc.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return ExecuteProposalResult{}, err
	}
	if proposal.Executed {
		return ExecuteProposalResult{}, domainerrors.ErrAlreadyExecuted
	}

	params, err := uc.Parameters.GetParameters(ctx)
	if err != nil {
		return ExecuteProposalResult{}, err
	}
	now := uc.now()
	if proposal.AcceptsVotes(now, params.VotingPeriod) {
		return ExecuteProposalResult{}, domainerrors.ErrVotingNotElapsed
	}

	totalPower, err := uc.Membership.TotalVotingPower(ctx)
	if err != nil {
		return ExecuteProposalResult{}, err
	}
	totalVotes := proposal.ForVotes + proposal.AgainstVotes
	quorumVotes := params.QuorumVotes(totalPower)

	if totalVotes < quorumVotes {
		logger.Warn("execution rejected on quorum",
			"event", "proposal_execute_quorum_failed",
			"module", "governance-core/proposal-engine",
			"layer", "application",
			"proposal_id", proposal.ID,
			"total_votes", totalVotes,
			"quorum_votes", quorumVotes,
			"total_voting_power", totalPower,
		)
		return ExecuteProposalResult{}, domainerrors.ErrQuorumNotReached
	}
	if proposal.ForVotes <= proposal.AgainstVotes {
		logger.Warn("execution rejected on majority",
			"event", "proposal_execute_majority_failed",
			"module", "governance-core/proposal-engine",
			"layer", "application",
			"proposal_id", proposal.ID,
			"for_votes", proposal.ForVotes,
			"against_votes", proposal.AgainstVotes,
		)
		return ExecuteProposalResult{}, domainerrors.ErrProposalNotPassing
	}

	proposal.Executed = true
	proposal.UpdatedAt = now
	if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
		return ExecuteProposalResult{}, err
	}
	if err := uc.appendEvent(ctx, "proposal.executed", proposal.ID, now, map[string]any{
		"proposal_id":        proposal.ID,
		"for_votes":          proposal.ForVotes,
		"against_votes":      proposal.AgainstVotes,
		"total_voting_power": totalPower,
		"quorum_votes":       quorumVotes,
	}); err != nil {
		return ExecuteProposalResult{}, err
	}

	logger.Info("proposal executed",
		"event", "proposal_executed",
		"module", "governance-core/proposal-engine",
		"layer", "application",
		"proposal_id", proposal.ID,
		"for_votes", proposal.ForVotes,
		"against_votes", proposal.AgainstVotes,
	)
	return ExecuteProposalResult{
		Proposal:         proposal,
		TotalVotes:       totalVotes,
		TotalVotingPower: totalPower,
		QuorumVotes:      quorumVotes,
	}, nil
}
