package queries

import (
	"context"
	"strings"

	"polity/contexts/governance-core/proposal-engine/domain/entities"
	domainerrors "polity/contexts/governance-core/proposal-engine/domain/errors"
	"polity/contexts/governance-core/proposal-engine/ports"
)

// ProposalView is a proposal with its status derived against the current
// voting period.
type ProposalView struct {
	Proposal entities.Proposal
	Status   entities.Status
}

type ProposalQueries struct {
	Proposals  ports.ProposalRepository
	Parameters ports.ParameterRepository
	Clock      ports.Clock
}

func (q ProposalQueries) GetProposal(ctx context.Context, id uint64) (ProposalView, error) {
	proposal, err := q.Proposals.GetProposal(ctx, id)
	if err != nil {
		return ProposalView{}, err
	}
	params, err := q.Parameters.GetParameters(ctx)
	if err != nil {
		return ProposalView{}, err
	}
	return ProposalView{
		Proposal: proposal,
		Status:   proposal.Status(q.Clock.Now().UTC(), params.VotingPeriod),
	}, nil
}

func (q ProposalQueries) ListProposals(ctx context.Context) ([]ProposalView, error) {
	proposals, err := q.Proposals.ListProposals(ctx)
	if err != nil {
		return nil, err
	}
	params, err := q.Parameters.GetParameters(ctx)
	if err != nil {
		return nil, err
	}
	now := q.Clock.Now().UTC()
	views := make([]ProposalView, 0, len(proposals))
	for _, proposal := range proposals {
		views = append(views, ProposalView{
			Proposal: proposal,
			Status:   proposal.Status(now, params.VotingPeriod),
		})
	}
	return views, nil
}

func (q ProposalQueries) HasVoted(ctx context.Context, proposalID uint64, voter string) (bool, error) {
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return false, domainerrors.ErrInvalidAccount
	}
	return q.Proposals.HasVoted(ctx, proposalID, voter)
}

func (q ProposalQueries) GetParameters(ctx context.Context) (entities.Parameters, error) {
	return q.Parameters.GetParameters(ctx)
}
