package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"polity/contexts/governance-core/proposal-engine/application/commands"
	"polity/contexts/governance-core/proposal-engine/application/queries"
	httptransport "polity/contexts/governance-core/proposal-engine/transport/http"
)

type Handler struct {
	Proposals  commands.ProposalUseCase
	Parameters commands.ParameterUseCase
	Queries    queries.ProposalQueries
	Logger     *slog.Logger
}

func (h Handler) CreateProposalHandler(
	ctx context.Context,
	callerID string,
	req httptransport.CreateProposalRequest,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.CreateProposal(ctx, commands.CreateProposalCommand{
		CallerID:    callerID,
		Description: req.Description,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	view, err := h.Queries.GetProposal(ctx, proposal.ID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return proposalResponse(view), nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	callerID string,
	proposalID uint64,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Proposals.CastVote(ctx, commands.CastVoteCommand{
		CallerID:   callerID,
		ProposalID: proposalID,
		Support:    req.Support,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		ProposalID:   result.ProposalID,
		Support:      result.Support,
		Weight:       result.Weight,
		ForVotes:     result.ForVotes,
		AgainstVotes: result.AgainstVotes,
	}, nil
}

func (h Handler) ExecuteProposalHandler(
	ctx context.Context,
	callerID string,
	proposalID uint64,
) (httptransport.ExecuteProposalResponse, error) {
	result, err := h.Proposals.ExecuteProposal(ctx, commands.ExecuteProposalCommand{
		CallerID:   callerID,
		ProposalID: proposalID,
	})
	if err != nil {
		return httptransport.ExecuteProposalResponse{}, err
	}
	return httptransport.ExecuteProposalResponse{
		ProposalID:       result.Proposal.ID,
		Executed:         result.Proposal.Executed,
		ForVotes:         result.Proposal.ForVotes,
		AgainstVotes:     result.Proposal.AgainstVotes,
		TotalVotes:       result.TotalVotes,
		TotalVotingPower: result.TotalVotingPower,
		QuorumVotes:      result.QuorumVotes,
	}, nil
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalResponse, error) {
	view, err := h.Queries.GetProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return proposalResponse(view), nil
}

func (h Handler) ListProposalsHandler(ctx context.Context) (httptransport.ProposalListResponse, error) {
	views, err := h.Queries.ListProposals(ctx)
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(views))
	for _, view := range views {
		items = append(items, proposalResponse(view))
	}
	return httptransport.ProposalListResponse{Proposals: items}, nil
}

func (h Handler) HasVotedHandler(ctx context.Context, proposalID uint64, voter string) (httptransport.HasVotedResponse, error) {
	voted, err := h.Queries.HasVoted(ctx, proposalID, voter)
	if err != nil {
		return httptransport.HasVotedResponse{}, err
	}
	return httptransport.HasVotedResponse{
		ProposalID: proposalID,
		Voter:      voter,
		HasVoted:   voted,
	}, nil
}

func (h Handler) GetParametersHandler(ctx context.Context) (httptransport.ParametersResponse, error) {
	params, err := h.Queries.GetParameters(ctx)
	if err != nil {
		return httptransport.ParametersResponse{}, err
	}
	return parametersResponse(params.VotingPeriod, params.QuorumPercentage), nil
}

func (h Handler) SetQuorumHandler(
	ctx context.Context,
	actorID string,
	req httptransport.SetQuorumRequest,
) (httptransport.ParametersResponse, error) {
	params, err := h.Parameters.SetQuorumPercentage(ctx, commands.SetQuorumCommand{
		ActorID:          actorID,
		QuorumPercentage: req.QuorumPercentage,
	})
	if err != nil {
		return httptransport.ParametersResponse{}, err
	}
	return parametersResponse(params.VotingPeriod, params.QuorumPercentage), nil
}

func (h Handler) SetVotingPeriodHandler(
	ctx context.Context,
	actorID string,
	req httptransport.SetVotingPeriodRequest,
) (httptransport.ParametersResponse, error) {
	params, err := h.Parameters.SetVotingPeriod(ctx, commands.SetVotingPeriodCommand{
		ActorID:      actorID,
		VotingPeriod: time.Duration(req.VotingPeriodSeconds) * time.Second,
	})
	if err != nil {
		return httptransport.ParametersResponse{}, err
	}
	return parametersResponse(params.VotingPeriod, params.QuorumPercentage), nil
}

func proposalResponse(view queries.ProposalView) httptransport.ProposalResponse {
	return httptransport.ProposalResponse{
		ID:           view.Proposal.ID,
		Proposer:     view.Proposal.Proposer,
		Description:  view.Proposal.Description,
		ForVotes:     view.Proposal.ForVotes,
		AgainstVotes: view.Proposal.AgainstVotes,
		StartTime:    view.Proposal.StartTime.Format(time.RFC3339),
		Executed:     view.Proposal.Executed,
		Status:       string(view.Status),
	}
}

func parametersResponse(period time.Duration, quorum uint64) httptransport.ParametersResponse {
	return httptransport.ParametersResponse{
		VotingPeriodSeconds: int64(period.Seconds()),
		QuorumPercentage:    quorum,
	}
}
