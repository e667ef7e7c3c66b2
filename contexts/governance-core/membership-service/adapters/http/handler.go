package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"polity/contexts/governance-core/membership-service/application/commands"
	"polity/contexts/governance-core/membership-service/application/queries"
	"polity/contexts/governance-core/membership-service/domain/entities"
	httptransport "polity/contexts/governance-core/membership-service/transport/http"
)

type Handler struct {
	Membership commands.MembershipUseCase
	Delegate   commands.DelegateUseCase
	Members    queries.MemberQueries
	Power      queries.VotingPowerUseCase
	Logger     *slog.Logger
}

func (h Handler) AddMemberHandler(
	ctx context.Context,
	actorID string,
	req httptransport.AddMemberRequest,
) (httptransport.MemberResponse, error) {
	member, err := h.Membership.AddMember(ctx, commands.AddMemberCommand{
		ActorID:          actorID,
		Account:          req.Account,
		BonusVotingPower: req.BonusVotingPower,
	})
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return memberResponse(member), nil
}

func (h Handler) RemoveMemberHandler(ctx context.Context, actorID string, account string) error {
	return h.Membership.RemoveMember(ctx, commands.RemoveMemberCommand{
		ActorID: actorID,
		Account: account,
	})
}

func (h Handler) UpdateComplianceHandler(
	ctx context.Context,
	actorID string,
	account string,
	req httptransport.UpdateComplianceRequest,
) error {
	return h.Membership.UpdateCompliance(ctx, commands.UpdateComplianceCommand{
		ActorID: actorID,
		Account: account,
		Status:  req.Status,
	})
}

func (h Handler) SetBonusHandler(
	ctx context.Context,
	actorID string,
	account string,
	req httptransport.SetBonusRequest,
) error {
	return h.Membership.SetBonusVotingPower(ctx, commands.SetBonusCommand{
		ActorID:          actorID,
		Account:          account,
		BonusVotingPower: req.BonusVotingPower,
	})
}

func (h Handler) DelegateHandler(
	ctx context.Context,
	callerID string,
	req httptransport.DelegateRequest,
) error {
	return h.Delegate.Execute(ctx, commands.DelegateCommand{
		CallerID:  callerID,
		Delegatee: req.Delegatee,
	})
}

func (h Handler) GetMemberHandler(ctx context.Context, account string) (httptransport.MemberResponse, bool, error) {
	member, found, err := h.Members.GetMember(ctx, account)
	if err != nil || !found {
		return httptransport.MemberResponse{}, found, err
	}
	return memberResponse(member), true, nil
}

func (h Handler) ListMembersHandler(ctx context.Context) (httptransport.MemberListResponse, error) {
	members, err := h.Members.ListMembers(ctx)
	if err != nil {
		return httptransport.MemberListResponse{}, err
	}
	items := make([]httptransport.MemberResponse, 0, len(members))
	for _, member := range members {
		items = append(items, memberResponse(member))
	}
	return httptransport.MemberListResponse{Members: items}, nil
}

func (h Handler) VotingPowerHandler(ctx context.Context, account string) (httptransport.VotingPowerResponse, error) {
	power, err := h.Power.VotingPower(ctx, account)
	if err != nil {
		return httptransport.VotingPowerResponse{}, err
	}
	return httptransport.VotingPowerResponse{
		Account:     account,
		VotingPower: power,
	}, nil
}

func (h Handler) TotalVotingPowerHandler(ctx context.Context) (httptransport.TotalVotingPowerResponse, error) {
	total, err := h.Power.TotalVotingPower(ctx)
	if err != nil {
		return httptransport.TotalVotingPowerResponse{}, err
	}
	return httptransport.TotalVotingPowerResponse{TotalVotingPower: total}, nil
}

func memberResponse(member entities.Member) httptransport.MemberResponse {
	return httptransport.MemberResponse{
		Account:          member.Address,
		Approved:         member.Approved,
		CompliancePassed: member.CompliancePassed,
		BonusVotingPower: member.BonusVotingPower,
		AddedAt:          member.AddedAt.Format(time.RFC3339),
	}
}
