package membershipadapter

import (
	"context"

	membershipqueries "polity/contexts/governance-core/membership-service/application/queries"
	"polity/contexts/governance-core/proposal-engine/ports"
)

// Directory bridges the in-process membership service into the proposal
// engine's membership port.
type Directory struct {
	Members membershipqueries.MemberQueries
	Power   membershipqueries.VotingPowerUseCase
}

func (d Directory) MemberStatus(ctx context.Context, account string) (ports.MemberStatus, error) {
	member, found, err := d.Members.GetMember(ctx, account)
	if err != nil {
		return ports.MemberStatus{}, err
	}
	if !found {
		return ports.MemberStatus{}, nil
	}
	return ports.MemberStatus{
		Approved:         member.Approved,
		CompliancePassed: member.CompliancePassed,
	}, nil
}

func (d Directory) VotingPower(ctx context.Context, account string) (uint64, error) {
	return d.Power.VotingPower(ctx, account)
}

func (d Directory) TotalVotingPower(ctx context.Context) (uint64, error) {
	return d.Power.TotalVotingPower(ctx)
}
