package queries

import (
	"context"
	"strings"

	domainerrors "polity/contexts/governance-core/membership-service/domain/errors"
	"polity/contexts/governance-core/membership-service/ports"
)

// VotingPowerUseCase derives effective voting weight: resolve the one-hop
// delegation, then combine the target's external balance with the target's
// bonus weight. A delegator's own bonus is discarded once delegated.
type VotingPowerUseCase struct {
	Members     ports.MemberRepository
	Delegations ports.DelegationRepository
	Ledger      ports.BalanceLedger
}

func (uc VotingPowerUseCase) VotingPower(ctx context.Context, account string) (uint64, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return 0, domainerrors.ErrInvalidAccount
	}

	target := account
	delegatee, err := uc.Delegations.GetDelegation(ctx, account)
	if err != nil {
		return 0, err
	}
	if delegatee != "" {
		target = delegatee
	}

	balance, err := uc.Ledger.BalanceOf(ctx, target)
	if err != nil {
		return 0, err
	}
	// Nonexistent or removed targets naturally default to zero bonus.
	var bonus uint64
	if member, found, err := uc.Members.GetMember(ctx, target); err != nil {
		return 0, err
	} else if found {
		bonus = member.BonusVotingPower
	}
	return balance + bonus, nil
}

// TotalVotingPower sums VotingPower over the full member roll. The roll is
// append-only and keeps removed addresses, so their balance-derived weight
// still counts.
func (uc VotingPowerUseCase) TotalVotingPower(ctx context.Context) (uint64, error) {
	roll, err := uc.Members.ListRoll(ctx)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, address := range roll {
		power, err := uc.VotingPower(ctx, address)
		if err != nil {
			return 0, err
		}
		total += power
	}
	return total, nil
}
