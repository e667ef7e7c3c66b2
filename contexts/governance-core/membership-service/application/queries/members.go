package queries

import (
	"context"
	"strings"

	"polity/contexts/governance-core/membership-service/domain/entities"
	domainerrors "polity/contexts/governance-core/membership-service/domain/errors"
	"polity/contexts/governance-core/membership-service/ports"
)

// MemberQueries serves point reads of the registry and the roll.
type MemberQueries struct {
	Members     ports.MemberRepository
	Delegations ports.DelegationRepository
}

func (q MemberQueries) GetMember(ctx context.Context, account string) (entities.Member, bool, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return entities.Member{}, false, domainerrors.ErrInvalidAccount
	}
	return q.Members.GetMember(ctx, account)
}

// ListMembers returns current records in roll order. Removed addresses stay
// on the roll but have no record, so they are skipped here; duplicates from
// re-approval collapse to one entry.
func (q MemberQueries) ListMembers(ctx context.Context) ([]entities.Member, error) {
	roll, err := q.Members.ListRoll(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(roll))
	items := make([]entities.Member, 0, len(roll))
	for _, address := range roll {
		if seen[address] {
			continue
		}
		seen[address] = true
		member, found, err := q.Members.GetMember(ctx, address)
		if err != nil {
			return nil, err
		}
		if found {
			items = append(items, member)
		}
	}
	return items, nil
}

func (q MemberQueries) GetDelegation(ctx context.Context, delegator string) (string, error) {
	delegator = strings.TrimSpace(delegator)
	if delegator == "" {
		return "", domainerrors.ErrInvalidAccount
	}
	return q.Delegations.GetDelegation(ctx, delegator)
}
