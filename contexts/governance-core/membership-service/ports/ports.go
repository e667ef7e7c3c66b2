package ports

import (
	"context"
	"time"

	"polity/contexts/governance-core/membership-service/domain/entities"
	"polity/internal/shared/events"
)

type MemberRepository interface {
	GetMember(ctx context.Context, address string) (entities.Member, bool, error)
	SaveMember(ctx context.Context, member entities.Member) error
	// RemoveMember deletes the record; the roll keeps the address.
	RemoveMember(ctx context.Context, address string) error
	// AppendToRoll records an approval on the append-only member roll.
	// The roll is never pruned, not even on removal.
	AppendToRoll(ctx context.Context, address string) error
	ListRoll(ctx context.Context) ([]string, error)
}

type DelegationRepository interface {
	// GetDelegation returns the delegatee or "" when the delegator has no
	// delegation set.
	GetDelegation(ctx context.Context, delegator string) (string, error)
	SaveDelegation(ctx context.Context, delegation entities.Delegation) error
}

// BalanceLedger is the external fungible-balance collaborator. The core
// reads balances and drives the ledger-side compliance flag; everything
// else about the ledger is out of scope.
type BalanceLedger interface {
	BalanceOf(ctx context.Context, account string) (uint64, error)
	SetComplianceStatus(ctx context.Context, account string, status bool) error
}

type Authorizer interface {
	RequirePermission(ctx context.Context, account string, permission string) error
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
