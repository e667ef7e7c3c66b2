package ports

import (
	"context"
	"time"

	"polity/contexts/governance-core/proposal-engine/domain/entities"
	"polity/internal/shared/events"
)

type ProposalRepository interface {
	// NextProposalID allocates the next sequential identifier, starting at 0.
	NextProposalID(ctx context.Context) (uint64, error)
	SaveProposal(ctx context.Context, proposal entities.Proposal) error
	GetProposal(ctx context.Context, id uint64) (entities.Proposal, error)
	ListProposals(ctx context.Context) ([]entities.Proposal, error)
	HasVoted(ctx context.Context, proposalID uint64, voter string) (bool, error)
	// RecordVote persists the updated tallies together with the write-once
	// (voter, proposal) mark.
	RecordVote(ctx context.Context, proposal entities.Proposal, voter string) error
}

type ParameterRepository interface {
	GetParameters(ctx context.Context) (entities.Parameters, error)
	SaveParameters(ctx context.Context, params entities.Parameters) error
}

// MemberStatus is the membership snapshot the proposal engine gates on.
type MemberStatus struct {
	Approved         bool
	CompliancePassed bool
}

// MembershipDirectory is served by the membership service: eligibility
// checks plus the voting-power derivation (delegation included).
type MembershipDirectory interface {
	MemberStatus(ctx context.Context, account string) (MemberStatus, error)
	VotingPower(ctx context.Context, account string) (uint64, error)
	TotalVotingPower(ctx context.Context) (uint64, error)
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type Authorizer interface {
	RequirePermission(ctx context.Context, account string, permission string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
