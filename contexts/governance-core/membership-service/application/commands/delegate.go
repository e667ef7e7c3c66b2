package commands

import (
	"context"
	"log/slog"
	"strings"

	application "polity/contexts/governance-core/membership-service/application"
	"polity/contexts/governance-core/membership-service/domain/entities"
	domainerrors "polity/contexts/governance-core/membership-service/domain/errors"
	"polity/contexts/governance-core/membership-service/ports"
)

// DelegateCommand assigns the caller's voting weight source to another
// account. Self-delegation is allowed; it resolves to the caller's own
// balance and bonus and is functionally idempotent.
type DelegateCommand struct {
	CallerID  string
	Delegatee string
}

// DelegateUseCase records one-hop delegations. No history is retained;
// each call overwrites the previous entry.
type DelegateUseCase struct {
	Members     ports.MemberRepository
	Delegations ports.DelegationRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func (uc DelegateUseCase) Execute(ctx context.Context, cmd DelegateCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	delegatee := strings.TrimSpace(cmd.Delegatee)
	logger.Info("delegate started",
		"event", "membership_delegate_started",
		"module", "governance-core/membership-service",
		"layer", "application",
		"delegator", caller,
		"delegatee", delegatee,
	)

	if caller == "" {
		return domainerrors.ErrInvalidAccount
	}
	if delegatee == "" {
		return domainerrors.ErrNullDelegatee
	}
	member, found, err := uc.Members.GetMember(ctx, caller)
	if err != nil {
		return err
	}
	if !found || !member.Approved {
		return domainerrors.ErrNotMember
	}
	if !member.CompliancePassed {
		return domainerrors.ErrNotCompliant
	}

	previous, err := uc.Delegations.GetDelegation(ctx, caller)
	if err != nil {
		return err
	}

	now := uc.Clock.Now().UTC()
	if err := uc.Delegations.SaveDelegation(ctx, entities.Delegation{
		Delegator: caller,
		Delegatee: delegatee,
		UpdatedAt: now,
	}); err != nil {
		return err
	}

	if uc.Outbox != nil {
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return err
		}
		envelope, err := newMembershipEnvelope(eventID, "delegation.changed", caller, now, map[string]any{
			"delegator":          caller,
			"previous_delegatee": previous,
			"new_delegatee":      delegatee,
		})
		if err != nil {
			return err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return err
		}
	}

	logger.Info("delegation changed",
		"event", "membership_delegation_changed",
		"module", "governance-core/membership-service",
		"layer", "application",
		"delegator", caller,
		"previous_delegatee", previous,
		"new_delegatee", delegatee,
	)
	return nil
}
