package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "polity/contexts/governance-core/membership-service/application"
	"polity/contexts/governance-core/membership-service/domain/entities"
	domainerrors "polity/contexts/governance-core/membership-service/domain/errors"
	"polity/contexts/governance-core/membership-service/ports"
)

// AddMemberCommand approves a new governance participant.
type AddMemberCommand struct {
	ActorID          string
	Account          string
	BonusVotingPower uint64
}

// RemoveMemberCommand resets a member record to defaults. The member roll
// keeps the address; aggregate voting power still walks it.
type RemoveMemberCommand struct {
	ActorID string
	Account string
}

// UpdateComplianceCommand flips the governance compliance flag and drives
// the ledger-side flag in lockstep.
type UpdateComplianceCommand struct {
	ActorID string
	Account string
	Status  bool
}

// SetBonusCommand overwrites a member's admin-assigned bonus weight.
// No bounds are enforced on the value.
type SetBonusCommand struct {
	ActorID          string
	Account          string
	BonusVotingPower uint64
}

// MembershipUseCase orchestrates admin-gated membership mutations. Every
// precondition is checked before the first write so failures leave state
// untouched.
type MembershipUseCase struct {
	Members    ports.MemberRepository
	Authorizer ports.Authorizer
	Ledger     ports.BalanceLedger
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc MembershipUseCase) AddMember(ctx context.Context, cmd AddMemberCommand) (entities.Member, error) {
	logger := application.ResolveLogger(uc.Logger)
	account := strings.TrimSpace(cmd.Account)
	logger.Info("add member started",
		"event", "membership_add_started",
		"module", "governance-core/membership-service",
		"layer", "application",
		"actor", strings.TrimSpace(cmd.ActorID),
		"account", account,
		"bonus_voting_power", cmd.BonusVotingPower,
	)

	if account == "" {
		return entities.Member{}, domainerrors.ErrInvalidAccount
	}
	if err := uc.Authorizer.RequirePermission(ctx, cmd.ActorID, permissionManageMembers); err != nil {
		logger.Warn("add member rejected",
			"event", "membership_add_forbidden",
			"module", "governance-core/membership-service",
			"layer", "application",
			"actor", strings.TrimSpace(cmd.ActorID),
			"account", account,
			"error", err.Error(),
		)
		return entities.Member{}, err
	}
	if existing, found, err := uc.Members.GetMember(ctx, account); err != nil {
		return entities.Member{}, err
	} else if found && existing.Approved {
		return entities.Member{}, domainerrors.ErrAlreadyMember
	}

	now := uc.now()
	member := entities.Member{
		Address:          account,
		Approved:         true,
		CompliancePassed: false,
		BonusVotingPower: cmd.BonusVotingPower,
		AddedAt:          now,
		UpdatedAt:        now,
	}
	if err := uc.Members.SaveMember(ctx, member); err != nil {
		return entities.Member{}, err
	}
	if err := uc.Members.AppendToRoll(ctx, account); err != nil {
		return entities.Member{}, err
	}
	if err := uc.appendEvent(ctx, "membership.added", account, now, map[string]any{
		"account":            account,
		"bonus_voting_power": cmd.BonusVotingPower,
	}); err != nil {
		return entities.Member{}, err
	}

	logger.Info("member added",
		"event", "membership_added",
		"module", "governance-core/membership-service",
		"layer", "application",
		"account", account,
		"bonus_voting_power", cmd.BonusVotingPower,
	)
	return member, nil
}

func (uc MembershipUseCase) RemoveMember(ctx context.Context, cmd RemoveMemberCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	account := strings.TrimSpace(cmd.Account)
	logger.Info("remove member started",
		"event", "membership_remove_started",
		"module", "governance-core/membership-service",
		"layer", "application",
		"actor", strings.TrimSpace(cmd.ActorID),
		"account", account,
	)

	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := uc.Authorizer.RequirePermission(ctx, cmd.ActorID, permissionManageMembers); err != nil {
		return err
	}
	member, found, err := uc.Members.GetMember(ctx, account)
	if err != nil {
		return err
	}
	if !found || !member.Approved {
		return domainerrors.ErrNotMember
	}

	// The record is deleted; the roll entry deliberately survives, so the
	// removed address still contributes balance-derived weight to the
	// aggregate. This mirrors the source ledger's list semantics.
	if err := uc.Members.RemoveMember(ctx, account); err != nil {
		return err
	}
	now := uc.now()
	if err := uc.appendEvent(ctx, "membership.removed", account, now, map[string]any{
		"account": account,
	}); err != nil {
		return err
	}

	logger.Info("member removed",
		"event", "membership_removed",
		"module", "governance-core/membership-service",
		"layer", "application",
		"account", account,
	)
	return nil
}

func (uc MembershipUseCase) UpdateCompliance(ctx context.Context, cmd UpdateComplianceCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	account := strings.TrimSpace(cmd.Account)
	logger.Info("update compliance started",
		"event", "membership_compliance_started",
		"module", "governance-core/membership-service",
		"layer", "application",
		"actor", strings.TrimSpace(cmd.ActorID),
		"account", account,
		"status", cmd.Status,
	)

	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := uc.Authorizer.RequirePermission(ctx, cmd.ActorID, permissionManageMembers); err != nil {
		return err
	}
	member, found, err := uc.Members.GetMember(ctx, account)
	if err != nil {
		return err
	}
	if !found || !member.Approved {
		return domainerrors.ErrNotMember
	}

	// Ledger first: the two compliance flags stay in lockstep by
	// construction, and a ledger rejection must leave governance state
	// untouched.
	if err := uc.Ledger.SetComplianceStatus(ctx, account, cmd.Status); err != nil {
		logger.Error("ledger compliance propagation failed",
			"event", "membership_compliance_ledger_failed",
			"module", "governance-core/membership-service",
			"layer", "application",
			"account", account,
			"error", err.Error(),
		)
		return err
	}

	now := uc.now()
	member.CompliancePassed = cmd.Status
	member.UpdatedAt = now
	if err := uc.Members.SaveMember(ctx, member); err != nil {
		return err
	}
	if err := uc.appendEvent(ctx, "membership.compliance_updated", account, now, map[string]any{
		"account": account,
		"status":  cmd.Status,
	}); err != nil {
		return err
	}

	logger.Info("compliance updated",
		"event", "membership_compliance_updated",
		"module", "governance-core/membership-service",
		"layer", "application",
		"account", account,
		"status", cmd.Status,
	)
	return nil
}

func (uc MembershipUseCase) SetBonusVotingPower(ctx context.Context, cmd SetBonusCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	account := strings.TrimSpace(cmd.Account)
	logger.Info("set bonus voting power started",
		"event", "membership_bonus_started",
		"module", "governance-core/membership-service",
		"layer", "application",
		"actor", strings.TrimSpace(cmd.ActorID),
		"account", account,
		"bonus_voting_power", cmd.BonusVotingPower,
	)

	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := uc.Authorizer.RequirePermission(ctx, cmd.ActorID, permissionManageMembers); err != nil {
		return err
	}
	member, found, err := uc.Members.GetMember(ctx, account)
	if err != nil {
		return err
	}
	if !found || !member.Approved {
		return domainerrors.ErrNotMember
	}

	now := uc.now()
	member.BonusVotingPower = cmd.BonusVotingPower
	member.UpdatedAt = now
	if err := uc.Members.SaveMember(ctx, member); err != nil {
		return err
	}
	if err := uc.appendEvent(ctx, "membership.bonus_updated", account, now, map[string]any{
		"account":            account,
		"bonus_voting_power": cmd.BonusVotingPower,
	}); err != nil {
		return err
	}

	logger.Info("bonus voting power updated",
		"event", "membership_bonus_updated",
		"module", "governance-core/membership-service",
		"layer", "application",
		"account", account,
		"bonus_voting_power", cmd.BonusVotingPower,
	)
	return nil
}

func (uc MembershipUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc MembershipUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	account string,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newMembershipEnvelope(eventID, eventType, account, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
