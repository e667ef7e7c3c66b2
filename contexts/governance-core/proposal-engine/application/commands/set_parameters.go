package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "polity/contexts/governance-core/proposal-engine/application"
	"polity/contexts/governance-core/proposal-engine/domain/entities"
	domainerrors "polity/contexts/governance-core/proposal-engine/domain/errors"
	"polity/contexts/governance-core/proposal-engine/ports"
)

// SetQuorumCommand updates the global quorum percentage, bounds (0,100].
type SetQuorumCommand struct {
	ActorID          string
	QuorumPercentage uint64
}

// SetVotingPeriodCommand updates the global voting period. No bounds are
// enforced; a zero period closes every open window immediately.
type SetVotingPeriodCommand struct {
	ActorID      string
	VotingPeriod time.Duration
}

// ParameterUseCase mutates the admin-gated global parameters. Lifecycle
// checks always read the value current at check time, so changes here
// retroactively affect in-flight proposals.
type ParameterUseCase struct {
	Parameters ports.ParameterRepository
	Authorizer ports.Authorizer
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc ParameterUseCase) SetQuorumPercentage(ctx context.Context, cmd SetQuorumCommand) (entities.Parameters, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.ActorID)
	logger.Info("set quorum started",
		"event", "governance_set_quorum_started",
		"module", "governance-core/proposal-engine",
		"layer", "application",
		"actor", actor,
		"quorum_percentage", cmd.QuorumPercentage,
	)

	if err := uc.Authorizer.RequirePermission(ctx, actor, permissionManageParams); err != nil {
		return entities.Parameters{}, err
	}
	if cmd.QuorumPercentage == 0 || cmd.QuorumPercentage > 100 {
		return entities.Parameters{}, domainerrors.ErrInvalidQuorum
	}

	params, err := uc.Parameters.GetParameters(ctx)
	if err != nil {
		return entities.Parameters{}, err
	}
	now := uc.now()
	params.QuorumPercentage = cmd.QuorumPercentage
	params.UpdatedAt = now
	if err := uc.Parameters.SaveParameters(ctx, params); err != nil {
		return entities.Parameters{}, err
	}
	if err := uc.appendParamsEvent(ctx, now, params); err != nil {
		return entities.Parameters{}, err
	}

	logger.Info("quorum updated",
		"event", "governance_quorum_updated",
		"module", "governance-core/proposal-engine",
		"layer", "application",
		"quorum_percentage", params.QuorumPercentage,
	)
	return params, nil
}

func (uc ParameterUseCase) SetVotingPeriod(ctx context.Context, cmd SetVotingPeriodCommand) (entities.Parameters, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.ActorID)
	logger.Info("set voting period started",
		"event", "governance_set_voting_period_started",
		"module", "governance-core/proposal-engine",
		"layer", "application",
		"actor", actor,
		"voting_period", cmd.VotingPeriod.String(),
	)

	if err := uc.Authorizer.RequirePermission(ctx, actor, permissionManageParams); err != nil {
		return entities.Parameters{}, err
	}

	params, err := uc.Parameters.GetParameters(ctx)
	if err != nil {
		return entities.Parameters{}, err
	}
	now := uc.now()
	params.VotingPeriod = cmd.VotingPeriod
	params.UpdatedAt = now
	if err := uc.Parameters.SaveParameters(ctx, params); err != nil {
		return entities.Parameters{}, err
	}
	if err := uc.appendParamsEvent(ctx, now, params); err != nil {
		return entities.Parameters{}, err
	}

	logger.Info("voting period updated",
		"event", "governance_voting_period_updated",
		"module", "governance-core/proposal-engine",
		"layer", "application",
		"voting_period", params.VotingPeriod.String(),
	)
	return params, nil
}

func (uc ParameterUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc ParameterUseCase) appendParamsEvent(ctx context.Context, occurredAt time.Time, params entities.Parameters) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newProposalEnvelope(eventID, "governance.params_updated", 0, occurredAt, map[string]any{
		"voting_period_seconds": int64(params.VotingPeriod.Seconds()),
		"quorum_percentage":     params.QuorumPercentage,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
