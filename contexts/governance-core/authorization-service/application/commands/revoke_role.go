package commands

import (
	"context"
	"log/slog"
	"strings"

	application "polity/contexts/governance-core/authorization-service/application"
	"polity/contexts/governance-core/authorization-service/domain/entities"
	domainerrors "polity/contexts/governance-core/authorization-service/domain/errors"
	"polity/contexts/governance-core/authorization-service/ports"
)

// RevokeRoleCommand is the write-model input for role revocation.
type RevokeRoleCommand struct {
	ActorID  string
	Account  string
	RoleName string
}

// RevokeRoleUseCase removes a role from an account. Only default_admin
// holders may revoke roles.
type RevokeRoleUseCase struct {
	Roles  ports.RoleRepository
	Logger *slog.Logger
}

func (u RevokeRoleUseCase) Execute(ctx context.Context, cmd RevokeRoleCommand) error {
	logger := application.ResolveLogger(u.Logger)
	actor := strings.TrimSpace(cmd.ActorID)
	account := strings.TrimSpace(cmd.Account)
	roleName := strings.ToLower(strings.TrimSpace(cmd.RoleName))

	logger.Info("revoke role started",
		"event", "authz_revoke_role_started",
		"module", "governance-core/authorization-service",
		"layer", "application",
		"actor", actor,
		"account", account,
		"role", roleName,
	)

	if actor == "" || account == "" {
		return domainerrors.ErrInvalidAccount
	}
	if roleName == "" {
		return domainerrors.ErrInvalidRole
	}
	if err := ensureActorPermission(ctx, u.Roles, actor, entities.PermissionManageRoles); err != nil {
		return err
	}
	if _, err := u.Roles.GetRole(ctx, roleName); err != nil {
		return err
	}
	if err := u.Roles.RemoveRole(ctx, account, roleName); err != nil {
		return err
	}

	logger.Info("revoke role completed",
		"event", "authz_revoke_role_completed",
		"module", "governance-core/authorization-service",
		"layer", "application",
		"actor", actor,
		"account", account,
		"role", roleName,
	)
	return nil
}
