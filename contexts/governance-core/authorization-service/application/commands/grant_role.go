package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "polity/contexts/governance-core/authorization-service/application"
	"polity/contexts/governance-core/authorization-service/domain/entities"
	domainerrors "polity/contexts/governance-core/authorization-service/domain/errors"
	"polity/contexts/governance-core/authorization-service/ports"
)

// GrantRoleCommand is the write-model input for role grants.
type GrantRoleCommand struct {
	ActorID  string
	Account  string
	RoleName string
}

// GrantRoleUseCase grants a role to an account. Only default_admin holders
// may grant roles.
type GrantRoleUseCase struct {
	Roles  ports.RoleRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (u GrantRoleUseCase) Execute(ctx context.Context, cmd GrantRoleCommand) (entities.RoleAssignment, error) {
	logger := application.ResolveLogger(u.Logger)
	actor := strings.TrimSpace(cmd.ActorID)
	account := strings.TrimSpace(cmd.Account)
	roleName := strings.ToLower(strings.TrimSpace(cmd.RoleName))

	logger.Info("grant role started",
		"event", "authz_grant_role_started",
		"module", "governance-core/authorization-service",
		"layer", "application",
		"actor", actor,
		"account", account,
		"role", roleName,
	)

	if actor == "" || account == "" {
		return entities.RoleAssignment{}, domainerrors.ErrInvalidAccount
	}
	if roleName == "" {
		return entities.RoleAssignment{}, domainerrors.ErrInvalidRole
	}
	if err := ensureActorPermission(ctx, u.Roles, actor, entities.PermissionManageRoles); err != nil {
		return entities.RoleAssignment{}, err
	}
	if _, err := u.Roles.GetRole(ctx, roleName); err != nil {
		return entities.RoleAssignment{}, err
	}

	assignment := entities.RoleAssignment{
		Account:   account,
		RoleName:  roleName,
		GrantedBy: actor,
		GrantedAt: u.now(),
	}
	if err := u.Roles.AssignRole(ctx, assignment); err != nil {
		return entities.RoleAssignment{}, err
	}

	logger.Info("grant role completed",
		"event", "authz_grant_role_completed",
		"module", "governance-core/authorization-service",
		"layer", "application",
		"actor", actor,
		"account", account,
		"role", roleName,
	)
	return assignment, nil
}

func (u GrantRoleUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
