package queries

import (
	"context"
	"fmt"
	"strings"

	"polity/contexts/governance-core/authorization-service/domain/entities"
	domainerrors "polity/contexts/governance-core/authorization-service/domain/errors"
	"polity/contexts/governance-core/authorization-service/domain/services"
	"polity/contexts/governance-core/authorization-service/ports"
)

// AccountRolesUseCase exposes read-side role and permission checks. It also
// serves as the permission guard the other governance services depend on.
type AccountRolesUseCase struct {
	Roles ports.RoleRepository
}

func (u AccountRolesUseCase) ListAccountRoles(ctx context.Context, account string) ([]entities.RoleAssignment, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, domainerrors.ErrInvalidAccount
	}
	return u.Roles.ListAccountRoles(ctx, account)
}

func (u AccountRolesUseCase) HasRole(ctx context.Context, account string, roleName string) (bool, error) {
	assignments, err := u.ListAccountRoles(ctx, account)
	if err != nil {
		return false, err
	}
	roleName = strings.ToLower(strings.TrimSpace(roleName))
	for _, assignment := range assignments {
		if assignment.RoleName == roleName {
			return true, nil
		}
	}
	return false, nil
}

// RequirePermission rejects with an authorization error naming both the
// caller and the missing permission. No side effects on failure.
func (u AccountRolesUseCase) RequirePermission(ctx context.Context, account string, permission string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return domainerrors.ErrInvalidAccount
	}
	permissions, err := u.Roles.ListEffectivePermissions(ctx, account)
	if err != nil {
		return err
	}
	if !services.GrantsPermission(permissions, permission) {
		return fmt.Errorf("%w: account %q does not hold a role granting %q",
			domainerrors.ErrForbidden, account, permission)
	}
	return nil
}
