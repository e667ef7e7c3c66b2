package commands

import (
	"context"
	"fmt"

	domainerrors "polity/contexts/governance-core/authorization-service/domain/errors"
	"polity/contexts/governance-core/authorization-service/domain/services"
	"polity/contexts/governance-core/authorization-service/ports"
)

func ensureActorPermission(
	ctx context.Context,
	repository ports.RoleRepository,
	actorID string,
	permission string,
) error {
	permissions, err := repository.ListEffectivePermissions(ctx, actorID)
	if err != nil {
		return err
	}
	if !services.GrantsPermission(permissions, permission) {
		return fmt.Errorf("%w: account %q does not hold a role granting %q",
			domainerrors.ErrForbidden, actorID, permission)
	}
	return nil
}
