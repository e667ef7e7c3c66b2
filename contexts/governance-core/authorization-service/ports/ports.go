package ports

import (
	"context"
	"time"

	"polity/contexts/governance-core/authorization-service/domain/entities"
)

type RoleRepository interface {
	GetRole(ctx context.Context, roleName string) (entities.Role, error)
	ListAccountRoles(ctx context.Context, account string) ([]entities.RoleAssignment, error)
	// ListEffectivePermissions flattens the account's role bundles.
	ListEffectivePermissions(ctx context.Context, account string) ([]string, error)
	AssignRole(ctx context.Context, assignment entities.RoleAssignment) error
	RemoveRole(ctx context.Context, account string, roleName string) error
}

type Clock interface {
	Now() time.Time
}
