package entities

import "time"

// Role models a permission bundle that can be granted to accounts.
type Role struct {
	RoleName    string   `json:"role_name"`
	Permissions []string `json:"permissions"`
}

const (
	// RoleDefaultAdmin is the super-admin role; it is the only role allowed
	// to grant and revoke roles.
	RoleDefaultAdmin = "default_admin"
	// RoleAdmin is the operational admin role gating membership and
	// governance parameter mutation.
	RoleAdmin = "admin"
)

const (
	PermissionManageRoles   = "governance.roles.manage"
	PermissionManageMembers = "governance.members.manage"
	PermissionManageParams  = "governance.params.manage"
)

// BuiltinRoles returns the fixed role catalog. Roles are static bundles;
// only their assignments change at runtime.
func BuiltinRoles() []Role {
	return []Role{
		{
			RoleName: RoleDefaultAdmin,
			Permissions: []string{
				PermissionManageRoles,
				PermissionManageMembers,
				PermissionManageParams,
			},
		},
		{
			RoleName: RoleAdmin,
			Permissions: []string{
				PermissionManageMembers,
				PermissionManageParams,
			},
		},
	}
}

// RoleAssignment binds an account to a role.
type RoleAssignment struct {
	Account   string    `json:"account"`
	RoleName  string    `json:"role_name"`
	GrantedBy string    `json:"granted_by"`
	GrantedAt time.Time `json:"granted_at"`
}
