package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"polity/contexts/governance-core/authorization-service/adapters/memory"
	"polity/contexts/governance-core/authorization-service/application/queries"
	"polity/contexts/governance-core/authorization-service/domain/entities"
	domainerrors "polity/contexts/governance-core/authorization-service/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

func TestGrantRoleByDefaultAdmin(t *testing.T) {
	store := memory.NewStore("root")
	grant := GrantRoleUseCase{Roles: store, Clock: fixedClock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)}}
	guard := queries.AccountRolesUseCase{Roles: store}

	assignment, err := grant.Execute(context.Background(), GrantRoleCommand{
		ActorID:  "root",
		Account:  "alice",
		RoleName: entities.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if assignment.GrantedBy != "root" || assignment.RoleName != entities.RoleAdmin {
		t.Fatalf("unexpected assignment: %+v", assignment)
	}

	if err := guard.RequirePermission(context.Background(), "alice", entities.PermissionManageMembers); err != nil {
		t.Fatalf("alice should hold members.manage after admin grant: %v", err)
	}
	if err := guard.RequirePermission(context.Background(), "alice", entities.PermissionManageRoles); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("admin must not hold roles.manage, got %v", err)
	}
}

func TestGrantRoleRejectsNonAdminActor(t *testing.T) {
	store := memory.NewStore("root")
	grant := GrantRoleUseCase{Roles: store, Clock: fixedClock{now: time.Now()}}

	_, err := grant.Execute(context.Background(), GrantRoleCommand{
		ActorID:  "mallory",
		Account:  "alice",
		RoleName: entities.RoleAdmin,
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGrantRoleUnknownRole(t *testing.T) {
	store := memory.NewStore("root")
	grant := GrantRoleUseCase{Roles: store, Clock: fixedClock{now: time.Now()}}

	_, err := grant.Execute(context.Background(), GrantRoleCommand{
		ActorID:  "root",
		Account:  "alice",
		RoleName: "superuser",
	})
	if !errors.Is(err, domainerrors.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestGrantRoleDuplicateAssignment(t *testing.T) {
	store := memory.NewStore("root")
	grant := GrantRoleUseCase{Roles: store, Clock: fixedClock{now: time.Now()}}

	if _, err := grant.Execute(context.Background(), GrantRoleCommand{ActorID: "root", Account: "alice", RoleName: entities.RoleAdmin}); err != nil {
		t.Fatalf("first grant failed: %v", err)
	}
	_, err := grant.Execute(context.Background(), GrantRoleCommand{ActorID: "root", Account: "alice", RoleName: entities.RoleAdmin})
	if !errors.Is(err, domainerrors.ErrRoleAlreadyAssigned) {
		t.Fatalf("expected ErrRoleAlreadyAssigned, got %v", err)
	}
}

func TestRevokeRoleRemovesPermission(t *testing.T) {
	store := memory.NewStore("root")
	grant := GrantRoleUseCase{Roles: store, Clock: fixedClock{now: time.Now()}}
	revoke := RevokeRoleUseCase{Roles: store}
	guard := queries.AccountRolesUseCase{Roles: store}

	if _, err := grant.Execute(context.Background(), GrantRoleCommand{ActorID: "root", Account: "alice", RoleName: entities.RoleAdmin}); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := revoke.Execute(context.Background(), RevokeRoleCommand{ActorID: "root", Account: "alice", RoleName: entities.RoleAdmin}); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if err := guard.RequirePermission(context.Background(), "alice", entities.PermissionManageMembers); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden after revoke, got %v", err)
	}

	err := revoke.Execute(context.Background(), RevokeRoleCommand{ActorID: "root", Account: "alice", RoleName: entities.RoleAdmin})
	if !errors.Is(err, domainerrors.ErrRoleNotAssigned) {
		t.Fatalf("expected ErrRoleNotAssigned on second revoke, got %v", err)
	}
}
