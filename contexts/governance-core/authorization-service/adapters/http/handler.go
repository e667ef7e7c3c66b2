package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"polity/contexts/governance-core/authorization-service/application/commands"
	"polity/contexts/governance-core/authorization-service/application/queries"
	httptransport "polity/contexts/governance-core/authorization-service/transport/http"
)

type Handler struct {
	Grant  commands.GrantRoleUseCase
	Revoke commands.RevokeRoleUseCase
	Roles  queries.AccountRolesUseCase
	Logger *slog.Logger
}

func (h Handler) GrantRoleHandler(
	ctx context.Context,
	actorID string,
	req httptransport.GrantRoleRequest,
) (httptransport.RoleAssignmentResponse, error) {
	assignment, err := h.Grant.Execute(ctx, commands.GrantRoleCommand{
		ActorID:  actorID,
		Account:  req.Account,
		RoleName: req.RoleName,
	})
	if err != nil {
		return httptransport.RoleAssignmentResponse{}, err
	}
	return httptransport.RoleAssignmentResponse{
		Account:   assignment.Account,
		RoleName:  assignment.RoleName,
		GrantedBy: assignment.GrantedBy,
		GrantedAt: assignment.GrantedAt.Format(time.RFC3339),
	}, nil
}

func (h Handler) RevokeRoleHandler(
	ctx context.Context,
	actorID string,
	req httptransport.RevokeRoleRequest,
) error {
	return h.Revoke.Execute(ctx, commands.RevokeRoleCommand{
		ActorID:  actorID,
		Account:  req.Account,
		RoleName: req.RoleName,
	})
}

func (h Handler) AccountRolesHandler(ctx context.Context, account string) (httptransport.AccountRolesResponse, error) {
	assignments, err := h.Roles.ListAccountRoles(ctx, account)
	if err != nil {
		return httptransport.AccountRolesResponse{}, err
	}
	items := make([]httptransport.RoleAssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		items = append(items, httptransport.RoleAssignmentResponse{
			Account:   assignment.Account,
			RoleName:  assignment.RoleName,
			GrantedBy: assignment.GrantedBy,
			GrantedAt: assignment.GrantedAt.Format(time.RFC3339),
		})
	}
	return httptransport.AccountRolesResponse{
		Account: account,
		Roles:   items,
	}, nil
}
