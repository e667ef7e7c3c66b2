package authorizationservice

import (
	"log/slog"

	httpadapter "polity/contexts/governance-core/authorization-service/adapters/http"
	"polity/contexts/governance-core/authorization-service/adapters/memory"
	"polity/contexts/governance-core/authorization-service/application/commands"
	"polity/contexts/governance-core/authorization-service/application/queries"
	"polity/contexts/governance-core/authorization-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Guard   queries.AccountRolesUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Roles  ports.RoleRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	guard := queries.AccountRolesUseCase{Roles: deps.Roles}
	return Module{
		Handler: httpadapter.Handler{
			Grant: commands.GrantRoleUseCase{
				Roles:  deps.Roles,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			Revoke: commands.RevokeRoleUseCase{
				Roles:  deps.Roles,
				Logger: deps.Logger,
			},
			Roles:  guard,
			Logger: deps.Logger,
		},
		Guard: guard,
	}
}

func NewInMemoryModule(initialAdmin string, logger *slog.Logger) Module {
	store := memory.NewStore(initialAdmin)
	module := NewModule(Dependencies{
		Roles:  store,
		Clock:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
