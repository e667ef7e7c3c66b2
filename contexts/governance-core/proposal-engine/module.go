package proposalengine

import (
	"log/slog"

	httpadapter "polity/contexts/governance-core/proposal-engine/adapters/http"
	"polity/contexts/governance-core/proposal-engine/adapters/memory"
	"polity/contexts/governance-core/proposal-engine/application/commands"
	"polity/contexts/governance-core/proposal-engine/application/queries"
	"polity/contexts/governance-core/proposal-engine/domain/entities"
	"polity/contexts/governance-core/proposal-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Queries queries.ProposalQueries
	Store   *memory.Store
}

type Dependencies struct {
	Proposals  ports.ProposalRepository
	Parameters ports.ParameterRepository
	Membership ports.MembershipDirectory
	Authorizer ports.Authorizer
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	proposals := commands.ProposalUseCase{
		Proposals:  deps.Proposals,
		Parameters: deps.Parameters,
		Membership: deps.Membership,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	parameters := commands.ParameterUseCase{
		Parameters: deps.Parameters,
		Authorizer: deps.Authorizer,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	proposalQueries := queries.ProposalQueries{
		Proposals:  deps.Proposals,
		Parameters: deps.Parameters,
		Clock:      deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Proposals:  proposals,
			Parameters: parameters,
			Queries:    proposalQueries,
			Logger:     deps.Logger,
		},
		Queries: proposalQueries,
	}
}

func NewInMemoryModule(
	membership ports.MembershipDirectory,
	authorizer ports.Authorizer,
	defaults entities.Parameters,
	logger *slog.Logger,
) Module {
	store := memory.NewStore(defaults)
	module := NewModule(Dependencies{
		Proposals:  store,
		Parameters: store,
		Membership: membership,
		Authorizer: authorizer,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
