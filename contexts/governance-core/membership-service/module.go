package membershipservice

import (
	"log/slog"

	httpadapter "polity/contexts/governance-core/membership-service/adapters/http"
	"polity/contexts/governance-core/membership-service/adapters/memory"
	"polity/contexts/governance-core/membership-service/application/commands"
	"polity/contexts/governance-core/membership-service/application/queries"
	"polity/contexts/governance-core/membership-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Queries queries.MemberQueries
	Power   queries.VotingPowerUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Members     ports.MemberRepository
	Delegations ports.DelegationRepository
	Ledger      ports.BalanceLedger
	Authorizer  ports.Authorizer
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	membership := commands.MembershipUseCase{
		Members:    deps.Members,
		Authorizer: deps.Authorizer,
		Ledger:     deps.Ledger,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	delegate := commands.DelegateUseCase{
		Members:     deps.Members,
		Delegations: deps.Delegations,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	memberQueries := queries.MemberQueries{
		Members:     deps.Members,
		Delegations: deps.Delegations,
	}
	power := queries.VotingPowerUseCase{
		Members:     deps.Members,
		Delegations: deps.Delegations,
		Ledger:      deps.Ledger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Membership: membership,
			Delegate:   delegate,
			Members:    memberQueries,
			Power:      power,
			Logger:     deps.Logger,
		},
		Queries: memberQueries,
		Power:   power,
	}
}

func NewInMemoryModule(
	ledger ports.BalanceLedger,
	authorizer ports.Authorizer,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Members:     store,
		Delegations: store,
		Ledger:      ledger,
		Authorizer:  authorizer,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
