package balanceledger

import (
	"log/slog"

	httpadapter "polity/contexts/governance-core/balance-ledger/adapters/http"
	"polity/contexts/governance-core/balance-ledger/adapters/memory"
	"polity/contexts/governance-core/balance-ledger/application"
	"polity/contexts/governance-core/balance-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Accounts ports.AccountRepository
	Managers ports.ComplianceManagers
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Accounts: deps.Accounts,
		Managers: deps.Managers,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

func NewInMemoryModule(logger *slog.Logger, complianceManagers ...string) Module {
	store := memory.NewStore(complianceManagers...)
	module := NewModule(Dependencies{
		Accounts: store,
		Managers: store,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
