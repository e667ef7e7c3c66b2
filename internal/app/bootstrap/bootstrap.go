// Package bootstrap is the composition root: all construction and
// cross-service wiring lives here so module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	authorization "polity/contexts/governance-core/authorization-service"
	authpostgres "polity/contexts/governance-core/authorization-service/adapters/postgres"
	balanceledger "polity/contexts/governance-core/balance-ledger"
	membership "polity/contexts/governance-core/membership-service"
	ledgeradapter "polity/contexts/governance-core/membership-service/adapters/ledger"
	membershippostgres "polity/contexts/governance-core/membership-service/adapters/postgres"
	proposals "polity/contexts/governance-core/proposal-engine"
	membershipadapter "polity/contexts/governance-core/proposal-engine/adapters/membership"
	proposalpostgres "polity/contexts/governance-core/proposal-engine/adapters/postgres"
	proposalentities "polity/contexts/governance-core/proposal-engine/domain/entities"
	"polity/internal/platform/config"
	"polity/internal/platform/db"
	"polity/internal/platform/httpserver"
	"polity/internal/platform/messaging"
	"polity/internal/shared/outbox"
)

// membershipServiceAccount is the ledger identity the membership service
// acts under when driving the compliance flag.
const membershipServiceAccount = "membership-service"

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	relays       []outbox.Relay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	authRepo := authpostgres.NewRepository(pg.DB, logger)
	if err := authRepo.SeedInitialAdmin(seedCtx, cfg.InitialAdmin, time.Now().UTC()); err != nil {
		_ = pg.Close()
		return nil, err
	}
	authModule := authorization.NewModule(authorization.Dependencies{
		Roles:  authRepo,
		Clock:  authpostgres.SystemClock{},
		Logger: logger,
	})

	ledgerModule := balanceledger.NewInMemoryModule(logger,
		cfg.ComplianceManager,
		membershipServiceAccount,
	)

	membershipRepo := membershippostgres.NewRepository(pg.DB, logger)
	membershipModule := membership.NewModule(membership.Dependencies{
		Members:     membershipRepo,
		Delegations: membershipRepo,
		Ledger: ledgeradapter.Client{
			Service:        ledgerModule.Service,
			ServiceAccount: membershipServiceAccount,
		},
		Authorizer: authModule.Guard,
		Outbox:     membershipRepo,
		Clock:      membershippostgres.SystemClock{},
		IDGen:      membershippostgres.UUIDGenerator{},
		Logger:     logger,
	})

	proposalRepo := proposalpostgres.NewRepository(pg.DB, logger)
	if err := proposalRepo.EnsureParameters(seedCtx, proposalentities.Parameters{
		VotingPeriod:     cfg.DefaultVotingPeriod,
		QuorumPercentage: cfg.DefaultQuorumPercentage,
		UpdatedAt:        time.Now().UTC(),
	}); err != nil {
		_ = pg.Close()
		return nil, err
	}
	proposalModule := proposals.NewModule(proposals.Dependencies{
		Proposals:  proposalRepo,
		Parameters: proposalRepo,
		Membership: membershipadapter.Directory{
			Members: membershipModule.Queries,
			Power:   membershipModule.Power,
		},
		Authorizer: authModule.Guard,
		Outbox:     proposalRepo,
		Clock:      proposalpostgres.SystemClock{},
		IDGen:      proposalpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	server := httpserver.New(
		authModule,
		membershipModule,
		proposalModule,
		ledgerModule,
		logger,
		cfg.HTTPAddr(),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	membershipRepo := membershippostgres.NewRepository(pg.DB, logger)
	proposalRepo := proposalpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		relays: []outbox.Relay{
			{
				Name:      "membership-outbox",
				Outbox:    membershipRepo,
				Publisher: kafka,
				Clock:     membershippostgres.SystemClock{},
				BatchSize: cfg.OutboxBatchSize,
				Logger:    logger,
			},
			{
				Name:      "proposal-outbox",
				Outbox:    proposalRepo,
				Publisher: kafka,
				Clock:     proposalpostgres.SystemClock{},
				BatchSize: cfg.OutboxBatchSize,
				Logger:    logger,
			},
		},
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		// RunOnce logs its own failures; a broker or database blip must not
		// stop the poll loop, the next tick retries the same rows.
		for _, relay := range w.relays {
			_ = relay.RunOnce(ctx)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}
