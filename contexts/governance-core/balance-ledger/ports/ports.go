package ports

import (
	"context"
	"time"

	"polity/contexts/governance-core/balance-ledger/domain/entities"
	"polity/internal/shared/events"
)

// AccountRepository stores ledger accounts. A missing account reads as a
// zero-balance, non-compliant record.
type AccountRepository interface {
	GetAccount(ctx context.Context, address string) (entities.Account, bool, error)
	SaveAccount(ctx context.Context, account entities.Account) error
	SaveAccounts(ctx context.Context, accounts []entities.Account) error
}

// ComplianceManagers answers whether a caller holds the compliance manager
// capability.
type ComplianceManagers interface {
	IsComplianceManager(ctx context.Context, caller string) (bool, error)
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
