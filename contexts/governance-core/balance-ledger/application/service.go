package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"polity/contexts/governance-core/balance-ledger/domain/entities"
	domainerrors "polity/contexts/governance-core/balance-ledger/domain/errors"
	"polity/contexts/governance-core/balance-ledger/ports"
	"polity/internal/shared/events"
)

// Service implements the ledger contract the governance core depends on:
// balance reads and compliance flag writes, plus mint and transfer for
// moving weight around. Transfers require a true compliance flag on BOTH
// sides.
type Service struct {
	Accounts ports.AccountRepository
	Managers ports.ComplianceManagers
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (s Service) BalanceOf(ctx context.Context, address string) (uint64, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return 0, domainerrors.ErrInvalidAccount
	}
	account, _, err := s.Accounts.GetAccount(ctx, address)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func (s Service) GetAccount(ctx context.Context, address string) (entities.Account, bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return entities.Account{}, false, domainerrors.ErrInvalidAccount
	}
	return s.Accounts.GetAccount(ctx, address)
}

// SetComplianceStatus flips the compliance flag on an account. Only callers
// holding the compliance manager capability may do so; the membership
// service wiring holds it so the flag stays in lockstep with the member
// record.
func (s Service) SetComplianceStatus(ctx context.Context, caller, address string, status bool) error {
	logger := s.logger()
	caller = strings.TrimSpace(caller)
	address = strings.TrimSpace(address)
	logger.Info("set compliance status started",
		"event", "ledger_set_compliance_started",
		"module", "governance-core/balance-ledger",
		"layer", "application",
		"caller", caller,
		"account", address,
		"status", status,
	)

	if address == "" {
		return domainerrors.ErrInvalidAccount
	}
	if err := s.requireComplianceManager(ctx, caller); err != nil {
		return err
	}

	account, _, err := s.Accounts.GetAccount(ctx, address)
	if err != nil {
		return err
	}
	now := s.now()
	account.Address = address
	account.CompliancePassed = status
	account.UpdatedAt = now
	if err := s.Accounts.SaveAccount(ctx, account); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, "ledger.compliance_updated", address, now, map[string]any{
		"account": address,
		"status":  status,
	}); err != nil {
		return err
	}

	logger.Info("compliance status updated",
		"event", "ledger_compliance_updated",
		"module", "governance-core/balance-ledger",
		"layer", "application",
		"account", address,
		"status", status,
	)
	return nil
}

// Mint credits an account. It shares the compliance manager gate; there is
// no supply cap.
func (s Service) Mint(ctx context.Context, caller, address string, amount uint64) (entities.Account, error) {
	logger := s.logger()
	caller = strings.TrimSpace(caller)
	address = strings.TrimSpace(address)
	logger.Info("mint started",
		"event", "ledger_mint_started",
		"module", "governance-core/balance-ledger",
		"layer", "application",
		"caller", caller,
		"account", address,
		"amount", amount,
	)

	if address == "" {
		return entities.Account{}, domainerrors.ErrInvalidAccount
	}
	if amount == 0 {
		return entities.Account{}, domainerrors.ErrInvalidAmount
	}
	if err := s.requireComplianceManager(ctx, caller); err != nil {
		return entities.Account{}, err
	}

	account, _, err := s.Accounts.GetAccount(ctx, address)
	if err != nil {
		return entities.Account{}, err
	}
	now := s.now()
	account.Address = address
	account.Balance += amount
	account.UpdatedAt = now
	if err := s.Accounts.SaveAccount(ctx, account); err != nil {
		return entities.Account{}, err
	}
	if err := s.appendEvent(ctx, "ledger.minted", address, now, map[string]any{
		"account": address,
		"amount":  amount,
		"balance": account.Balance,
	}); err != nil {
		return entities.Account{}, err
	}

	logger.Info("mint applied",
		"event", "ledger_minted",
		"module", "governance-core/balance-ledger",
		"layer", "application",
		"account", address,
		"balance", account.Balance,
	)
	return account, nil
}

// Transfer moves balance between two compliant accounts. Either side
// failing the compliance check rejects the whole transfer before any write.
func (s Service) Transfer(ctx context.Context, from, to string, amount uint64) error {
	logger := s.logger()
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	logger.Info("transfer started",
		"event", "ledger_transfer_started",
		"module", "governance-core/balance-ledger",
		"layer", "application",
		"from", from,
		"to", to,
		"amount", amount,
	)

	if from == "" || to == "" {
		return domainerrors.ErrInvalidAccount
	}
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}

	sender, _, err := s.Accounts.GetAccount(ctx, from)
	if err != nil {
		return err
	}
	receiver, _, err := s.Accounts.GetAccount(ctx, to)
	if err != nil {
		return err
	}
	if !sender.CompliancePassed || !receiver.CompliancePassed {
		logger.Warn("transfer rejected on compliance",
			"event", "ledger_transfer_compliance_failed",
			"module", "governance-core/balance-ledger",
			"layer", "application",
			"from", from,
			"to", to,
		)
		return domainerrors.ErrNotCompliant
	}
	if sender.Balance < amount {
		return domainerrors.ErrInsufficientBalance
	}

	now := s.now()
	sender.Address = from
	sender.Balance -= amount
	sender.UpdatedAt = now
	receiver.Address = to
	receiver.Balance += amount
	receiver.UpdatedAt = now
	if err := s.Accounts.SaveAccounts(ctx, []entities.Account{sender, receiver}); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, "ledger.transferred", from, now, map[string]any{
		"from":   from,
		"to":     to,
		"amount": amount,
	}); err != nil {
		return err
	}

	logger.Info("transfer applied",
		"event", "ledger_transferred",
		"module", "governance-core/balance-ledger",
		"layer", "application",
		"from", from,
		"to", to,
		"amount", amount,
	)
	return nil
}

func (s Service) requireComplianceManager(ctx context.Context, caller string) error {
	if caller == "" {
		return domainerrors.ErrInvalidAccount
	}
	ok, err := s.Managers.IsComplianceManager(ctx, caller)
	if err != nil {
		return err
	}
	if !ok {
		return domainerrors.ErrNotComplianceManager
	}
	return nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Service) appendEvent(ctx context.Context, eventType, partitionKey string, occurredAt time.Time, data map[string]any) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := events.New(eventID, eventType, "balance-ledger", "account", partitionKey, occurredAt, data)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, envelope)
}

func (s Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
