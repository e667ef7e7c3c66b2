package ledgeradapter

import (
	"context"

	ledgerapp "polity/contexts/governance-core/balance-ledger/application"
)

// Client adapts the in-process balance ledger to the membership ledger
// port. Compliance writes run under ServiceAccount, which must hold the
// ledger's compliance manager capability.
type Client struct {
	Service        ledgerapp.Service
	ServiceAccount string
}

func (c Client) BalanceOf(ctx context.Context, account string) (uint64, error) {
	return c.Service.BalanceOf(ctx, account)
}

func (c Client) SetComplianceStatus(ctx context.Context, account string, status bool) error {
	return c.Service.SetComplianceStatus(ctx, c.ServiceAccount, account, status)
}
