package httpadapter

import (
	"context"
	"log/slog"

	"polity/contexts/governance-core/balance-ledger/application"
	httptransport "polity/contexts/governance-core/balance-ledger/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) BalanceHandler(ctx context.Context, account string) (httptransport.BalanceResponse, error) {
	balance, err := h.Service.BalanceOf(ctx, account)
	if err != nil {
		return httptransport.BalanceResponse{}, err
	}
	return httptransport.BalanceResponse{
		Account: account,
		Balance: balance,
	}, nil
}

func (h Handler) GetAccountHandler(ctx context.Context, account string) (httptransport.AccountResponse, bool, error) {
	record, found, err := h.Service.GetAccount(ctx, account)
	if err != nil || !found {
		return httptransport.AccountResponse{}, found, err
	}
	return httptransport.AccountResponse{
		Account:          record.Address,
		Balance:          record.Balance,
		CompliancePassed: record.CompliancePassed,
	}, true, nil
}

func (h Handler) SetComplianceHandler(
	ctx context.Context,
	callerID string,
	account string,
	req httptransport.SetComplianceRequest,
) error {
	return h.Service.SetComplianceStatus(ctx, callerID, account, req.Status)
}

func (h Handler) MintHandler(
	ctx context.Context,
	callerID string,
	req httptransport.MintRequest,
) (httptransport.AccountResponse, error) {
	account, err := h.Service.Mint(ctx, callerID, req.Account, req.Amount)
	if err != nil {
		return httptransport.AccountResponse{}, err
	}
	return httptransport.AccountResponse{
		Account:          account.Address,
		Balance:          account.Balance,
		CompliancePassed: account.CompliancePassed,
	}, nil
}

func (h Handler) TransferHandler(
	ctx context.Context,
	callerID string,
	req httptransport.TransferRequest,
) error {
	return h.Service.Transfer(ctx, callerID, req.To, req.Amount)
}
