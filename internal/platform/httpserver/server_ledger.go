package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	ledgererrors "polity/contexts/governance-core/balance-ledger/domain/errors"
	ledgerhttp "polity/contexts/governance-core/balance-ledger/transport/http"
)

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{Code: code, Message: message})
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrInvalidAccount),
		errors.Is(err, ledgererrors.ErrInvalidAmount):
		writeLedgerError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ledgererrors.ErrNotComplianceManager):
		writeLedgerError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ledgererrors.ErrNotCompliant):
		writeLedgerError(w, http.StatusForbidden, "not_compliant", err.Error())
	case errors.Is(err, ledgererrors.ErrInsufficientBalance):
		writeLedgerError(w, http.StatusUnprocessableEntity, "insufficient_balance", err.Error())
	case errors.Is(err, ledgererrors.ErrConflict):
		writeLedgerError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleLedgerGetAccount(w http.ResponseWriter, r *http.Request) {
	resp, found, err := s.ledger.Handler.GetAccountHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	if !found {
		writeLedgerError(w, http.StatusNotFound, "account_not_found", "no ledger account for address")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLedgerBalance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.BalanceHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLedgerSetCompliance(w http.ResponseWriter, r *http.Request) {
	callerID := callerAccount(r)
	if callerID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req ledgerhttp.SetComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.ledger.Handler.SetComplianceHandler(r.Context(), callerID, r.PathValue("account"), req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLedgerMint(w http.ResponseWriter, r *http.Request) {
	callerID := callerAccount(r)
	if callerID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req ledgerhttp.MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.ledger.Handler.MintHandler(r.Context(), callerID, req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLedgerTransfer(w http.ResponseWriter, r *http.Request) {
	callerID := callerAccount(r)
	if callerID == "" {
		writeLedgerError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req ledgerhttp.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeLedgerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.ledger.Handler.TransferHandler(r.Context(), callerID, req); err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
