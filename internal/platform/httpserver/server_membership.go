package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	authzerrors "polity/contexts/governance-core/authorization-service/domain/errors"
	membershiperrors "polity/contexts/governance-core/membership-service/domain/errors"
	membershiphttp "polity/contexts/governance-core/membership-service/transport/http"
)

func writeMembershipError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, membershiphttp.ErrorResponse{Code: code, Message: message})
}

func writeMembershipDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrForbidden):
		writeMembershipError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, membershiperrors.ErrInvalidAccount),
		errors.Is(err, membershiperrors.ErrNullDelegatee):
		writeMembershipError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, membershiperrors.ErrNotMember):
		writeMembershipError(w, http.StatusNotFound, "not_member", err.Error())
	case errors.Is(err, membershiperrors.ErrAlreadyMember):
		writeMembershipError(w, http.StatusConflict, "already_member", err.Error())
	case errors.Is(err, membershiperrors.ErrNotCompliant):
		writeMembershipError(w, http.StatusForbidden, "not_compliant", err.Error())
	case errors.Is(err, membershiperrors.ErrConflict):
		writeMembershipError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeMembershipError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	actorID := callerAccount(r)
	if actorID == "" {
		writeMembershipError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req membershiphttp.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.membership.Handler.AddMemberHandler(r.Context(), actorID, req)
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID := callerAccount(r)
	if actorID == "" {
		writeMembershipError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	if err := s.membership.Handler.RemoveMemberHandler(r.Context(), actorID, r.PathValue("account")); err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateCompliance(w http.ResponseWriter, r *http.Request) {
	actorID := callerAccount(r)
	if actorID == "" {
		writeMembershipError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req membershiphttp.UpdateComplianceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.membership.Handler.UpdateComplianceHandler(r.Context(), actorID, r.PathValue("account"), req); err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBonus(w http.ResponseWriter, r *http.Request) {
	actorID := callerAccount(r)
	if actorID == "" {
		writeMembershipError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req membershiphttp.SetBonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.membership.Handler.SetBonusHandler(r.Context(), actorID, r.PathValue("account"), req); err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	callerID := callerAccount(r)
	if callerID == "" {
		writeMembershipError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req membershiphttp.DelegateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMembershipError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.membership.Handler.DelegateHandler(r.Context(), callerID, req); err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	resp, found, err := s.membership.Handler.GetMemberHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	if !found {
		writeMembershipError(w, http.StatusNotFound, "not_member", "no member record for account")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	resp, err := s.membership.Handler.ListMembersHandler(r.Context())
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVotingPower(w http.ResponseWriter, r *http.Request) {
	resp, err := s.membership.Handler.VotingPowerHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTotalVotingPower(w http.ResponseWriter, r *http.Request) {
	resp, err := s.membership.Handler.TotalVotingPowerHandler(r.Context())
	if err != nil {
		writeMembershipDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
