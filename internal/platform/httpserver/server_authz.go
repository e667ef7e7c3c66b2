package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	authzerrors "polity/contexts/governance-core/authorization-service/domain/errors"
	authzhttp "polity/contexts/governance-core/authorization-service/transport/http"
)

func writeAuthzError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authzhttp.ErrorResponse{Code: code, Message: message})
}

func writeAuthzDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrForbidden):
		writeAuthzError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, authzerrors.ErrInvalidAccount),
		errors.Is(err, authzerrors.ErrInvalidRole):
		writeAuthzError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, authzerrors.ErrRoleNotFound):
		writeAuthzError(w, http.StatusNotFound, "role_not_found", err.Error())
	case errors.Is(err, authzerrors.ErrRoleAlreadyAssigned),
		errors.Is(err, authzerrors.ErrRoleNotAssigned):
		writeAuthzError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeAuthzError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleAuthzGrantRole(w http.ResponseWriter, r *http.Request) {
	actorID := callerAccount(r)
	if actorID == "" {
		writeAuthzError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req authzhttp.GrantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.authorization.Handler.GrantRoleHandler(r.Context(), actorID, req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzRevokeRole(w http.ResponseWriter, r *http.Request) {
	actorID := callerAccount(r)
	if actorID == "" {
		writeAuthzError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req authzhttp.RevokeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.authorization.Handler.RevokeRoleHandler(r.Context(), actorID, req); err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAuthzAccountRoles(w http.ResponseWriter, r *http.Request) {
	resp, err := s.authorization.Handler.AccountRolesHandler(r.Context(), r.PathValue("account"))
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
