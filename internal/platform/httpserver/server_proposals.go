package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	authzerrors "polity/contexts/governance-core/authorization-service/domain/errors"
	proposalerrors "polity/contexts/governance-core/proposal-engine/domain/errors"
	proposalhttp "polity/contexts/governance-core/proposal-engine/transport/http"
)

func writeProposalError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, proposalhttp.ErrorResponse{Code: code, Message: message})
}

func writeProposalDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrForbidden):
		writeProposalError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, proposalerrors.ErrInvalidAccount),
		errors.Is(err, proposalerrors.ErrInvalidQuorum):
		writeProposalError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, proposalerrors.ErrProposalNotFound):
		writeProposalError(w, http.StatusNotFound, "proposal_not_found", err.Error())
	case errors.Is(err, proposalerrors.ErrNotMember),
		errors.Is(err, proposalerrors.ErrNotCompliant),
		errors.Is(err, proposalerrors.ErrZeroVotingPower):
		writeProposalError(w, http.StatusForbidden, "not_eligible", err.Error())
	case errors.Is(err, proposalerrors.ErrAlreadyVoted):
		writeProposalError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, proposalerrors.ErrVotingClosed):
		writeProposalError(w, http.StatusConflict, "voting_closed", err.Error())
	case errors.Is(err, proposalerrors.ErrVotingNotElapsed):
		writeProposalError(w, http.StatusConflict, "voting_not_elapsed", err.Error())
	case errors.Is(err, proposalerrors.ErrAlreadyExecuted):
		writeProposalError(w, http.StatusConflict, "already_executed", err.Error())
	case errors.Is(err, proposalerrors.ErrQuorumNotReached):
		writeProposalError(w, http.StatusUnprocessableEntity, "quorum_not_reached", err.Error())
	case errors.Is(err, proposalerrors.ErrProposalNotPassing):
		writeProposalError(w, http.StatusUnprocessableEntity, "proposal_not_passing", err.Error())
	case errors.Is(err, proposalerrors.ErrConflict):
		writeProposalError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeProposalError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func proposalIDFromPath(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("proposal_id"), 10, 64)
	if err != nil {
		writeProposalError(w, http.StatusBadRequest, "invalid_proposal_id", "proposal_id must be an unsigned integer")
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	callerID := callerAccount(r)
	if callerID == "" {
		writeProposalError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req proposalhttp.CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProposalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.proposals.Handler.CreateProposalHandler(r.Context(), callerID, req)
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.proposals.Handler.ListProposalsHandler(r.Context())
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalIDFromPath(w, r)
	if !ok {
		return
	}
	resp, err := s.proposals.Handler.GetProposalHandler(r.Context(), id)
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	callerID := callerAccount(r)
	if callerID == "" {
		writeProposalError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	id, ok := proposalIDFromPath(w, r)
	if !ok {
		return
	}

	var req proposalhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProposalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.proposals.Handler.CastVoteHandler(r.Context(), callerID, id, req)
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalIDFromPath(w, r)
	if !ok {
		return
	}
	resp, err := s.proposals.Handler.HasVotedHandler(r.Context(), id, r.PathValue("account"))
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecuteProposal(w http.ResponseWriter, r *http.Request) {
	callerID := callerAccount(r)
	if callerID == "" {
		writeProposalError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}
	id, ok := proposalIDFromPath(w, r)
	if !ok {
		return
	}

	resp, err := s.proposals.Handler.ExecuteProposalHandler(r.Context(), callerID, id)
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetParameters(w http.ResponseWriter, r *http.Request) {
	resp, err := s.proposals.Handler.GetParametersHandler(r.Context())
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetQuorum(w http.ResponseWriter, r *http.Request) {
	actorID := callerAccount(r)
	if actorID == "" {
		writeProposalError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req proposalhttp.SetQuorumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProposalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.proposals.Handler.SetQuorumHandler(r.Context(), actorID, req)
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetVotingPeriod(w http.ResponseWriter, r *http.Request) {
	actorID := callerAccount(r)
	if actorID == "" {
		writeProposalError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req proposalhttp.SetVotingPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProposalError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.proposals.Handler.SetVotingPeriodHandler(r.Context(), actorID, req)
	if err != nil {
		writeProposalDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
