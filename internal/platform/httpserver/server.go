package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	authorization "polity/contexts/governance-core/authorization-service"
	balanceledger "polity/contexts/governance-core/balance-ledger"
	membership "polity/contexts/governance-core/membership-service"
	proposals "polity/contexts/governance-core/proposal-engine"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "polity/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	authorization authorization.Module
	membership    membership.Module
	proposals     proposals.Module
	ledger        balanceledger.Module
}

func New(
	authorizationModule authorization.Module,
	membershipModule membership.Module,
	proposalModule proposals.Module,
	ledgerModule balanceledger.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		authorization: authorizationModule,
		membership:    membershipModule,
		proposals:     proposalModule,
		ledger:        ledgerModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/authz/v1/roles/grant", s.handleAuthzGrantRole)
	s.mux.HandleFunc("POST /api/authz/v1/roles/revoke", s.handleAuthzRevokeRole)
	s.mux.HandleFunc("GET /api/authz/v1/accounts/{account}/roles", s.handleAuthzAccountRoles)

	s.mux.HandleFunc("POST /api/governance/v1/members", s.handleAddMember)
	s.mux.HandleFunc("DELETE /api/governance/v1/members/{account}", s.handleRemoveMember)
	s.mux.HandleFunc("PUT /api/governance/v1/members/{account}/compliance", s.handleUpdateCompliance)
	s.mux.HandleFunc("PUT /api/governance/v1/members/{account}/bonus", s.handleSetBonus)
	s.mux.HandleFunc("GET /api/governance/v1/members", s.handleListMembers)
	s.mux.HandleFunc("GET /api/governance/v1/members/{account}", s.handleGetMember)
	s.mux.HandleFunc("POST /api/governance/v1/delegation", s.handleDelegate)
	s.mux.HandleFunc("GET /api/governance/v1/voting-power/{account}", s.handleVotingPower)
	s.mux.HandleFunc("GET /api/governance/v1/voting-power", s.handleTotalVotingPower)

	s.mux.HandleFunc("POST /api/governance/v1/proposals", s.handleCreateProposal)
	s.mux.HandleFunc("GET /api/governance/v1/proposals", s.handleListProposals)
	s.mux.HandleFunc("GET /api/governance/v1/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /api/governance/v1/proposals/{proposal_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /api/governance/v1/proposals/{proposal_id}/votes/{account}", s.handleHasVoted)
	s.mux.HandleFunc("POST /api/governance/v1/proposals/{proposal_id}/execute", s.handleExecuteProposal)
	s.mux.HandleFunc("GET /api/governance/v1/parameters", s.handleGetParameters)
	s.mux.HandleFunc("PUT /api/governance/v1/parameters/quorum", s.handleSetQuorum)
	s.mux.HandleFunc("PUT /api/governance/v1/parameters/voting-period", s.handleSetVotingPeriod)

	s.mux.HandleFunc("GET /api/ledger/v1/accounts/{account}", s.handleLedgerGetAccount)
	s.mux.HandleFunc("GET /api/ledger/v1/accounts/{account}/balance", s.handleLedgerBalance)
	s.mux.HandleFunc("PUT /api/ledger/v1/accounts/{account}/compliance", s.handleLedgerSetCompliance)
	s.mux.HandleFunc("POST /api/ledger/v1/mint", s.handleLedgerMint)
	s.mux.HandleFunc("POST /api/ledger/v1/transfers", s.handleLedgerTransfer)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// callerAccount resolves the acting account from the X-Account-Id header.
func callerAccount(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Account-Id"))
}
