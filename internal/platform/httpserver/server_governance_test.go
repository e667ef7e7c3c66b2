package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authorization "polity/contexts/governance-core/authorization-service"
	balanceledger "polity/contexts/governance-core/balance-ledger"
	membership "polity/contexts/governance-core/membership-service"
	ledgeradapter "polity/contexts/governance-core/membership-service/adapters/ledger"
	proposals "polity/contexts/governance-core/proposal-engine"
	membershipadapter "polity/contexts/governance-core/proposal-engine/adapters/membership"
	proposalentities "polity/contexts/governance-core/proposal-engine/domain/entities"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	authModule := authorization.NewInMemoryModule("root", nil)
	ledgerModule := balanceledger.NewInMemoryModule(nil, "manager", "membership-service")
	membershipModule := membership.NewInMemoryModule(
		ledgeradapter.Client{
			Service:        ledgerModule.Service,
			ServiceAccount: "membership-service",
		},
		authModule.Guard,
		nil,
	)
	proposalModule := proposals.NewInMemoryModule(
		membershipadapter.Directory{
			Members: membershipModule.Queries,
			Power:   membershipModule.Power,
		},
		authModule.Guard,
		proposalentities.Parameters{
			VotingPeriod:     time.Hour,
			QuorumPercentage: 10,
			UpdatedAt:        time.Now().UTC(),
		},
		nil,
	)
	return New(authModule, membershipModule, proposalModule, ledgerModule, nil, ":0")
}

func doRequest(t *testing.T, server *Server, method, path, caller, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if caller != "" {
		req.Header.Set("X-Account-Id", caller)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestAddMemberRequiresCallerHeader(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(t, server, http.MethodPost, "/api/governance/v1/members", "", `{"account":"alice"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
}

func TestAddMemberRejectsNonAdmin(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(t, server, http.MethodPost, "/api/governance/v1/members", "mallory", `{"account":"alice"}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.Code)
	}
}

func TestGovernanceEndToEndProposalFlow(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(t, server, http.MethodPost, "/api/governance/v1/members", "root", `{"account":"alice"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("add member status = %d, body %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, server, http.MethodPost, "/api/ledger/v1/mint", "manager", `{"account":"alice","amount":100}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("mint status = %d, body %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, server, http.MethodPut, "/api/governance/v1/members/alice/compliance", "root", `{"status":true}`)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("compliance status = %d, body %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, server, http.MethodGet, "/api/governance/v1/voting-power/alice", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("voting power status = %d", resp.Code)
	}
	var power struct {
		VotingPower uint64 `json:"voting_power"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &power); err != nil {
		t.Fatalf("decode voting power: %v", err)
	}
	if power.VotingPower != 100 {
		t.Fatalf("voting power = %d, want 100", power.VotingPower)
	}

	resp = doRequest(t, server, http.MethodPost, "/api/governance/v1/proposals", "alice", `{"description":"fund the library"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create proposal status = %d, body %s", resp.Code, resp.Body.String())
	}
	var proposal struct {
		ID     uint64 `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &proposal); err != nil {
		t.Fatalf("decode proposal: %v", err)
	}
	if proposal.ID != 0 || proposal.Status != "open" {
		t.Fatalf("unexpected proposal: %+v", proposal)
	}

	resp = doRequest(t, server, http.MethodPost, "/api/governance/v1/proposals/0/votes", "alice", `{"support":true}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("vote status = %d, body %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, server, http.MethodPost, "/api/governance/v1/proposals/0/votes", "alice", `{"support":true}`)
	if resp.Code != http.StatusConflict {
		t.Fatalf("double vote status = %d, want 409", resp.Code)
	}

	resp = doRequest(t, server, http.MethodPost, "/api/governance/v1/proposals/0/execute", "alice", "")
	if resp.Code != http.StatusConflict {
		t.Fatalf("early execute status = %d, want 409", resp.Code)
	}
}

func TestSetQuorumValidation(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(t, server, http.MethodPut, "/api/governance/v1/parameters/quorum", "root", `{"quorum_percentage":101}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("quorum 101 status = %d, want 400", resp.Code)
	}

	resp = doRequest(t, server, http.MethodPut, "/api/governance/v1/parameters/quorum", "root", `{"quorum_percentage":25}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("quorum 25 status = %d, body %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, server, http.MethodPut, "/api/governance/v1/parameters/quorum", "mallory", `{"quorum_percentage":25}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("non-admin quorum status = %d, want 403", resp.Code)
	}
}
