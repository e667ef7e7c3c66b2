package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateProposalRequest struct {
	Description string `json:"description"`
}

type CastVoteRequest struct {
	Support bool `json:"support"`
}

type SetQuorumRequest struct {
	QuorumPercentage uint64 `json:"quorum_percentage"`
}

type SetVotingPeriodRequest struct {
	VotingPeriodSeconds int64 `json:"voting_period_seconds"`
}

type ProposalResponse struct {
	ID           uint64 `json:"id"`
	Proposer     string `json:"proposer"`
	Description  string `json:"description"`
	ForVotes     uint64 `json:"for_votes"`
	AgainstVotes uint64 `json:"against_votes"`
	StartTime    string `json:"start_time"`
	Executed     bool   `json:"executed"`
	Status       string `json:"status"`
}

type ProposalListResponse struct {
	Proposals []ProposalResponse `json:"proposals"`
}

type CastVoteResponse struct {
	ProposalID   uint64 `json:"proposal_id"`
	Support      bool   `json:"support"`
	Weight       uint64 `json:"weight"`
	ForVotes     uint64 `json:"for_votes"`
	AgainstVotes uint64 `json:"against_votes"`
}

type ExecuteProposalResponse struct {
	ProposalID       uint64 `json:"proposal_id"`
	Executed         bool   `json:"executed"`
	ForVotes         uint64 `json:"for_votes"`
	AgainstVotes     uint64 `json:"against_votes"`
	TotalVotes       uint64 `json:"total_votes"`
	TotalVotingPower uint64 `json:"total_voting_power"`
	QuorumVotes      uint64 `json:"quorum_votes"`
}

type HasVotedResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Voter      string `json:"voter"`
	HasVoted   bool   `json:"has_voted"`
}

type ParametersResponse struct {
	VotingPeriodSeconds int64  `json:"voting_period_seconds"`
	QuorumPercentage    uint64 `json:"quorum_percentage"`
}
