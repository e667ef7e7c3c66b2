package entities

import "time"

// Status is derived at query time from the proposal's start time, the
// CURRENT voting period, and the executed flag. It is never stored.
type Status string

const (
	StatusOpen          Status = "open"
	StatusClosedPending Status = "closed_pending"
	StatusExecuted      Status = "executed"
)

// Proposal is a decision put to the membership. Tallies accumulate weighted
// votes while the window is open and freeze once it elapses; the executed
// flag is terminal.
type Proposal struct {
	ID           uint64    `json:"id"`
	Proposer     string    `json:"proposer"`
	Description  string    `json:"description"`
	ForVotes     uint64    `json:"for_votes"`
	AgainstVotes uint64    `json:"against_votes"`
	StartTime    time.Time `json:"start_time"`
	Executed     bool      `json:"executed"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VotingClosesAt applies the voting period in force right now, not the one
// in force at creation. Parameter changes retroactively move in-flight
// windows.
func (p Proposal) VotingClosesAt(votingPeriod time.Duration) time.Time {
	return p.StartTime.Add(votingPeriod)
}

// AcceptsVotes reports whether the window is still open. The boundary
// instant itself still accepts votes.
func (p Proposal) AcceptsVotes(now time.Time, votingPeriod time.Duration) bool {
	return !now.After(p.VotingClosesAt(votingPeriod))
}

func (p Proposal) Status(now time.Time, votingPeriod time.Duration) Status {
	if p.Executed {
		return StatusExecuted
	}
	if p.AcceptsVotes(now, votingPeriod) {
		return StatusOpen
	}
	return StatusClosedPending
}

// Parameters are the admin-mutable global governance settings. Quorum is
// validated to (0,100]; the voting period is deliberately unbounded.
type Parameters struct {
	VotingPeriod     time.Duration `json:"voting_period"`
	QuorumPercentage uint64        `json:"quorum_percentage"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// QuorumVotes truncates toward zero, matching integer division in the
// source arithmetic.
func (p Parameters) QuorumVotes(totalVotingPower uint64) uint64 {
	return totalVotingPower * p.QuorumPercentage / 100
}
