package entities

import "time"

// Member is an account approved to participate in governance. A removed
// member has no record at all; readers treat the missing record as a
// zero-valued one.
type Member struct {
	Address          string    `json:"address"`
	Approved         bool      `json:"approved"`
	CompliancePassed bool      `json:"compliance_passed"`
	BonusVotingPower uint64    `json:"bonus_voting_power"`
	AddedAt          time.Time `json:"added_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Delegation assigns another account's balance and bonus weight to be used
// in place of the delegator's own. Resolution is a single hop and never
// walks chains.
type Delegation struct {
	Delegator string    `json:"delegator"`
	Delegatee string    `json:"delegatee"`
	UpdatedAt time.Time `json:"updated_at"`
}
