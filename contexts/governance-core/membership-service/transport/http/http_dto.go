package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AddMemberRequest struct {
	Account          string `json:"account"`
	BonusVotingPower uint64 `json:"bonus_voting_power"`
}

type UpdateComplianceRequest struct {
	Status bool `json:"status"`
}

type SetBonusRequest struct {
	BonusVotingPower uint64 `json:"bonus_voting_power"`
}

type DelegateRequest struct {
	Delegatee string `json:"delegatee"`
}

type MemberResponse struct {
	Account          string `json:"account"`
	Approved         bool   `json:"approved"`
	CompliancePassed bool   `json:"compliance_passed"`
	BonusVotingPower uint64 `json:"bonus_voting_power"`
	AddedAt          string `json:"added_at"`
}

type MemberListResponse struct {
	Members []MemberResponse `json:"members"`
}

type VotingPowerResponse struct {
	Account     string `json:"account"`
	VotingPower uint64 `json:"voting_power"`
}

type TotalVotingPowerResponse struct {
	TotalVotingPower uint64 `json:"total_voting_power"`
}
