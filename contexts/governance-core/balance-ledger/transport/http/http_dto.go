package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SetComplianceRequest struct {
	Status bool `json:"status"`
}

type MintRequest struct {
	Account string `json:"account"`
	Amount  uint64 `json:"amount"`
}

type TransferRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type AccountResponse struct {
	Account          string `json:"account"`
	Balance          uint64 `json:"balance"`
	CompliancePassed bool   `json:"compliance_passed"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
}
