package entities

import "time"

// Account is a ledger account. Compliance is a flag on the account, kept in
// lockstep with the membership record by the governance core.
type Account struct {
	Address          string
	Balance          uint64
	CompliancePassed bool
	UpdatedAt        time.Time
}
