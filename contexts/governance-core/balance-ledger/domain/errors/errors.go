package errors

import "errors"

var (
	ErrInvalidAccount       = errors.New("account identifier is required")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrNotComplianceManager = errors.New("caller lacks the compliance manager capability")
	ErrNotCompliant         = errors.New("account has not passed compliance")
	ErrInsufficientBalance  = errors.New("balance is insufficient for the transfer")
	ErrConflict             = errors.New("ledger state conflict")
)
