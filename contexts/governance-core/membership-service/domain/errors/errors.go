package errors

import "errors"

var (
	ErrInvalidAccount = errors.New("invalid account identity")
	ErrAlreadyMember  = errors.New("account is already an approved member")
	ErrNotMember      = errors.New("account is not an approved member")
	ErrNotCompliant   = errors.New("account has not passed compliance")
	ErrNullDelegatee  = errors.New("delegatee must not be the null identity")
	ErrConflict       = errors.New("membership store conflict")
)
