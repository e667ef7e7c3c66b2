package errors

import "errors"

var (
	ErrInvalidAccount     = errors.New("invalid account identity")
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrNotMember          = errors.New("caller is not an approved member")
	ErrNotCompliant       = errors.New("caller has not passed compliance")
	ErrZeroVotingPower    = errors.New("caller has no voting power")
	ErrAlreadyVoted       = errors.New("account already voted on this proposal")
	ErrVotingClosed       = errors.New("voting window has closed")
	ErrVotingNotElapsed   = errors.New("voting window has not elapsed yet")
	ErrAlreadyExecuted    = errors.New("proposal already executed")
	ErrQuorumNotReached   = errors.New("total votes below quorum")
	ErrProposalNotPassing = errors.New("votes for are not strictly greater than votes against")
	ErrInvalidQuorum      = errors.New("quorum percentage must be between 1 and 100")
	ErrConflict           = errors.New("proposal store conflict")
)
