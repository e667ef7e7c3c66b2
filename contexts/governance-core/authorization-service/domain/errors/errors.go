package errors

import "errors"

var (
	ErrForbidden           = errors.New("caller lacks required role")
	ErrInvalidAccount      = errors.New("invalid account identity")
	ErrInvalidRole         = errors.New("invalid role name")
	ErrRoleNotFound        = errors.New("role not found")
	ErrRoleAlreadyAssigned = errors.New("role already assigned to account")
	ErrRoleNotAssigned     = errors.New("role not assigned to account")
)
