package errors

import "errors"

var (
	ErrAccessDenied   = errors.New("access denied: incorrect role")
	ErrRoleConflict   = errors.New("account already holds a different role")
	ErrInvalidRole    = errors.New("invalid role")
	ErrInvalidAccount = errors.New("invalid account address")
)
