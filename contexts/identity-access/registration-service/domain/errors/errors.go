package errors

import "errors"

var (
	ErrAlreadyRegistered = errors.New("account already registered")
	ErrRoleConflict      = errors.New("account already holds a different role")
	ErrInvalidProfile    = errors.New("invalid profile data")
	ErrNotRegistered     = errors.New("account is not registered")
)
