package errors

import "errors"

var (
	ErrInvalidPollParameters = errors.New("invalid poll parameters")
	ErrPollNotFound          = errors.New("poll not found")
	ErrInvalidOption         = errors.New("invalid poll option")
	ErrPollClosed            = errors.New("poll closed")
	ErrAccessDenied          = errors.New("access denied: incorrect role")
	ErrInsufficientBalance   = errors.New("insufficient token balance")
	ErrInvalidAuthorization  = errors.New("invalid vote authorization")
)
