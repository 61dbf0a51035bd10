package errors

import "errors"

var (
	ErrAlreadySubscribed = errors.New("user already subscribed to poll")
	ErrEligibilityFailed = errors.New("user does not meet poll eligibility")
	ErrAccessDenied      = errors.New("access denied: incorrect role")
	ErrPollClosed        = errors.New("poll closed")
	ErrPollNotFound      = errors.New("poll not found")
	ErrNotRegistered     = errors.New("account not registered")
)
