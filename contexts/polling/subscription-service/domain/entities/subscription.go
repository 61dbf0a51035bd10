package entities

import "time"

// Subscription records that a user claimed their voting allowance for a
// poll. One per (user, poll); the grant never repeats.
type Subscription struct {
	User          string
	PollID        string
	TokensGranted uint64
	SubscribedAt  time.Time
}
