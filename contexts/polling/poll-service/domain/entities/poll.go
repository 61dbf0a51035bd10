package entities

import (
	"strings"
	"time"
)

// Eligibility is the gate a user must pass before subscribing to a poll.
// An empty Location means the poll is open to any region.
type Eligibility struct {
	MinAge            int
	Location          string
	MinTokensRequired uint64
}

// Poll is a ballot with a fixed option list and a dedicated token asset.
// The full supply starts on the float address and moves to subscribers;
// spent vote tokens accumulate on the spent address.
type Poll struct {
	PollID      string
	AssetID     string
	Title       string
	Options     []string
	EndDate     time.Time
	Eligibility Eligibility
	TotalSupply uint64
	Tallies     []uint64
	CreatedBy   string
	CreatedAt   time.Time
}

// FloatAddress holds the unclaimed remainder of the poll's supply.
func (p Poll) FloatAddress() string {
	return "poll:" + p.PollID
}

// SpentAddress accumulates tokens consumed by votes.
func (p Poll) SpentAddress() string {
	return "spent:" + p.PollID
}

// IsOpen reports whether the poll still accepts subscriptions and votes.
func (p Poll) IsOpen(now time.Time) bool {
	return now.Before(p.EndDate)
}

// MatchesLocation applies the case-insensitive region gate.
func (e Eligibility) MatchesLocation(location string) bool {
	if strings.TrimSpace(e.Location) == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(e.Location), strings.TrimSpace(location))
}
