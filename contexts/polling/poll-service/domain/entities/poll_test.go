package entities

import (
	"testing"
	"time"
)

func TestPollIsOpen(t *testing.T) {
	end := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	poll := Poll{PollID: "poll-1", EndDate: end}

	if !poll.IsOpen(end.Add(-time.Second)) {
		t.Fatalf("expected poll open before end date")
	}
	// The end instant itself is already closed.
	if poll.IsOpen(end) {
		t.Fatalf("expected poll closed at end date")
	}
	if poll.IsOpen(end.Add(time.Second)) {
		t.Fatalf("expected poll closed after end date")
	}
}

func TestEligibilityMatchesLocation(t *testing.T) {
	gate := Eligibility{Location: "belgium"}
	if !gate.MatchesLocation("Belgium") || !gate.MatchesLocation(" BELGIUM ") {
		t.Fatalf("location match must ignore case and padding")
	}
	if gate.MatchesLocation("france") {
		t.Fatalf("different region must not match")
	}

	open := Eligibility{Location: "  "}
	if !open.MatchesLocation("anywhere") {
		t.Fatalf("blank location must admit any region")
	}
}

func TestPollAddresses(t *testing.T) {
	poll := Poll{PollID: "poll-1"}
	if poll.FloatAddress() != "poll:poll-1" || poll.SpentAddress() != "spent:poll-1" {
		t.Fatalf("unexpected custody addresses: %s %s", poll.FloatAddress(), poll.SpentAddress())
	}
}
