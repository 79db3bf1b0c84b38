package claims

import (
	"testing"
	"time"
)

func testTally(accept, deny uint64) Tally {
	return Tally{
		AcceptWeight:   accept,
		DenyWeight:     deny,
		VotingEnd:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		CooldownPeriod: 24 * time.Hour,
	}
}

func TestOutcome(t *testing.T) {
	if got := testTally(3, 1).Outcome(); got != OutcomeAccepted {
		t.Fatalf("Outcome() = %s, want accepted", got)
	}
	if got := testTally(1, 3).Outcome(); got != OutcomeDenied {
		t.Fatalf("Outcome() = %s, want denied", got)
	}
	if got := testTally(2, 2).Outcome(); got != OutcomeDraw {
		t.Fatalf("Outcome() = %s, want draw", got)
	}
	if got := testTally(0, 0).Outcome(); got != OutcomePending {
		t.Fatalf("Outcome() = %s, want pending", got)
	}
}

func TestStatusProgression(t *testing.T) {
	tally := testTally(0, 0)

	before := tally.VotingEnd.Add(-time.Second)
	if got := tally.Status(before); got != StatusVoting {
		t.Fatalf("Status(before votingEnd) = %s", got)
	}

	// Exactly at votingEnd the window is closed.
	if got := tally.Status(tally.VotingEnd); got != StatusCooldown {
		t.Fatalf("Status(votingEnd) = %s", got)
	}

	within := tally.VotingEnd.Add(23 * time.Hour)
	if got := tally.Status(within); got != StatusCooldown {
		t.Fatalf("Status(cooldown) = %s", got)
	}

	if got := tally.Status(tally.CooldownEnd()); got != StatusFinalized {
		t.Fatalf("Status(cooldownEnd) = %s", got)
	}
}

func TestApplyVoteOverwrite(t *testing.T) {
	tally := testTally(0, 0)

	tally = tally.ApplyVote(nil, true)
	if tally.AcceptWeight != 1 || tally.DenyWeight != 0 {
		t.Fatalf("after accept: %d/%d", tally.AcceptWeight, tally.DenyWeight)
	}

	// Same seat flips to deny: old contribution removed first.
	prev := true
	tally = tally.ApplyVote(&prev, false)
	if tally.AcceptWeight != 0 || tally.DenyWeight != 1 {
		t.Fatalf("after flip: %d/%d", tally.AcceptWeight, tally.DenyWeight)
	}
}

func TestRemoveVoteFloorsAtZero(t *testing.T) {
	tally := testTally(0, 0).RemoveVote(true)
	if tally.AcceptWeight != 0 {
		t.Fatalf("RemoveVote underflow: %d", tally.AcceptWeight)
	}
}
