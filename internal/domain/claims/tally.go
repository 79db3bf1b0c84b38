// Package claims holds the pure rules of the claims-assessment state
// machine. Claim status and outcome are never stored: both are computed
// from the vote tally and the clock on every read, so a tally corrected by
// governance after the fact changes the derived outcome on the next read
// without any replay mechanism.
package claims

import "time"

// Status is the time-derived phase of a claim's assessment.
type Status int

const (
	StatusVoting Status = iota
	StatusCooldown
	StatusFinalized
)

func (s Status) String() string {
	switch s {
	case StatusVoting:
		return "voting"
	case StatusCooldown:
		return "cooldown"
	case StatusFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Outcome is the tally-derived verdict of a claim.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeAccepted
	OutcomeDenied
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeDenied:
		return "denied"
	case OutcomeDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// Tally is the per-claim vote record: unit weight per assessor seat.
// Invariant: AcceptWeight+DenyWeight equals the number of seats with a
// live (un-undone) vote on the claim.
type Tally struct {
	AcceptWeight   uint64
	DenyWeight     uint64
	VotingEnd      time.Time
	CooldownPeriod time.Duration
}

// CooldownEnd is the earliest instant the claim can be finalized.
func (t Tally) CooldownEnd() time.Time {
	return t.VotingEnd.Add(t.CooldownPeriod)
}

// Status derives the claim phase from the supplied clock reading. Callers
// must not cache the result across time boundaries.
func (t Tally) Status(now time.Time) Status {
	if now.Before(t.VotingEnd) {
		return StatusVoting
	}
	if now.Before(t.CooldownEnd()) {
		return StatusCooldown
	}
	return StatusFinalized
}

// Outcome derives the verdict from the weights alone. A tie with at least
// one vote is a draw; no votes at all is pending.
func (t Tally) Outcome() Outcome {
	switch {
	case t.AcceptWeight > t.DenyWeight:
		return OutcomeAccepted
	case t.DenyWeight > t.AcceptWeight:
		return OutcomeDenied
	case t.AcceptWeight > 0:
		return OutcomeDraw
	default:
		return OutcomePending
	}
}

// ApplyVote returns the tally after a seat casts accept (true) or deny.
// prev carries the seat's earlier choice when it re-votes; the old
// contribution is removed before the new one is added.
func (t Tally) ApplyVote(prev *bool, accept bool) Tally {
	if prev != nil {
		t = t.RemoveVote(*prev)
	}
	if accept {
		t.AcceptWeight++
	} else {
		t.DenyWeight++
	}
	return t
}

// RemoveVote reverses a single seat's weight contribution.
func (t Tally) RemoveVote(accept bool) Tally {
	if accept {
		if t.AcceptWeight > 0 {
			t.AcceptWeight--
		}
	} else {
		if t.DenyWeight > 0 {
			t.DenyWeight--
		}
	}
	return t
}
