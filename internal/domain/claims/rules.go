package claims

import (
	"fmt"
	"time"
)

// Record is the stored, non-derived part of a claim that the rules below
// need. The sticky flags are monotonic: once set they are never cleared,
// not even by remediation.
type Record struct {
	PayoutRedeemed   bool
	DepositRetrieved bool
	RedemptionPeriod time.Duration
}

// RedemptionDeadline is the last instant at which an accepted claim's
// payout can still be redeemed. Redemption exactly at the deadline
// succeeds; one unit later it fails.
func RedemptionDeadline(t Tally, rec Record) time.Time {
	return t.CooldownEnd().Add(rec.RedemptionPeriod)
}

// CheckRedeemable decides whether the claimant may redeem the payout now.
// Every refusal maps to ErrClaimNotRedeemable; the wrapped detail exists
// for logs, not for branching.
func CheckRedeemable(t Tally, rec Record, now time.Time) error {
	if rec.PayoutRedeemed {
		return fmt.Errorf("%w: payout already redeemed", ErrClaimNotRedeemable)
	}
	if t.Status(now) != StatusFinalized {
		return fmt.Errorf("%w: assessment not finalized", ErrClaimNotRedeemable)
	}
	if t.Outcome() != OutcomeAccepted {
		return fmt.Errorf("%w: outcome is %s", ErrClaimNotRedeemable, t.Outcome())
	}
	if now.After(RedemptionDeadline(t, rec)) {
		return fmt.Errorf("%w: redemption window expired", ErrClaimNotRedeemable)
	}
	return nil
}

// CheckDepositRetrievable decides whether the claimant may take the
// deposit back. Only a finalized draw refunds the deposit; denied claims
// forfeit it.
func CheckDepositRetrievable(t Tally, rec Record, now time.Time) error {
	if rec.DepositRetrieved {
		return fmt.Errorf("%w: deposit already retrieved", ErrClaimNotADraw)
	}
	if t.Status(now) != StatusFinalized {
		return fmt.Errorf("%w: assessment not finalized", ErrClaimNotADraw)
	}
	if t.Outcome() != OutcomeDraw {
		return fmt.Errorf("%w: outcome is %s", ErrClaimNotADraw, t.Outcome())
	}
	return nil
}

// Live reports whether the claim still binds its cover: a claim in voting
// or cooldown is live, as is a finalized accept inside its unredeemed
// redemption window and a finalized draw with the deposit still held.
// Denied, redeemed, retrieved and redemption-expired claims free the
// cover for a new submission.
func Live(t Tally, rec Record, now time.Time) bool {
	if rec.PayoutRedeemed || rec.DepositRetrieved {
		return false
	}
	if t.Status(now) != StatusFinalized {
		return true
	}
	switch t.Outcome() {
	case OutcomeAccepted:
		return !now.After(RedemptionDeadline(t, rec))
	case OutcomeDraw:
		return true
	default:
		return false
	}
}
