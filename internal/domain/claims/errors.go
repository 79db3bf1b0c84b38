package claims

import "errors"

var (
	// Authorization failures.
	ErrNotCoverOwner      = errors.New("caller does not own the referenced cover")
	ErrNotClaimant        = errors.New("caller is not the claimant")
	ErrNotAssessor        = errors.New("caller is not a seat in the assessing group")
	ErrOnlyGovernor       = errors.New("operation restricted to governance")
	ErrOnlyEmergencyAdmin = errors.New("operation restricted to emergency admins")

	// Temporal failures. ClaimNotRedeemable covers "not finalized", "not
	// accepted", "already redeemed" and "redemption window expired": the
	// caller's remedy is the same for all four.
	ErrVotingPeriodEnded  = errors.New("voting period has ended")
	ErrClaimNotRedeemable = errors.New("claim is not redeemable")
	ErrClaimNotADraw      = errors.New("claim deposit is only retrievable on a draw")

	// State-consistency failures.
	ErrClaimNotFound     = errors.New("claim not found")
	ErrAssessmentExists  = errors.New("assessment already exists for claim")
	ErrNoSuchGroup       = errors.New("assessor group does not exist")
	ErrNoAssessingGroup  = errors.New("no assessing group configured for product type")
	ErrClaimAlreadyOpen  = errors.New("cover already has a live claim")
	ErrUnknownProduct    = errors.New("no assessment parameters for product type")
	ErrDepositNotCovered = errors.New("claim deposit could not be collected")
)
