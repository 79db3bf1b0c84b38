package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrClaimNotFound      = errors.New("claim record not found")
	ErrAssessmentNotFound = errors.New("assessment record not found")
	ErrVoteNotFound       = errors.New("vote record not found")
)

// Claim is the stored claim record. Amounts are base units of the
// settlement asset.
type Claim struct {
	ClaimID          uint64
	CoverID          uint64
	Claimant         string
	ProductTypeID    uint32
	Amount           uint64
	Asset            string
	ProofRef         string
	Deposit          uint64
	PayoutRedeemed   bool
	DepositRetrieved bool
	RedemptionPeriod time.Duration
	SubmittedAt      time.Time
}

// Assessment is the stored per-claim tally and timing record. The
// assessing group is captured at creation so later group edits do not
// retroactively change who could vote.
type Assessment struct {
	ClaimID        uint64
	GroupID        uint64
	AcceptWeight   uint64
	DenyWeight     uint64
	VotingEnd      time.Time
	CooldownPeriod time.Duration
}

// Vote is one seat's recorded choice on one claim.
type Vote struct {
	ClaimID  uint64
	SeatID   string
	Accept   bool
	ProofRef string
	CastAt   time.Time
}

type ClaimCreate struct {
	CoverID          uint64
	Claimant         string
	ProductTypeID    uint32
	Amount           uint64
	Asset            string
	ProofRef         string
	Deposit          uint64
	RedemptionPeriod time.Duration
	SubmittedAt      time.Time
}

type ClaimRepository interface {
	CreateClaim(ctx context.Context, input ClaimCreate) (Claim, error)
	GetClaim(ctx context.Context, claimID uint64) (Claim, error)
	ListClaims(ctx context.Context) ([]Claim, error)
	ListClaimsByCover(ctx context.Context, coverID uint64) ([]Claim, error)
	// MarkPayoutRedeemed and MarkDepositRetrieved set the sticky flags;
	// neither is ever cleared again.
	MarkPayoutRedeemed(ctx context.Context, claimID uint64) error
	MarkDepositRetrieved(ctx context.Context, claimID uint64) error
}

type AssessmentRepository interface {
	CreateAssessment(ctx context.Context, input Assessment) error
	GetAssessment(ctx context.Context, claimID uint64) (Assessment, error)
	UpdateWeights(ctx context.Context, claimID uint64, acceptWeight, denyWeight uint64) error
	SetVotingEnd(ctx context.Context, claimID uint64, votingEnd time.Time) error
	GetVote(ctx context.Context, claimID uint64, seatID string) (Vote, error)
	UpsertVote(ctx context.Context, vote Vote) error
	DeleteVote(ctx context.Context, claimID uint64, seatID string) error
	CountVotes(ctx context.Context, claimID uint64) (uint64, error)
}
