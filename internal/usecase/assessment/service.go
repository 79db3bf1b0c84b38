// Package assessment is the per-claim vote engine. It records votes and
// keeps the weight counters; it never stores a status or an outcome.
// Both are derived from the tally and the clock on read, which is what
// lets remediation change a verdict after the fact by editing weights.
package assessment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"stakesure/internal/bootstrap/logging"
	domain "stakesure/internal/domain/claims"
	"stakesure/internal/domain/pause"
	"stakesure/internal/errs"
	"stakesure/internal/event"
	"stakesure/internal/ports"
)

type Service struct {
	assessments ports.AssessmentRepository
	groups      ports.GroupRepository
	gate        ports.PauseGate
	clock       ports.Clock
	uow         ports.UnitOfWork
	bus         *event.Bus
}

func NewService(
	assessments ports.AssessmentRepository,
	groups ports.GroupRepository,
	gate ports.PauseGate,
	clock ports.Clock,
	uow ports.UnitOfWork,
	bus *event.Bus,
) *Service {
	return &Service{
		assessments: assessments,
		groups:      groups,
		gate:        gate,
		clock:       clock,
		uow:         uow,
		bus:         bus,
	}
}

// Create opens the assessment paired with a new claim. The assessing group
// is captured here: later group edits never change who could vote on this
// claim. Called by the ledger inside the submission transaction.
func (s *Service) Create(ctx context.Context, claimID, groupID uint64, votingPeriod, cooldownPeriod time.Duration) error {
	if _, err := s.assessments.GetAssessment(ctx, claimID); err == nil {
		return domain.ErrAssessmentExists
	} else if !errors.Is(err, ports.ErrAssessmentNotFound) {
		return err
	}

	return s.assessments.CreateAssessment(ctx, ports.Assessment{
		ClaimID:        claimID,
		GroupID:        groupID,
		VotingEnd:      s.clock.Now().Add(votingPeriod),
		CooldownPeriod: cooldownPeriod,
	})
}

// CastVote records or overwrites a seat's vote. Re-voting before the
// window closes removes the old weight contribution and adds the new one.
func (s *Service) CastVote(ctx context.Context, seatID string, claimID uint64, accept bool, proofRef string) error {
	seatID = strings.TrimSpace(seatID)
	if seatID == "" {
		return errors.New("seat id is required")
	}

	if err := s.gate.RequireNotPaused(ctx, pause.Assessments); err != nil {
		return err
	}

	now := s.clock.Now()
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		assessment, err := s.assessments.GetAssessment(txCtx, claimID)
		if err != nil {
			if errors.Is(err, ports.ErrAssessmentNotFound) {
				return domain.ErrClaimNotFound
			}
			return err
		}

		isSeat, err := s.groups.IsSeat(txCtx, assessment.GroupID, seatID)
		if err != nil {
			return err
		}
		if !isSeat {
			return domain.ErrNotAssessor
		}

		tally := tallyOf(assessment)
		if tally.Status(now) != domain.StatusVoting {
			return domain.ErrVotingPeriodEnded
		}

		var prev *bool
		if existing, err := s.assessments.GetVote(txCtx, claimID, seatID); err == nil {
			prev = &existing.Accept
		} else if !errors.Is(err, ports.ErrVoteNotFound) {
			return err
		}

		next := tally.ApplyVote(prev, accept)
		if err := s.assessments.UpdateWeights(txCtx, claimID, next.AcceptWeight, next.DenyWeight); err != nil {
			return err
		}

		return s.assessments.UpsertVote(txCtx, ports.Vote{
			ClaimID:  claimID,
			SeatID:   seatID,
			Accept:   accept,
			ProofRef: proofRef,
			CastAt:   now,
		})
	}); err != nil {
		return err
	}

	logging.Info(ctx, "vote cast",
		slog.Uint64("claim_id", claimID),
		slog.String("seat_id", seatID),
		slog.Bool("accept", accept))
	s.bus.Publish(event.New(event.TypeVoteCast, event.VoteCast{
		ClaimID: claimID,
		SeatID:  seatID,
		Accept:  accept,
	}))
	return nil
}

// Tally loads a claim's tally for derived status/outcome computation.
func (s *Service) Tally(ctx context.Context, claimID uint64) (domain.Tally, error) {
	assessment, err := s.assessments.GetAssessment(ctx, claimID)
	if err != nil {
		if errors.Is(err, ports.ErrAssessmentNotFound) {
			return domain.Tally{}, domain.ErrClaimNotFound
		}
		return domain.Tally{}, errs.Wrap(err, "load assessment")
	}
	return tallyOf(assessment), nil
}

// Get returns the raw stored assessment for the query API.
func (s *Service) Get(ctx context.Context, claimID uint64) (ports.Assessment, error) {
	assessment, err := s.assessments.GetAssessment(ctx, claimID)
	if err != nil {
		if errors.Is(err, ports.ErrAssessmentNotFound) {
			return ports.Assessment{}, domain.ErrClaimNotFound
		}
		return ports.Assessment{}, errs.Wrap(err, "load assessment")
	}
	return assessment, nil
}

// SetVotingEnd re-opens or shortens the voting window. Only the ledger's
// remediation path calls this.
func (s *Service) SetVotingEnd(ctx context.Context, claimID uint64, votingEnd time.Time) error {
	if err := s.assessments.SetVotingEnd(ctx, claimID, votingEnd); err != nil {
		if errors.Is(err, ports.ErrAssessmentNotFound) {
			return domain.ErrClaimNotFound
		}
		return err
	}
	return nil
}

func tallyOf(a ports.Assessment) domain.Tally {
	return domain.Tally{
		AcceptWeight:   a.AcceptWeight,
		DenyWeight:     a.DenyWeight,
		VotingEnd:      a.VotingEnd,
		CooldownPeriod: a.CooldownPeriod,
	}
}
