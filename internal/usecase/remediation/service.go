// Package remediation holds the governance-only operations that correct a
// compromised assessor after the fact: strike their votes, replace the
// seat, and re-open voting. Every operation demands that the relevant
// pause category is already active. The two-admin pause is the
// concurrency-safety contract that keeps ordinary votes and redemptions
// out of the correction window.
package remediation

import (
	"context"
	"errors"
	"log/slog"

	"stakesure/internal/bootstrap/config"
	"stakesure/internal/bootstrap/logging"
	domain "stakesure/internal/domain/claims"
	"stakesure/internal/domain/pause"
	"stakesure/internal/event"
	"stakesure/internal/ports"
)

// Ledger is what remediation needs from the claims ledger.
type Ledger interface {
	ExtendVoting(ctx context.Context, claimID uint64) error
}

// Registry is what remediation needs from the assessor-group registry.
type Registry interface {
	AddAssessors(ctx context.Context, actor string, groupID uint64, seatIDs []string) error
	RemoveAssessor(ctx context.Context, actor string, groupID uint64, seatID string) error
}

type Service struct {
	assessments ports.AssessmentRepository
	ledger      Ledger
	registry    Registry
	gate        ports.PauseGate
	uow         ports.UnitOfWork
	governance  config.GovernanceConfig
	bus         *event.Bus
}

func NewService(
	assessments ports.AssessmentRepository,
	ledger Ledger,
	registry Registry,
	gate ports.PauseGate,
	uow ports.UnitOfWork,
	governance config.GovernanceConfig,
	bus *event.Bus,
) *Service {
	return &Service{
		assessments: assessments,
		ledger:      ledger,
		registry:    registry,
		gate:        gate,
		uow:         uow,
		governance:  governance,
		bus:         bus,
	}
}

// UndoVotes reverses the seat's weight contribution on each claim and
// clears the vote records. Claims the seat never voted on are skipped, so
// retried governance transactions stay safe. Votes on already-settled
// claims are still struck; the ledger's sticky flags keep that
// economically inert.
func (s *Service) UndoVotes(ctx context.Context, actor string, seatID string, claimIDs []uint64) error {
	if err := s.requireGovernor(actor); err != nil {
		return err
	}
	if err := s.gate.RequirePaused(ctx, pause.Assessments); err != nil {
		return err
	}

	undone := make([]uint64, 0, len(claimIDs))
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		for _, claimID := range claimIDs {
			vote, err := s.assessments.GetVote(txCtx, claimID, seatID)
			if err != nil {
				if errors.Is(err, ports.ErrVoteNotFound) {
					continue
				}
				return err
			}

			assessment, err := s.assessments.GetAssessment(txCtx, claimID)
			if err != nil {
				return err
			}

			tally := domain.Tally{
				AcceptWeight: assessment.AcceptWeight,
				DenyWeight:   assessment.DenyWeight,
			}.RemoveVote(vote.Accept)

			if err := s.assessments.UpdateWeights(txCtx, claimID, tally.AcceptWeight, tally.DenyWeight); err != nil {
				return err
			}
			if err := s.assessments.DeleteVote(txCtx, claimID, seatID); err != nil {
				return err
			}
			undone = append(undone, claimID)
		}
		return nil
	}); err != nil {
		return err
	}

	logging.Info(ctx, "votes undone",
		slog.String("seat_id", seatID),
		slog.Int("claims", len(undone)))
	s.bus.Publish(event.New(event.TypeVotesUndone, event.VotesUndone{
		SeatID:   seatID,
		ClaimIDs: undone,
	}))
	return nil
}

// ExtendVotingPeriod re-opens the claim's voting window so the corrected
// committee can cast a deciding vote.
func (s *Service) ExtendVotingPeriod(ctx context.Context, actor string, claimID uint64) error {
	if err := s.requireGovernor(actor); err != nil {
		return err
	}
	if err := s.gate.RequirePaused(ctx, pause.Assessments); err != nil {
		return err
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.ledger.ExtendVoting(txCtx, claimID)
	}); err != nil {
		return err
	}

	logging.Info(ctx, "voting period extended", slog.Uint64("claim_id", claimID))
	s.bus.Publish(event.New(event.TypeVotingExtended, event.VotingExtended{ClaimID: claimID}))
	return nil
}

// AddAssessors seats replacement assessors while the membership pause is
// active.
func (s *Service) AddAssessors(ctx context.Context, actor string, groupID uint64, seatIDs []string) error {
	if err := s.requireGovernor(actor); err != nil {
		return err
	}
	if err := s.gate.RequirePaused(ctx, pause.Membership); err != nil {
		return err
	}
	return s.registry.AddAssessors(ctx, actor, groupID, seatIDs)
}

// RemoveAssessor unseats a compromised assessor while the membership
// pause is active.
func (s *Service) RemoveAssessor(ctx context.Context, actor string, groupID uint64, seatID string) error {
	if err := s.requireGovernor(actor); err != nil {
		return err
	}
	if err := s.gate.RequirePaused(ctx, pause.Membership); err != nil {
		return err
	}
	return s.registry.RemoveAssessor(ctx, actor, groupID, seatID)
}

func (s *Service) requireGovernor(actor string) error {
	if !s.governance.IsGovernor(actor) {
		return domain.ErrOnlyGovernor
	}
	return nil
}
