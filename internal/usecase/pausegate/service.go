// Package pausegate is the two-admin emergency pause interlock. A single
// compromised admin key can signal a pause but never enact one, and can
// never unblock remediation on its own.
package pausegate

import (
	"context"
	"log/slog"

	"stakesure/internal/bootstrap/config"
	"stakesure/internal/bootstrap/logging"
	domain "stakesure/internal/domain/claims"
	"stakesure/internal/domain/pause"
	"stakesure/internal/errs"
	"stakesure/internal/event"
	"stakesure/internal/ports"
)

type Service struct {
	repo       ports.PauseRepository
	uow        ports.UnitOfWork
	governance config.GovernanceConfig
	bus        *event.Bus
}

func NewService(repo ports.PauseRepository, uow ports.UnitOfWork, governance config.GovernanceConfig, bus *event.Bus) *Service {
	return &Service{
		repo:       repo,
		uow:        uow,
		governance: governance,
		bus:        bus,
	}
}

// Propose stores a pending mask change. It overwrites any unconfirmed
// prior proposal and changes nothing until a second admin confirms.
func (s *Service) Propose(ctx context.Context, admin string, mask pause.Category) error {
	if err := s.requireAdmin(admin); err != nil {
		return err
	}

	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.repo.GetPauseState(txCtx)
		if err != nil {
			return err
		}
		return s.repo.SavePauseState(txCtx, state.Propose(admin, mask))
	})
}

// Confirm activates the proposed mask. The confirmer must differ from the
// proposer and repeat the exact mask.
func (s *Service) Confirm(ctx context.Context, admin string, mask pause.Category) error {
	if err := s.requireAdmin(admin); err != nil {
		return err
	}

	var active pause.Category
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.repo.GetPauseState(txCtx)
		if err != nil {
			return err
		}

		next, err := state.Confirm(admin, mask)
		if err != nil {
			return err
		}
		active = next.Active
		return s.repo.SavePauseState(txCtx, next)
	}); err != nil {
		return err
	}

	logging.Info(ctx, "pause mask changed",
		slog.String("admin", admin),
		slog.Uint64("active_mask", uint64(active)))
	s.bus.Publish(event.New(event.TypePauseChanged, event.PauseChanged{ActiveMask: uint64(active)}))
	return nil
}

// CancelProposal drops any pending proposal; cancelling twice is a no-op.
func (s *Service) CancelProposal(ctx context.Context, admin string) error {
	if err := s.requireAdmin(admin); err != nil {
		return err
	}

	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		state, err := s.repo.GetPauseState(txCtx)
		if err != nil {
			return err
		}
		return s.repo.SavePauseState(txCtx, state.Cancel())
	})
}

// State returns the current pause configuration for observability.
func (s *Service) State(ctx context.Context) (pause.State, error) {
	state, err := s.repo.GetPauseState(ctx)
	if err != nil {
		return pause.State{}, errs.Wrap(err, "load pause state")
	}
	return state, nil
}

// RequireNotPaused implements ports.PauseGate for ordinary operations.
// The state is re-read on every call: pause checks must never be cached.
func (s *Service) RequireNotPaused(ctx context.Context, category pause.Category) error {
	state, err := s.repo.GetPauseState(ctx)
	if err != nil {
		return errs.Wrap(err, "load pause state")
	}
	return state.RequireNotPaused(category)
}

// RequirePaused implements ports.PauseGate for remediation, which may only
// run while the relevant category is deliberately paused.
func (s *Service) RequirePaused(ctx context.Context, category pause.Category) error {
	state, err := s.repo.GetPauseState(ctx)
	if err != nil {
		return errs.Wrap(err, "load pause state")
	}
	return state.RequirePaused(category)
}

func (s *Service) requireAdmin(admin string) error {
	if !s.governance.IsEmergencyAdmin(admin) {
		return domain.ErrOnlyEmergencyAdmin
	}
	return nil
}
