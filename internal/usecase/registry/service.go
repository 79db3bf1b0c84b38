// Package registry manages assessor groups and the product-type routing
// that decides which group assesses claims on which product.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"stakesure/internal/bootstrap/config"
	"stakesure/internal/bootstrap/logging"
	domain "stakesure/internal/domain/claims"
	"stakesure/internal/ports"
)

type Service struct {
	groups     ports.GroupRepository
	uow        ports.UnitOfWork
	governance config.GovernanceConfig
}

func NewService(groups ports.GroupRepository, uow ports.UnitOfWork, governance config.GovernanceConfig) *Service {
	return &Service{
		groups:     groups,
		uow:        uow,
		governance: governance,
	}
}

// AddAssessors adds seats to a group. Referencing the next unused group id
// creates the group, keeping ids monotonic; referencing beyond it fails.
// Seats already in the group are skipped.
func (s *Service) AddAssessors(ctx context.Context, actor string, groupID uint64, seatIDs []string) error {
	if err := s.requireGovernor(actor); err != nil {
		return err
	}

	cleaned := make([]string, 0, len(seatIDs))
	for _, seatID := range seatIDs {
		seatID = strings.TrimSpace(seatID)
		if seatID == "" {
			continue
		}
		cleaned = append(cleaned, seatID)
	}
	if len(cleaned) == 0 {
		return errors.New("at least one seat id is required")
	}

	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		count, err := s.groups.GroupsCount(txCtx)
		if err != nil {
			return err
		}
		if groupID > count+1 {
			return domain.ErrNoSuchGroup
		}
		if groupID == count+1 {
			created, err := s.groups.CreateGroup(txCtx)
			if err != nil {
				return err
			}
			if created != groupID {
				return errors.New("group id allocation out of sequence")
			}
			logging.Info(txCtx, "assessor group created", slog.Uint64("group_id", created))
		}

		return s.groups.AddSeats(txCtx, groupID, cleaned)
	})
}

// RemoveAssessor removes a seat from a group. Removing a non-member is a
// silent no-op so retried governance transactions stay safe.
func (s *Service) RemoveAssessor(ctx context.Context, actor string, groupID uint64, seatID string) error {
	if err := s.requireGovernor(actor); err != nil {
		return err
	}

	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.groups.RemoveSeat(txCtx, groupID, seatID)
	})
}

// SetAssessingGroups routes the given product types to a group.
func (s *Service) SetAssessingGroups(ctx context.Context, actor string, productTypeIDs []uint32, groupID uint64) error {
	if err := s.requireGovernor(actor); err != nil {
		return err
	}
	if len(productTypeIDs) == 0 {
		return errors.New("at least one product type id is required")
	}

	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.groups.SetProductTypeGroup(txCtx, productTypeIDs, groupID); err != nil {
			if errors.Is(err, ports.ErrGroupNotFound) {
				return domain.ErrNoSuchGroup
			}
			return err
		}
		return nil
	})
}

// GroupsCount returns the id of the most recently created group.
func (s *Service) GroupsCount(ctx context.Context) (uint64, error) {
	return s.groups.GroupsCount(ctx)
}

// ListSeats returns a group's seat ids in insertion order.
func (s *Service) ListSeats(ctx context.Context, groupID uint64) ([]string, error) {
	return s.groups.ListSeats(ctx, groupID)
}

func (s *Service) requireGovernor(actor string) error {
	if !s.governance.IsGovernor(actor) {
		return domain.ErrOnlyGovernor
	}
	return nil
}
