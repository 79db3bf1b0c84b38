// Package ledger owns claim records and their economics: submission with
// deposit, payout redemption, deposit retrieval. Status and outcome are
// computed through the assessment engine on every read, never stored.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stakesure/internal/bootstrap/config"
	"stakesure/internal/bootstrap/logging"
	domain "stakesure/internal/domain/claims"
	"stakesure/internal/domain/pause"
	"stakesure/internal/errs"
	"stakesure/internal/event"
	"stakesure/internal/ports"
)

// Engine is what the ledger needs from the assessment engine.
type Engine interface {
	Create(ctx context.Context, claimID, groupID uint64, votingPeriod, cooldownPeriod time.Duration) error
	Tally(ctx context.Context, claimID uint64) (domain.Tally, error)
	SetVotingEnd(ctx context.Context, claimID uint64, votingEnd time.Time) error
}

type Service struct {
	claims ports.ClaimRepository
	engine Engine
	groups ports.GroupRepository
	covers ports.CoverOwnership
	assets ports.AssetTransfer
	gate   ports.PauseGate
	clock  ports.Clock
	uow    ports.UnitOfWork
	bus    *event.Bus
	cfg    config.Config
}

func NewService(
	claims ports.ClaimRepository,
	engine Engine,
	groups ports.GroupRepository,
	covers ports.CoverOwnership,
	assets ports.AssetTransfer,
	gate ports.PauseGate,
	clock ports.Clock,
	uow ports.UnitOfWork,
	bus *event.Bus,
	cfg config.Config,
) *Service {
	return &Service{
		claims: claims,
		engine: engine,
		groups: groups,
		covers: covers,
		assets: assets,
		gate:   gate,
		clock:  clock,
		uow:    uow,
		bus:    bus,
		cfg:    cfg,
	}
}

// Details is the derived claim state as of now.
type Details struct {
	Status  domain.Status
	Outcome domain.Outcome
}

// Submit opens a claim and its paired assessment. The caller must own the
// cover and fund the fixed deposit; parameters come from the cover's
// product type.
func (s *Service) Submit(ctx context.Context, claimant string, coverID uint64, amount uint64, proofRef string) (uint64, error) {
	claimant = strings.TrimSpace(claimant)
	if claimant == "" {
		return 0, errors.New("claimant identity is required")
	}
	if amount == 0 {
		return 0, errors.New("requested amount must be positive")
	}

	if err := s.gate.RequireNotPaused(ctx, pause.Claims); err != nil {
		return 0, err
	}

	isOwner, err := s.covers.IsOwner(ctx, coverID, claimant)
	if err != nil {
		return 0, errs.Wrap(err, "check cover ownership")
	}
	if !isOwner {
		return 0, domain.ErrNotCoverOwner
	}

	productTypeID, err := s.covers.ProductType(ctx, coverID)
	if err != nil {
		return 0, errs.Wrap(err, "resolve product type")
	}
	product, ok := s.cfg.ProductType(productTypeID)
	if !ok {
		return 0, domain.ErrUnknownProduct
	}

	groupID, err := s.groups.GroupForProductType(ctx, productTypeID)
	if err != nil {
		if errors.Is(err, ports.ErrGroupNotFound) {
			return 0, domain.ErrNoAssessingGroup
		}
		return 0, err
	}

	now := s.clock.Now()
	var claimID uint64
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.requireNoLiveClaim(txCtx, coverID, now); err != nil {
			return err
		}

		claim, err := s.claims.CreateClaim(txCtx, ports.ClaimCreate{
			CoverID:          coverID,
			Claimant:         claimant,
			ProductTypeID:    productTypeID,
			Amount:           amount,
			Asset:            product.Asset,
			ProofRef:         proofRef,
			Deposit:          product.ClaimDeposit,
			RedemptionPeriod: product.RedemptionPeriod,
			SubmittedAt:      now,
		})
		if err != nil {
			return err
		}
		claimID = claim.ClaimID

		if err := s.engine.Create(txCtx, claimID, groupID, product.VotingPeriod, product.CooldownPeriod); err != nil {
			return err
		}

		// Collect last: a failed collection rolls back the whole claim.
		if err := s.assets.CollectDeposit(txCtx, product.Asset, product.ClaimDeposit, claimant); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrDepositNotCovered, err)
		}
		return nil
	}); err != nil {
		return 0, err
	}

	logging.Info(ctx, "claim submitted",
		slog.Uint64("claim_id", claimID),
		slog.Uint64("cover_id", coverID),
		slog.Uint64("amount", amount),
		slog.String("asset", product.Asset))
	s.bus.Publish(event.New(event.TypeClaimSubmitted, event.ClaimSubmitted{
		ClaimID: claimID,
		CoverID: coverID,
		Amount:  amount,
		Asset:   product.Asset,
	}))
	return claimID, nil
}

// Details computes the claim's derived status and outcome as of now.
func (s *Service) Details(ctx context.Context, claimID uint64) (Details, error) {
	if _, err := s.claims.GetClaim(ctx, claimID); err != nil {
		if errors.Is(err, ports.ErrClaimNotFound) {
			return Details{}, domain.ErrClaimNotFound
		}
		return Details{}, errs.Wrap(err, "load claim")
	}

	tally, err := s.engine.Tally(ctx, claimID)
	if err != nil {
		return Details{}, err
	}

	return Details{
		Status:  tally.Status(s.clock.Now()),
		Outcome: tally.Outcome(),
	}, nil
}

// Redeem pays out requestedAmount+deposit on a finalized accepted claim
// inside its redemption window and burns the backing stake. The deposit
// refund keeps honest claims economically neutral.
func (s *Service) Redeem(ctx context.Context, claimant string, claimID uint64) error {
	if err := s.gate.RequireNotPaused(ctx, pause.Claims); err != nil {
		return err
	}

	now := s.clock.Now()
	var claim ports.Claim
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		claim, err = s.getClaim(txCtx, claimID)
		if err != nil {
			return err
		}
		if claim.Claimant != claimant {
			return domain.ErrNotClaimant
		}

		tally, err := s.engine.Tally(txCtx, claimID)
		if err != nil {
			return err
		}
		if err := domain.CheckRedeemable(tally, recordOf(claim), now); err != nil {
			return err
		}

		if err := s.claims.MarkPayoutRedeemed(txCtx, claimID); err != nil {
			return err
		}
		if err := s.assets.Payout(txCtx, claim.Asset, claim.Amount+claim.Deposit, claimant); err != nil {
			return errs.Wrap(err, "pay out claim")
		}
		if err := s.assets.BurnStake(txCtx, claim.CoverID, claim.Amount); err != nil {
			return errs.Wrap(err, "burn backing stake")
		}
		return nil
	}); err != nil {
		return err
	}

	logging.Info(ctx, "claim payout redeemed",
		slog.Uint64("claim_id", claimID),
		slog.Uint64("amount", claim.Amount+claim.Deposit))
	s.bus.Publish(event.New(event.TypePayoutRedeemed, event.PayoutRedeemed{
		ClaimID: claimID,
		Amount:  claim.Amount + claim.Deposit,
		Asset:   claim.Asset,
	}))
	return nil
}

// RetrieveDeposit refunds only the deposit on a finalized draw. Denied
// claims refund nothing; the forfeited deposit is the spam deterrent.
func (s *Service) RetrieveDeposit(ctx context.Context, claimant string, claimID uint64) error {
	if err := s.gate.RequireNotPaused(ctx, pause.Claims); err != nil {
		return err
	}

	now := s.clock.Now()
	var claim ports.Claim
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		claim, err = s.getClaim(txCtx, claimID)
		if err != nil {
			return err
		}
		if claim.Claimant != claimant {
			return domain.ErrNotClaimant
		}

		tally, err := s.engine.Tally(txCtx, claimID)
		if err != nil {
			return err
		}
		if err := domain.CheckDepositRetrievable(tally, recordOf(claim), now); err != nil {
			return err
		}

		if err := s.claims.MarkDepositRetrieved(txCtx, claimID); err != nil {
			return err
		}
		if err := s.assets.Payout(txCtx, claim.Asset, claim.Deposit, claimant); err != nil {
			return errs.Wrap(err, "refund deposit")
		}
		return nil
	}); err != nil {
		return err
	}

	s.bus.Publish(event.New(event.TypeDepositRetrieved, event.DepositRetrieved{
		ClaimID: claimID,
		Deposit: claim.Deposit,
		Asset:   claim.Asset,
	}))
	return nil
}

// ExtendVoting resets the voting window to now+votingPeriod, re-opening
// voting so a corrected committee can re-vote. The sticky redeemed and
// retrieved flags are never touched, so extending a settled claim has no
// economic effect. Only the remediation path calls this; it carries the
// governance and pause checks.
func (s *Service) ExtendVoting(ctx context.Context, claimID uint64) error {
	claim, err := s.getClaim(ctx, claimID)
	if err != nil {
		return err
	}

	product, ok := s.cfg.ProductType(claim.ProductTypeID)
	if !ok {
		return domain.ErrUnknownProduct
	}

	return s.engine.SetVotingEnd(ctx, claimID, s.clock.Now().Add(product.VotingPeriod))
}

// Get returns the stored claim record.
func (s *Service) Get(ctx context.Context, claimID uint64) (ports.Claim, error) {
	return s.getClaim(ctx, claimID)
}

// List returns all claims in submission order, for the console and API.
func (s *Service) List(ctx context.Context) ([]ports.Claim, error) {
	return s.claims.ListClaims(ctx)
}

func (s *Service) getClaim(ctx context.Context, claimID uint64) (ports.Claim, error) {
	claim, err := s.claims.GetClaim(ctx, claimID)
	if err != nil {
		if errors.Is(err, ports.ErrClaimNotFound) {
			return ports.Claim{}, domain.ErrClaimNotFound
		}
		return ports.Claim{}, errs.Wrap(err, "load claim")
	}
	return claim, nil
}

// requireNoLiveClaim enforces the one-live-claim-per-cover policy:
// submission is allowed once the prior claim is denied, settled, or has
// expired unredeemed.
func (s *Service) requireNoLiveClaim(ctx context.Context, coverID uint64, now time.Time) error {
	prior, err := s.claims.ListClaimsByCover(ctx, coverID)
	if err != nil {
		return err
	}

	for _, claim := range prior {
		tally, err := s.engine.Tally(ctx, claim.ClaimID)
		if err != nil {
			return err
		}
		if domain.Live(tally, recordOf(claim), now) {
			return domain.ErrClaimAlreadyOpen
		}
	}
	return nil
}

func recordOf(claim ports.Claim) domain.Record {
	return domain.Record{
		PayoutRedeemed:   claim.PayoutRedeemed,
		DepositRetrieved: claim.DepositRetrieved,
		RedemptionPeriod: claim.RedemptionPeriod,
	}
}
