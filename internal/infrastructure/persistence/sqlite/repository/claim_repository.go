package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"stakesure/internal/errs"
	"stakesure/internal/infrastructure/persistence/sqlite/model"
	"stakesure/internal/ports"
)

type ClaimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) CreateClaim(ctx context.Context, input ports.ClaimCreate) (ports.Claim, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Claim{}, err
	}

	row := model.Claim{
		CoverID:         input.CoverID,
		Claimant:        input.Claimant,
		ProductTypeID:   input.ProductTypeID,
		Amount:          input.Amount,
		Asset:           input.Asset,
		ProofRef:        input.ProofRef,
		Deposit:         input.Deposit,
		RedemptionNanos: int64(input.RedemptionPeriod),
		SubmittedAt:     input.SubmittedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Claim{}, errs.Wrap(err, "insert claim")
	}
	return mapClaim(row), nil
}

func (r *ClaimRepository) GetClaim(ctx context.Context, claimID uint64) (ports.Claim, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Claim{}, err
	}

	var row model.Claim
	if err := db.First(&row, "claim_id = ?", claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Claim{}, ports.ErrClaimNotFound
		}
		return ports.Claim{}, errs.Wrap(err, "query claim")
	}
	return mapClaim(row), nil
}

func (r *ClaimRepository) ListClaims(ctx context.Context) ([]ports.Claim, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Claim
	if err := db.Order("claim_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query claims")
	}
	return mapClaims(rows), nil
}

func (r *ClaimRepository) ListClaimsByCover(ctx context.Context, coverID uint64) ([]ports.Claim, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Claim
	if err := db.Where("cover_id = ?", coverID).Order("claim_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query claims by cover")
	}
	return mapClaims(rows), nil
}

func (r *ClaimRepository) MarkPayoutRedeemed(ctx context.Context, claimID uint64) error {
	return r.setFlag(ctx, claimID, "payout_redeemed")
}

func (r *ClaimRepository) MarkDepositRetrieved(ctx context.Context, claimID uint64) error {
	return r.setFlag(ctx, claimID, "deposit_retrieved")
}

func (r *ClaimRepository) setFlag(ctx context.Context, claimID uint64, column string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	res := db.Model(&model.Claim{}).
		Where("claim_id = ?", claimID).
		Update(column, true)
	if res.Error != nil {
		return errs.Wrapf(res.Error, "set %s", column)
	}
	if res.RowsAffected == 0 {
		return ports.ErrClaimNotFound
	}
	return nil
}

func mapClaims(rows []model.Claim) []ports.Claim {
	items := make([]ports.Claim, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapClaim(row))
	}
	return items
}

func mapClaim(row model.Claim) ports.Claim {
	return ports.Claim{
		ClaimID:          row.ClaimID,
		CoverID:          row.CoverID,
		Claimant:         row.Claimant,
		ProductTypeID:    row.ProductTypeID,
		Amount:           row.Amount,
		Asset:            row.Asset,
		ProofRef:         row.ProofRef,
		Deposit:          row.Deposit,
		PayoutRedeemed:   row.PayoutRedeemed,
		DepositRetrieved: row.DepositRetrieved,
		RedemptionPeriod: time.Duration(row.RedemptionNanos),
		SubmittedAt:      row.SubmittedAt,
	}
}
