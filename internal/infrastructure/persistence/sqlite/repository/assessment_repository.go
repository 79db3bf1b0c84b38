package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stakesure/internal/errs"
	"stakesure/internal/infrastructure/persistence/sqlite/model"
	"stakesure/internal/ports"
)

type AssessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

func (r *AssessmentRepository) CreateAssessment(ctx context.Context, input ports.Assessment) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	row := model.Assessment{
		ClaimID:       input.ClaimID,
		GroupID:       input.GroupID,
		AcceptWeight:  input.AcceptWeight,
		DenyWeight:    input.DenyWeight,
		VotingEnd:     input.VotingEnd,
		CooldownNanos: int64(input.CooldownPeriod),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert assessment")
	}
	return nil
}

func (r *AssessmentRepository) GetAssessment(ctx context.Context, claimID uint64) (ports.Assessment, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Assessment{}, err
	}

	var row model.Assessment
	if err := db.First(&row, "claim_id = ?", claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Assessment{}, ports.ErrAssessmentNotFound
		}
		return ports.Assessment{}, errs.Wrap(err, "query assessment")
	}

	return ports.Assessment{
		ClaimID:        row.ClaimID,
		GroupID:        row.GroupID,
		AcceptWeight:   row.AcceptWeight,
		DenyWeight:     row.DenyWeight,
		VotingEnd:      row.VotingEnd,
		CooldownPeriod: time.Duration(row.CooldownNanos),
	}, nil
}

func (r *AssessmentRepository) UpdateWeights(ctx context.Context, claimID uint64, acceptWeight, denyWeight uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	res := db.Model(&model.Assessment{}).
		Where("claim_id = ?", claimID).
		Updates(map[string]any{
			"accept_weight": acceptWeight,
			"deny_weight":   denyWeight,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "update weights")
	}
	if res.RowsAffected == 0 {
		return ports.ErrAssessmentNotFound
	}
	return nil
}

func (r *AssessmentRepository) SetVotingEnd(ctx context.Context, claimID uint64, votingEnd time.Time) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	res := db.Model(&model.Assessment{}).
		Where("claim_id = ?", claimID).
		Update("voting_end", votingEnd)
	if res.Error != nil {
		return errs.Wrap(res.Error, "update voting end")
	}
	if res.RowsAffected == 0 {
		return ports.ErrAssessmentNotFound
	}
	return nil
}

func (r *AssessmentRepository) GetVote(ctx context.Context, claimID uint64, seatID string) (ports.Vote, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Vote{}, err
	}

	var row model.Vote
	if err := db.First(&row, "claim_id = ? AND seat_id = ?", claimID, seatID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Vote{}, ports.ErrVoteNotFound
		}
		return ports.Vote{}, errs.Wrap(err, "query vote")
	}

	return ports.Vote{
		ClaimID:  row.ClaimID,
		SeatID:   row.SeatID,
		Accept:   row.Accept,
		ProofRef: row.ProofRef,
		CastAt:   row.CastAt,
	}, nil
}

func (r *AssessmentRepository) UpsertVote(ctx context.Context, vote ports.Vote) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	row := model.Vote{
		ClaimID:  vote.ClaimID,
		SeatID:   vote.SeatID,
		Accept:   vote.Accept,
		ProofRef: vote.ProofRef,
		CastAt:   vote.CastAt,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "claim_id"}, {Name: "seat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"accept", "proof_ref", "cast_at"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert vote")
	}
	return nil
}

func (r *AssessmentRepository) DeleteVote(ctx context.Context, claimID uint64, seatID string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Where("claim_id = ? AND seat_id = ?", claimID, seatID).
		Delete(&model.Vote{}).Error; err != nil {
		return errs.Wrap(err, "delete vote")
	}
	return nil
}

func (r *AssessmentRepository) CountVotes(ctx context.Context, claimID uint64) (uint64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.Vote{}).Where("claim_id = ?", claimID).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count votes")
	}
	return uint64(count), nil
}
