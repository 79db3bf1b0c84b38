package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stakesure/internal/domain/pause"
	"stakesure/internal/errs"
	"stakesure/internal/infrastructure/persistence/sqlite/model"
)

const pauseStateRowID = 1

type PauseRepository struct {
	db *gorm.DB
}

func NewPauseRepository(db *gorm.DB) *PauseRepository {
	return &PauseRepository{db: db}
}

func (r *PauseRepository) GetPauseState(ctx context.Context) (pause.State, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return pause.State{}, err
	}

	var row model.PauseState
	if err := db.First(&row, "id = ?", pauseStateRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No row yet means nothing paused, nothing proposed.
			return pause.State{}, nil
		}
		return pause.State{}, errs.Wrap(err, "query pause state")
	}

	state := pause.State{Active: pause.Category(row.ActiveMask)}
	if row.ProposedMask != nil && row.Proposer != nil {
		state.Proposal = &pause.Proposal{
			Proposer: *row.Proposer,
			Mask:     pause.Category(*row.ProposedMask),
		}
	}
	return state, nil
}

func (r *PauseRepository) SavePauseState(ctx context.Context, state pause.State) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	row := model.PauseState{
		ID:         pauseStateRowID,
		ActiveMask: uint64(state.Active),
	}
	if state.Proposal != nil {
		mask := uint64(state.Proposal.Mask)
		proposer := state.Proposal.Proposer
		row.ProposedMask = &mask
		row.Proposer = &proposer
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"active_mask", "proposed_mask", "proposer"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "save pause state")
	}
	return nil
}
