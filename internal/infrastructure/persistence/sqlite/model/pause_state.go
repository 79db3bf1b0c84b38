package model

import "time"

// PauseState is a single-row table (id always 1) holding the active pause
// mask plus at most one pending proposal.
type PauseState struct {
	ID           uint      `gorm:"column:id;primaryKey"`
	ActiveMask   uint64    `gorm:"column:active_mask;not null;default:0"`
	ProposedMask *uint64   `gorm:"column:proposed_mask"`
	Proposer     *string   `gorm:"column:proposer;type:text"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (PauseState) TableName() string {
	return "pause_state"
}
