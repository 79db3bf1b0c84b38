package model

import "time"

type Vote struct {
	VoteID   uint64    `gorm:"column:vote_id;primaryKey;autoIncrement"`
	ClaimID  uint64    `gorm:"column:claim_id;not null;uniqueIndex:idx_votes_claim_seat"`
	SeatID   string    `gorm:"column:seat_id;type:text;not null;uniqueIndex:idx_votes_claim_seat"`
	Accept   bool      `gorm:"column:accept;not null"`
	ProofRef string    `gorm:"column:proof_ref;type:text;not null;default:''"`
	CastAt   time.Time `gorm:"column:cast_at;not null"`
}

func (Vote) TableName() string {
	return "votes"
}
