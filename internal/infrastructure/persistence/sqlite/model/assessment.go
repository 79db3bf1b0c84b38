package model

import "time"

type Assessment struct {
	ClaimID       uint64    `gorm:"column:claim_id;primaryKey"`
	GroupID       uint64    `gorm:"column:group_id;not null"`
	AcceptWeight  uint64    `gorm:"column:accept_weight;not null;default:0"`
	DenyWeight    uint64    `gorm:"column:deny_weight;not null;default:0"`
	VotingEnd     time.Time `gorm:"column:voting_end;not null"`
	CooldownNanos int64     `gorm:"column:cooldown_nanos;not null"`
}

func (Assessment) TableName() string {
	return "assessments"
}
