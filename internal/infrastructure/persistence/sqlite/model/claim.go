package model

import "time"

type Claim struct {
	ClaimID          uint64    `gorm:"column:claim_id;primaryKey;autoIncrement"`
	CoverID          uint64    `gorm:"column:cover_id;not null;index"`
	Claimant         string    `gorm:"column:claimant;type:text;not null;index"`
	ProductTypeID    uint32    `gorm:"column:product_type_id;not null"`
	Amount           uint64    `gorm:"column:amount;not null"`
	Asset            string    `gorm:"column:asset;type:text;not null"`
	ProofRef         string    `gorm:"column:proof_ref;type:text;not null"`
	Deposit          uint64    `gorm:"column:deposit;not null"`
	PayoutRedeemed   bool      `gorm:"column:payout_redeemed;not null;default:0"`
	DepositRetrieved bool      `gorm:"column:deposit_retrieved;not null;default:0"`
	RedemptionNanos  int64     `gorm:"column:redemption_nanos;not null"`
	SubmittedAt      time.Time `gorm:"column:submitted_at;not null"`
}

func (Claim) TableName() string {
	return "claims"
}
