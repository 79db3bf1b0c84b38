package model

import "time"

// AssessorGroup rows exist only to make group ids monotonic and never
// reused; membership lives in AssessorSeat.
type AssessorGroup struct {
	GroupID   uint64    `gorm:"column:group_id;primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (AssessorGroup) TableName() string {
	return "assessor_groups"
}

type AssessorSeat struct {
	ID      uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	GroupID uint64 `gorm:"column:group_id;not null;uniqueIndex:idx_seats_group_seat"`
	SeatID  string `gorm:"column:seat_id;type:text;not null;uniqueIndex:idx_seats_group_seat"`
}

func (AssessorSeat) TableName() string {
	return "assessor_seats"
}

type ProductTypeGroup struct {
	ProductTypeID uint32 `gorm:"column:product_type_id;primaryKey"`
	GroupID       uint64 `gorm:"column:group_id;not null"`
}

func (ProductTypeGroup) TableName() string {
	return "product_type_groups"
}
