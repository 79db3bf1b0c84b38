package uow

import (
	"context"

	"gorm.io/gorm"

	"stakesure/internal/ports"
)

// UnitOfWork implements ports.UnitOfWork with gorm. Every mutating core
// operation runs inside one of these transactions, which is what makes
// the ledger single-writer-at-a-time.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx))
	})
}
