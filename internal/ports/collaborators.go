package ports

import (
	"context"
	"errors"
)

var (
	ErrCoverNotFound    = errors.New("cover not found")
	ErrTransferFailed   = errors.New("asset transfer failed")
	ErrInsufficientFund = errors.New("insufficient funds for transfer")
)

// CoverOwnership is the claimant-identity boundary owned by the
// cover-management component.
type CoverOwnership interface {
	IsOwner(ctx context.Context, coverID uint64, identity string) (bool, error)
	ProductType(ctx context.Context, coverID uint64) (uint32, error)
}

// AssetTransfer is the payout/stake boundary owned by the token and
// staking-pool components.
type AssetTransfer interface {
	// CollectDeposit takes the claim deposit from the claimant at submission.
	CollectDeposit(ctx context.Context, asset string, amount uint64, from string) error
	// Payout transfers amount of asset to the recipient.
	Payout(ctx context.Context, asset string, amount uint64, recipient string) error
	// BurnStake burns the stake backing an accepted claim's cover.
	BurnStake(ctx context.Context, coverID uint64, amount uint64) error
}
