// Package collaborators holds local implementations of the external
// boundaries the claims core consumes: cover ownership and asset
// transfer. Production deployments swap these for clients of the cover
// and pool services; tests and the dev server use the in-memory ones.
package collaborators

import (
	"context"
	"fmt"
	"sync"

	"stakesure/internal/ports"
)

type cover struct {
	owner       string
	productType uint32
}

// MemoryCoverLedger implements ports.CoverOwnership over a map.
type MemoryCoverLedger struct {
	mu     sync.RWMutex
	covers map[uint64]cover
}

func NewMemoryCoverLedger() *MemoryCoverLedger {
	return &MemoryCoverLedger{covers: make(map[uint64]cover)}
}

func (l *MemoryCoverLedger) SetCover(coverID uint64, owner string, productType uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.covers[coverID] = cover{owner: owner, productType: productType}
}

func (l *MemoryCoverLedger) IsOwner(ctx context.Context, coverID uint64, identity string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.covers[coverID]
	if !ok {
		return false, ports.ErrCoverNotFound
	}
	return c.owner == identity, nil
}

func (l *MemoryCoverLedger) ProductType(ctx context.Context, coverID uint64) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.covers[coverID]
	if !ok {
		return 0, ports.ErrCoverNotFound
	}
	return c.productType, nil
}

// MemoryAssetBook implements ports.AssetTransfer, recording every movement
// so tests can assert exact payout amounts.
type MemoryAssetBook struct {
	mu       sync.Mutex
	balances map[string]map[string]uint64 // asset -> identity -> balance
	burned   map[uint64]uint64            // coverID -> burned stake
	deposits uint64
}

func NewMemoryAssetBook() *MemoryAssetBook {
	return &MemoryAssetBook{
		balances: make(map[string]map[string]uint64),
		burned:   make(map[uint64]uint64),
	}
}

// Credit funds an identity so deposits can be collected from it.
func (b *MemoryAssetBook) Credit(asset, identity string, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(asset, identity, amount)
}

func (b *MemoryAssetBook) Balance(asset, identity string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[asset][identity]
}

func (b *MemoryAssetBook) Burned(coverID uint64) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.burned[coverID]
}

func (b *MemoryAssetBook) CollectDeposit(ctx context.Context, asset string, amount uint64, from string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	have := b.balances[asset][from]
	if have < amount {
		return fmt.Errorf("%w: %s has %d %s, needs %d", ports.ErrInsufficientFund, from, have, asset, amount)
	}
	b.balances[asset][from] = have - amount
	b.deposits += amount
	return nil
}

func (b *MemoryAssetBook) Payout(ctx context.Context, asset string, amount uint64, recipient string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(asset, recipient, amount)
	return nil
}

func (b *MemoryAssetBook) BurnStake(ctx context.Context, coverID uint64, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.burned[coverID] += amount
	return nil
}

func (b *MemoryAssetBook) credit(asset, identity string, amount uint64) {
	if b.balances[asset] == nil {
		b.balances[asset] = make(map[string]uint64)
	}
	b.balances[asset][identity] += amount
}
