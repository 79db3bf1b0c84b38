package collaborators

import (
	"context"
	"strconv"
	"time"

	"stakesure/internal/ports"
)

const productTypeTTL = time.Hour

// CachedCoverOwnership memoizes product-type lookups, which never change
// for a given cover. Ownership checks always hit the source: covers can be
// transferred.
type CachedCoverOwnership struct {
	source ports.CoverOwnership
	cache  ports.Cache
}

func NewCachedCoverOwnership(source ports.CoverOwnership, cache ports.Cache) *CachedCoverOwnership {
	return &CachedCoverOwnership{source: source, cache: cache}
}

func (c *CachedCoverOwnership) IsOwner(ctx context.Context, coverID uint64, identity string) (bool, error) {
	return c.source.IsOwner(ctx, coverID, identity)
}

func (c *CachedCoverOwnership) ProductType(ctx context.Context, coverID uint64) (uint32, error) {
	key := "cover:product-type:" + strconv.FormatUint(coverID, 10)

	if val, found, err := c.cache.Get(ctx, key); err == nil && found {
		if parsed, perr := strconv.ParseUint(val, 10, 32); perr == nil {
			return uint32(parsed), nil
		}
	}

	productType, err := c.source.ProductType(ctx, coverID)
	if err != nil {
		return 0, err
	}

	// Cache write failures are not worth failing the lookup for.
	_ = c.cache.Set(ctx, key, strconv.FormatUint(uint64(productType), 10), productTypeTTL)
	return productType, nil
}
