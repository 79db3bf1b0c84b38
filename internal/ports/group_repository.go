package ports

import (
	"context"
	"errors"
)

var ErrGroupNotFound = errors.New("assessor group not found")

// GroupRepository manages assessor groups, their seat membership and the
// product-type routing table. Group ids are monotonic and never reused.
type GroupRepository interface {
	// CreateGroup allocates the next group id.
	CreateGroup(ctx context.Context) (uint64, error)
	// GroupsCount returns the id of the most recently created group, 0 when
	// none exist.
	GroupsCount(ctx context.Context) (uint64, error)
	// AddSeats inserts the given seats; seats already present are skipped so
	// a seat id appears at most once per group.
	AddSeats(ctx context.Context, groupID uint64, seatIDs []string) error
	// RemoveSeat deletes a seat from a group; removing a non-member is a
	// no-op.
	RemoveSeat(ctx context.Context, groupID uint64, seatID string) error
	IsSeat(ctx context.Context, groupID uint64, seatID string) (bool, error)
	ListSeats(ctx context.Context, groupID uint64) ([]string, error)
	SetProductTypeGroup(ctx context.Context, productTypeIDs []uint32, groupID uint64) error
	GroupForProductType(ctx context.Context, productTypeID uint32) (uint64, error)
}
