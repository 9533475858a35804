package routing

import (
	"context"
	"time"

	id "marksman/pkg/domain"
)

// Store persists routing-queue items. Implementations return sentinel errors
// (pkg/platform/sentinel); the service translates them into domain errors.
//
// Claim must be atomic relative to concurrent claim attempts: a single
// conditional "claim if and only if currently unclaimed" update, never
// read-then-write.
type Store interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, itemID id.QueueItemID) (*Item, error)

	// Claim sets the claimant and timestamp and moves the item to Claimed.
	// Returns sentinel.ErrConflict when an active claimant exists,
	// sentinel.ErrInvalidState when the item is terminal.
	Claim(ctx context.Context, itemID id.QueueItemID, userID id.UserID, at time.Time) (*Item, error)

	// Update replaces the stored item, conditional on readAt matching the
	// stored UpdatedAt and the item not being terminal. Like Claim, it is a
	// single conditional write, never read-then-write. Returns
	// sentinel.ErrInvalidState when the item reached a terminal state since
	// the read, sentinel.ErrConflict when another writer got there first.
	Update(ctx context.Context, item *Item, readAt time.Time) error

	List(ctx context.Context, filter Filter) ([]*Item, error)
}
