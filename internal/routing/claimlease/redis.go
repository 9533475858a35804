// Package claimlease provides a short-lived Redis lease taken around claim
// acquisition. The store's conditional update remains the source of truth;
// the lease only short-circuits contending claimants across instances before
// they reach the database.
package claimlease

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "marksman/pkg/domain"
	"marksman/pkg/platform/sentinel"
)

// releaseScript deletes the lease only when the holder matches, so a slow
// caller cannot release a lease that has expired and been re-acquired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Lease struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a lease helper. TTL bounds how long a crashed claimant can block
// others; claims themselves never expire server-side.
func New(client *redis.Client, ttl time.Duration) *Lease {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Lease{client: client, ttl: ttl}
}

func key(itemID id.QueueItemID) string {
	return "routing:claim:" + itemID.String()
}

// Acquire attempts SET NX on the item's lease key. Returns false when another
// holder currently has it. A failing Redis backend surfaces as
// sentinel.ErrUnavailable so callers can degrade to the store.
func (l *Lease) Acquire(ctx context.Context, itemID id.QueueItemID, userID id.UserID) (bool, error) {
	ok, err := l.client.SetNX(ctx, key(itemID), userID.String(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire claim lease: %w: %w", sentinel.ErrUnavailable, err)
	}
	return ok, nil
}

// Release frees the lease if the given user still holds it.
func (l *Lease) Release(ctx context.Context, itemID id.QueueItemID, userID id.UserID) error {
	if err := releaseScript.Run(ctx, l.client, []string{key(itemID)}, userID.String()).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release claim lease: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
