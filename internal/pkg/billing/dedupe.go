package billing

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventGuard remembers handled webhook event ids so redeliveries are
// acknowledged without re-running side effects.
type EventGuard interface {
	// FirstDelivery reports whether this event id has not been seen before
	// and records it. Subsequent calls with the same id return false until
	// the entry expires.
	FirstDelivery(ctx context.Context, provider, eventID string) (bool, error)
	// Forget releases an event id claimed by FirstDelivery so a later
	// redelivery is treated as first again. Used when recording the event
	// failed and the provider must be allowed to retry.
	Forget(ctx context.Context, provider, eventID string) error
}

// Stripe redelivers events for up to three days; keep guard entries a bit
// longer than that.
const eventGuardTTL = 96 * time.Hour

type redisEventGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisEventGuard creates an EventGuard backed by redis SETNX with TTL.
func NewRedisEventGuard(rdb *redis.Client) EventGuard {
	return &redisEventGuard{rdb: rdb, ttl: eventGuardTTL}
}

func (g *redisEventGuard) FirstDelivery(ctx context.Context, provider, eventID string) (bool, error) {
	return g.rdb.SetNX(ctx, guardKey(provider, eventID), 1, g.ttl).Result()
}

func (g *redisEventGuard) Forget(ctx context.Context, provider, eventID string) error {
	return g.rdb.Del(ctx, guardKey(provider, eventID)).Err()
}

func guardKey(provider, eventID string) string {
	return "billing:webhook:" + provider + ":" + eventID
}
