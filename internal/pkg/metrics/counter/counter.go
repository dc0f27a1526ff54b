package counter

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const webhookEventsKey = "billing:counters:webhook_events"

// Counter accumulates webhook event counts per event type in redis.
type Counter struct {
	rdb *redis.Client
}

// New creates a counter backed by the given redis client.
func New(rdb *redis.Client) *Counter {
	return &Counter{rdb: rdb}
}

// Add increments the counter for an event type. Best effort; a cache outage
// only loses a count.
func (c *Counter) Add(eventType string) {
	if err := c.rdb.HIncrBy(context.Background(), webhookEventsKey, eventType, 1).Err(); err != nil {
		log.Printf("counter: failed to increment %s: %v", eventType, err)
	}
}

// Snapshot returns the accumulated counts per event type.
func (c *Counter) Snapshot(ctx context.Context) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, webhookEventsKey).Result()
}
