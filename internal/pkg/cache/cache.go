package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// New connects to the redis cache. Connection problems are logged, not
// fatal; callers degrade gracefully when the cache is down.
func New(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if pong, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Warning: could not connect to cache at %s: %v", addr, err)
	} else {
		log.Printf("Connected to cache at %s: %s", addr, pong)
	}
	return client
}
