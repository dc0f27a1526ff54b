package billing

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestGuard(t *testing.T) (EventGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisEventGuard(rdb), mr
}

func TestEventGuardFirstDelivery(t *testing.T) {
	guard, _ := newTestGuard(t)
	ctx := context.Background()

	first, err := guard.FirstDelivery(ctx, "stripe", "evt_1")
	if err != nil {
		t.Fatalf("FirstDelivery failed: %v", err)
	}
	if !first {
		t.Fatalf("expected first delivery to be reported as first")
	}

	second, err := guard.FirstDelivery(ctx, "stripe", "evt_1")
	if err != nil {
		t.Fatalf("FirstDelivery failed: %v", err)
	}
	if second {
		t.Fatalf("expected replayed delivery to be reported as duplicate")
	}
}

func TestEventGuardScopesByProviderAndEvent(t *testing.T) {
	guard, _ := newTestGuard(t)
	ctx := context.Background()

	if first, _ := guard.FirstDelivery(ctx, "stripe", "evt_a"); !first {
		t.Fatalf("expected evt_a to be first")
	}
	if first, _ := guard.FirstDelivery(ctx, "stripe", "evt_b"); !first {
		t.Fatalf("expected evt_b to be unaffected by evt_a")
	}
	if first, _ := guard.FirstDelivery(ctx, "other", "evt_a"); !first {
		t.Fatalf("expected a different provider to have its own namespace")
	}
}

func TestEventGuardExpiry(t *testing.T) {
	guard, mr := newTestGuard(t)
	ctx := context.Background()

	if first, _ := guard.FirstDelivery(ctx, "stripe", "evt_ttl"); !first {
		t.Fatalf("expected first delivery")
	}

	// After the retention window the same event id is treated as new again;
	// the DB event table still catches true replays.
	mr.FastForward(eventGuardTTL)
	if first, _ := guard.FirstDelivery(ctx, "stripe", "evt_ttl"); !first {
		t.Fatalf("expected event to be forgotten after TTL")
	}
}
