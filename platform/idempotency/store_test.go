package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "webhook:", ttl), mr
}

func TestClaimOnlyOnce(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	first, err := store.Claim(ctx, "wamid.1")
	if err != nil || !first {
		t.Fatalf("first claim = %v, %v", first, err)
	}
	second, err := store.Claim(ctx, "wamid.1")
	if err != nil || second {
		t.Fatalf("second claim = %v, %v", second, err)
	}
	if !mr.Exists("webhook:wamid.1") {
		t.Fatalf("expected prefixed key in redis")
	}
}

func TestClaimExpires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	if ok, _ := store.Claim(ctx, "wamid.2"); !ok {
		t.Fatalf("expected first claim")
	}
	mr.FastForward(2 * time.Minute)
	if ok, _ := store.Claim(ctx, "wamid.2"); !ok {
		t.Fatalf("expected claim after ttl")
	}
}

func TestReleaseAllowsRetry(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	_, _ = store.Claim(ctx, "wamid.3")
	if err := store.Release(ctx, "wamid.3"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := store.Claim(ctx, "wamid.3"); !ok {
		t.Fatalf("expected claim after release")
	}
}
