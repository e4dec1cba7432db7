package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLocalBurstPerKey(t *testing.T) {
	l := NewLocal(1, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "10.0.0.1"); !ok {
			t.Fatalf("request %d should be within burst", i)
		}
	}
	if ok, _ := l.Allow(ctx, "10.0.0.1"); ok {
		t.Fatal("expected third request to be limited")
	}
	if ok, _ := l.Allow(ctx, "10.0.0.2"); !ok {
		t.Fatal("other keys must have their own bucket")
	}
}

func TestRedisFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRedis(client, 2, time.Second)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "client")
		if err != nil || !ok {
			t.Fatalf("request %d: ok=%v err=%v", i, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "client"); ok {
		t.Fatal("expected window to be exhausted")
	}

	now = now.Add(time.Second)
	if ok, _ := l.Allow(ctx, "client"); !ok {
		t.Fatal("expected a fresh window")
	}
}

func TestRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	if _, err := NewRedis(client, 1, time.Second).Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected an error when redis is down")
	}
}
